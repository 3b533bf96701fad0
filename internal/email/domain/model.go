// Package domain contains core types for email templates and campaigns.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Campaign statuses.
const (
	StatusDraft   = "draft"
	StatusSending = "sending"
	StatusSent    = "sent"
)

// Campaign trigger types and events.
const (
	TriggerManual    = "manual"
	TriggerAutomatic = "automatic"
	EventOnJoin      = "on_join"
)

// Email event types.
const (
	EventSent    = "sent"
	EventFailed  = "failed"
	EventOpened  = "opened"
	EventClicked = "clicked"
)

// Template is a reusable message body with personalization tokens.
type Template struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ProjectID snowflake.ID `gorm:"column:project_id;not null;index" json:"project_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Subject   string       `gorm:"type:text;not null;default:''" json:"subject"`
	Body      string       `gorm:"type:text;not null;default:''" json:"body"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Template) TableName() string { return "email_templates" }

// Campaign is a message sent to every active entry, either manually or
// automatically when a new signup arrives.
type Campaign struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	ProjectID    snowflake.ID  `gorm:"column:project_id;not null;index" json:"project_id"`
	TemplateID   *snowflake.ID `gorm:"column:template_id" json:"template_id,omitempty"`
	Name         string        `gorm:"type:text;not null" json:"name"`
	Subject      string        `gorm:"type:text;not null;default:''" json:"subject"`
	Body         string        `gorm:"type:text;not null;default:''" json:"body"`
	Status       string        `gorm:"type:text;not null;default:'draft'" json:"status"`
	TriggerType  string        `gorm:"column:trigger_type;type:text;not null;default:'manual'" json:"trigger_type"`
	TriggerEvent string        `gorm:"column:trigger_event;type:text;not null;default:''" json:"trigger_event"`
	TotalSent    int64         `gorm:"column:total_sent;not null;default:0" json:"total_sent"`
	TotalOpened  int64         `gorm:"column:total_opened;not null;default:0" json:"total_opened"`
	TotalClicked int64         `gorm:"column:total_clicked;not null;default:0" json:"total_clicked"`
	SentAt       *time.Time    `gorm:"column:sent_at" json:"sent_at,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Campaign) TableName() string { return "email_campaigns" }

// Event records one delivery attempt outcome.
type Event struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	ProjectID  snowflake.ID  `gorm:"column:project_id;not null;index" json:"project_id"`
	CampaignID *snowflake.ID `gorm:"column:campaign_id;index" json:"campaign_id,omitempty"`
	EntryID    *snowflake.ID `gorm:"column:entry_id" json:"entry_id,omitempty"`
	Recipient  string        `gorm:"type:text;not null" json:"recipient"`
	EventType  string        `gorm:"column:event_type;type:text;not null" json:"event_type"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Event) TableName() string { return "email_events" }
