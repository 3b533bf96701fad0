// Package domain contains core types for project analytics.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Event types tracked for analytics.
const (
	EventSignup = "signup"
	EventView   = "view"
)

// Event is a raw analytics fact recorded at signup or page view time.
type Event struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	ProjectID snowflake.ID      `gorm:"column:project_id;not null;index" json:"project_id"`
	EventType string            `gorm:"column:event_type;type:text;not null" json:"event_type"`
	Referrer  string            `gorm:"type:text;not null;default:''" json:"referrer"`
	Source    string            `gorm:"type:text;not null;default:''" json:"source"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName sets the database table name.
func (Event) TableName() string { return "analytics_events" }
