// Package domain contains core types for the waitlist service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Entry statuses.
const (
	StatusActive   = "active"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Entry is one signup on a project waitlist. Position is assigned once at
// join time and never recomputed, so deletions leave gaps.
type Entry struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	ProjectID    snowflake.ID      `gorm:"column:project_id;not null;uniqueIndex:uq_waitlist_entries_project_email,priority:1" json:"project_id"`
	Email        string            `gorm:"type:text;not null;uniqueIndex:uq_waitlist_entries_project_email,priority:2" json:"email"`
	Name         string            `gorm:"type:text;not null;default:''" json:"name"`
	ReferralCode string            `gorm:"column:referral_code;type:text;not null;uniqueIndex" json:"referral_code"`
	ReferredBy   *snowflake.ID     `gorm:"column:referred_by;index" json:"referred_by,omitempty"`
	Position     int64             `gorm:"not null" json:"position"`
	Status       string            `gorm:"type:text;not null;default:'active'" json:"status"`
	Source       string            `gorm:"type:text;not null;default:''" json:"source"`
	CustomData   datatypes.JSONMap `gorm:"column:custom_data;type:jsonb;not null;default:'{}'" json:"custom_data"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "waitlist_entries" }

// Statuses lists the accepted entry statuses.
var Statuses = map[string]struct{}{
	StatusActive:   {},
	StatusApproved: {},
	StatusRejected: {},
}
