// Package domain contains core types for the project service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Project is a tenant workspace owning one waitlist and its settings.
type Project struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID      snowflake.ID `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Description  string       `gorm:"type:text;not null;default:''" json:"description"`
	WebsiteURL   string       `gorm:"column:website_url;type:text;not null;default:''" json:"website_url"`
	LogoURL      string       `gorm:"column:logo_url;type:text;not null;default:''" json:"logo_url"`
	TotalSignups int64        `gorm:"column:total_signups;not null;default:0" json:"total_signups"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }
