// Package domain contains core types for embeddable signup forms.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Configuration controls how the hosted signup form renders for a project.
// Each project has exactly one configuration row.
type Configuration struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	ProjectID      snowflake.ID      `gorm:"column:project_id;not null;uniqueIndex" json:"project_id"`
	Title          string            `gorm:"type:text;not null;default:''" json:"title"`
	Description    string            `gorm:"type:text;not null;default:''" json:"description"`
	ButtonText     string            `gorm:"column:button_text;type:text;not null;default:''" json:"button_text"`
	SuccessMessage string            `gorm:"column:success_message;type:text;not null;default:''" json:"success_message"`
	CollectName    bool              `gorm:"column:collect_name;not null;default:true" json:"collect_name"`
	Theme          datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"theme"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Configuration) TableName() string { return "embed_configurations" }

// DefaultConfiguration returns the configuration a fresh project starts with.
func DefaultConfiguration(projectID snowflake.ID) Configuration {
	now := time.Now().UTC()
	return Configuration{
		ProjectID:      projectID,
		Title:          "Join the waitlist",
		Description:    "Be the first to know when we launch.",
		ButtonText:     "Join waitlist",
		SuccessMessage: "You are on the list!",
		CollectName:    true,
		Theme:          datatypes.JSONMap{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CustomField is an additional form field collected at signup.
type CustomField struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	ProjectID    snowflake.ID      `gorm:"column:project_id;not null;index" json:"project_id"`
	Label        string            `gorm:"type:text;not null" json:"label"`
	FieldType    string            `gorm:"column:field_type;type:text;not null;default:'text'" json:"field_type"`
	Placeholder  string            `gorm:"type:text;not null;default:''" json:"placeholder"`
	Required     bool              `gorm:"not null;default:false" json:"required"`
	Options      datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"options"`
	DisplayOrder int               `gorm:"column:display_order;not null;default:0" json:"display_order"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CustomField) TableName() string { return "custom_fields" }
