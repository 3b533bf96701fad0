// Package domain contains core types for API key management.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
)

// Permissions grantable to an API key.
const (
	PermissionRead  = "read"
	PermissionWrite = "write"
)

// APIKey stores hashed API credentials scoped to a project.
type APIKey struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	ProjectID   snowflake.ID   `gorm:"column:project_id;not null;index" json:"project_id"`
	KeyID       string         `gorm:"column:key_id;type:text;not null;uniqueIndex" json:"key_id"`
	Name        string         `gorm:"type:text;not null" json:"name"`
	KeyHash     string         `gorm:"column:key_hash;type:text;not null;uniqueIndex" json:"-"`
	Prefix      string         `gorm:"type:text;not null;default:''" json:"prefix"`
	Permissions pq.StringArray `gorm:"type:text[];not null" json:"permissions"`
	LastUsedAt  *time.Time     `gorm:"column:last_used_at" json:"last_used_at,omitempty"`
	RevokedAt   *time.Time     `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (APIKey) TableName() string { return "api_keys" }

// Active reports whether the key can still authenticate requests.
func (k APIKey) Active() bool { return k.RevokedAt == nil }

// Allows reports whether the key carries the given permission.
func (k APIKey) Allows(permission string) bool {
	for _, p := range k.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
