// Package domain contains core types for outbound webhooks.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Webhook event types.
const (
	EventEntryCreated = "entry.created"
	EventEntryDeleted = "entry.deleted"
)

var (
	ErrInvalidProject = errors.New("invalid_project")
	ErrInvalidURL     = errors.New("invalid_url")
	ErrNotFound       = errors.New("webhook not found")
)

// Webhook is an HTTP endpoint notified when subscribed events occur.
// Payloads are signed with the per-webhook secret.
type Webhook struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	ProjectID       snowflake.ID   `gorm:"column:project_id;not null;index" json:"project_id"`
	URL             string         `gorm:"type:text;not null" json:"url"`
	Secret          string         `gorm:"type:text;not null" json:"secret"`
	Events          pq.StringArray `gorm:"type:text[];not null" json:"events"`
	Active          bool           `gorm:"not null;default:true" json:"active"`
	LastTriggeredAt *time.Time     `gorm:"column:last_triggered_at" json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Webhook) TableName() string { return "webhooks" }

// Subscribed reports whether the webhook listens for the given event.
func (w Webhook) Subscribed(event string) bool {
	for _, e := range w.Events {
		if e == event || e == "*" {
			return true
		}
	}
	return false
}

type CreateWebhookRequest struct {
	ProjectID snowflake.ID
	URL       string   `json:"url"`
	Events    []string `json:"events"`
}

type UpdateWebhookRequest struct {
	ProjectID snowflake.ID
	WebhookID snowflake.ID
	URL       *string   `json:"url"`
	Events    *[]string `json:"events"`
	Active    *bool     `json:"active"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, webhook *Webhook) error
	FindByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*Webhook, error)
	ListByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]Webhook, error)
	ListActiveByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]Webhook, error)
	Update(ctx context.Context, db *gorm.DB, webhook *Webhook) error
	Delete(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) error
	MarkTriggered(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
}

type Service interface {
	Create(ctx context.Context, req CreateWebhookRequest) (Webhook, error)
	List(ctx context.Context, projectID snowflake.ID) ([]Webhook, error)
	Update(ctx context.Context, req UpdateWebhookRequest) (Webhook, error)
	Delete(ctx context.Context, projectID, webhookID snowflake.ID) error

	// Dispatch delivers the event to every active subscribed webhook.
	// Delivery failures are logged, not returned.
	Dispatch(ctx context.Context, projectID snowflake.ID, event string, payload map[string]any)
}
