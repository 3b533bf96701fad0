package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertTemplate(ctx context.Context, db *gorm.DB, template *Template) error
	FindTemplateByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*Template, error)
	ListTemplates(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]Template, error)
	UpdateTemplate(ctx context.Context, db *gorm.DB, template *Template) error
	DeleteTemplate(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) error

	InsertCampaign(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	FindCampaignByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*Campaign, error)
	ListCampaigns(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]Campaign, error)
	ListJoinCampaigns(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]Campaign, error)
	UpdateCampaign(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	DeleteCampaign(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) error

	InsertEvent(ctx context.Context, db *gorm.DB, event *Event) error
	FindEventByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Event, error)
	ListEvents(ctx context.Context, db *gorm.DB, projectID snowflake.ID, campaignID *snowflake.ID, limit int) ([]Event, error)
}
