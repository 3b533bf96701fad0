package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertConfiguration(ctx context.Context, db *gorm.DB, cfg *Configuration) error
	FindConfiguration(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (*Configuration, error)
	UpdateConfiguration(ctx context.Context, db *gorm.DB, cfg *Configuration) error

	InsertField(ctx context.Context, db *gorm.DB, field *CustomField) error
	FindFieldByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*CustomField, error)
	ListFields(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]CustomField, error)
	MaxDisplayOrder(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int, error)
	UpdateField(ctx context.Context, db *gorm.DB, field *CustomField) error
	DeleteField(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) error
}
