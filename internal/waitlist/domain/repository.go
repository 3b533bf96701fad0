package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search string
	Status string
	Limit  int
	Offset int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	FindByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*Entry, error)
	FindByEmail(ctx context.Context, db *gorm.DB, projectID snowflake.ID, email string) (*Entry, error)
	FindByReferralCode(ctx context.Context, db *gorm.DB, projectID snowflake.ID, code string) (*Entry, error)
	ReferralCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error)

	CountByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error)
	CountReferrals(ctx context.Context, db *gorm.DB, entryID snowflake.ID) (int64, error)
	List(ctx context.Context, db *gorm.DB, projectID snowflake.ID, filter ListFilter) ([]Entry, int64, error)

	Update(ctx context.Context, db *gorm.DB, entry *Entry) error
	Delete(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) error
	DeleteAllByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) error
}
