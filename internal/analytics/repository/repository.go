package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/waitlyhq/waitly/internal/analytics/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) CountByType(ctx context.Context, db *gorm.DB, projectID snowflake.ID, eventType string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("project_id = ? AND event_type = ?", projectID, eventType).
		Count(&count).Error
	return count, err
}

func (r *repo) CountSignups(ctx context.Context, db *gorm.DB, projectID snowflake.ID, since time.Time) (int64, error) {
	var count int64
	stmt := db.WithContext(ctx).
		Table("waitlist_entries").
		Where("project_id = ?", projectID)
	if !since.IsZero() {
		stmt = stmt.Where("created_at >= ?", since)
	}
	err := stmt.Count(&count).Error
	return count, err
}

func (r *repo) CountEmailOpens(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("email_events").
		Where("project_id = ? AND event_type = ?", projectID, "opened").
		Count(&count).Error
	return count, err
}

func (r *repo) CountReferredSignups(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("waitlist_entries").
		Where("project_id = ? AND referred_by IS NOT NULL", projectID).
		Count(&count).Error
	return count, err
}

func (r *repo) SignupDates(ctx context.Context, db *gorm.DB, projectID snowflake.ID, since time.Time) ([]time.Time, error) {
	var dates []time.Time
	stmt := db.WithContext(ctx).
		Table("waitlist_entries").
		Where("project_id = ?", projectID)
	if !since.IsZero() {
		stmt = stmt.Where("created_at >= ?", since)
	}
	err := stmt.
		Order("created_at asc").
		Pluck("created_at", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

func (r *repo) TopSources(ctx context.Context, db *gorm.DB, projectID snowflake.ID, limit int) ([]domain.SourceCount, error) {
	var rows []domain.SourceCount
	err := db.WithContext(ctx).
		Table("waitlist_entries").
		Select("COALESCE(NULLIF(source, ''), 'Direct') AS source, COUNT(*) AS count").
		Where("project_id = ?", projectID).
		Group("COALESCE(NULLIF(source, ''), 'Direct')").
		Order("count desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
