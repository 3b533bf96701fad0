package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/waitlyhq/waitly/internal/webhook/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, webhook *domain.Webhook) error {
	return db.WithContext(ctx).Create(webhook).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*domain.Webhook, error) {
	var webhook domain.Webhook
	err := db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		First(&webhook).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &webhook, nil
}

func (r *repo) ListByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]domain.Webhook, error) {
	var webhooks []domain.Webhook
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at desc, id desc").
		Find(&webhooks).Error
	if err != nil {
		return nil, err
	}
	return webhooks, nil
}

func (r *repo) ListActiveByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]domain.Webhook, error) {
	var webhooks []domain.Webhook
	err := db.WithContext(ctx).
		Where("project_id = ? AND active = ?", projectID, true).
		Find(&webhooks).Error
	if err != nil {
		return nil, err
	}
	return webhooks, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, webhook *domain.Webhook) error {
	return db.WithContext(ctx).Save(webhook).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		Delete(&domain.Webhook{}).Error
}

func (r *repo) MarkTriggered(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Webhook{}).
		Where("id = ?", id).
		UpdateColumn("last_triggered_at", at).Error
}
