package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/waitlyhq/waitly/internal/embed/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertConfiguration(ctx context.Context, db *gorm.DB, cfg *domain.Configuration) error {
	return db.WithContext(ctx).Create(cfg).Error
}

func (r *repo) FindConfiguration(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (*domain.Configuration, error) {
	var cfg domain.Configuration
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *repo) UpdateConfiguration(ctx context.Context, db *gorm.DB, cfg *domain.Configuration) error {
	return db.WithContext(ctx).Save(cfg).Error
}

func (r *repo) InsertField(ctx context.Context, db *gorm.DB, field *domain.CustomField) error {
	return db.WithContext(ctx).Create(field).Error
}

func (r *repo) FindFieldByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*domain.CustomField, error) {
	var field domain.CustomField
	err := db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		First(&field).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &field, nil
}

func (r *repo) ListFields(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]domain.CustomField, error) {
	var fields []domain.CustomField
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("display_order asc, id asc").
		Find(&fields).Error
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func (r *repo) MaxDisplayOrder(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int, error) {
	var max *int
	err := db.WithContext(ctx).
		Model(&domain.CustomField{}).
		Where("project_id = ?", projectID).
		Select("MAX(display_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *repo) UpdateField(ctx context.Context, db *gorm.DB, field *domain.CustomField) error {
	return db.WithContext(ctx).Save(field).Error
}

func (r *repo) DeleteField(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		Delete(&domain.CustomField{}).Error
}
