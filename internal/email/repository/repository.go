package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/waitlyhq/waitly/internal/email/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertTemplate(ctx context.Context, db *gorm.DB, template *domain.Template) error {
	return db.WithContext(ctx).Create(template).Error
}

func (r *repo) FindTemplateByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*domain.Template, error) {
	var template domain.Template
	err := db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *repo) ListTemplates(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]domain.Template, error) {
	var templates []domain.Template
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at desc, id desc").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *repo) UpdateTemplate(ctx context.Context, db *gorm.DB, template *domain.Template) error {
	return db.WithContext(ctx).Save(template).Error
}

func (r *repo) DeleteTemplate(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		Delete(&domain.Template{}).Error
}

func (r *repo) InsertCampaign(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Create(campaign).Error
}

func (r *repo) FindCampaignByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repo) ListCampaigns(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at desc, id desc").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repo) ListJoinCampaigns(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	err := db.WithContext(ctx).
		Where("project_id = ? AND trigger_type = ? AND trigger_event = ? AND status = ?",
			projectID, domain.TriggerAutomatic, domain.EventOnJoin, domain.StatusDraft).
		Order("created_at asc, id asc").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repo) UpdateCampaign(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Save(campaign).Error
}

func (r *repo) DeleteCampaign(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		Delete(&domain.Campaign{}).Error
}

func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) FindEventByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Event, error) {
	var event domain.Event
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repo) ListEvents(ctx context.Context, db *gorm.DB, projectID snowflake.ID, campaignID *snowflake.ID, limit int) ([]domain.Event, error) {
	stmt := db.WithContext(ctx).
		Where("project_id = ?", projectID)
	if campaignID != nil {
		stmt = stmt.Where("campaign_id = ?", *campaignID)
	}
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var events []domain.Event
	err := stmt.
		Order("created_at desc, id desc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
