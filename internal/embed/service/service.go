package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/waitlyhq/waitly/internal/embed/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("embed.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) GetConfiguration(ctx context.Context, projectID snowflake.ID) (domain.Configuration, error) {
	if projectID == 0 {
		return domain.Configuration{}, domain.ErrInvalidProject
	}

	cfg, err := s.repo.FindConfiguration(ctx, s.db, projectID)
	if err != nil {
		return domain.Configuration{}, err
	}
	if cfg == nil {
		// Older projects may predate automatic configuration creation.
		fresh := domain.DefaultConfiguration(projectID)
		fresh.ID = s.genID.Generate()
		if err := s.repo.InsertConfiguration(ctx, s.db, &fresh); err != nil {
			return domain.Configuration{}, err
		}
		return fresh, nil
	}
	return *cfg, nil
}

func (s *Service) UpdateConfiguration(ctx context.Context, req domain.UpdateConfigurationRequest) (domain.Configuration, error) {
	cfg, err := s.GetConfiguration(ctx, req.ProjectID)
	if err != nil {
		return domain.Configuration{}, err
	}

	if req.Title != nil {
		cfg.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		cfg.Description = strings.TrimSpace(*req.Description)
	}
	if req.ButtonText != nil {
		cfg.ButtonText = strings.TrimSpace(*req.ButtonText)
	}
	if req.SuccessMessage != nil {
		cfg.SuccessMessage = strings.TrimSpace(*req.SuccessMessage)
	}
	if req.CollectName != nil {
		cfg.CollectName = *req.CollectName
	}
	if req.Theme != nil {
		cfg.Theme = *req.Theme
	}
	cfg.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateConfiguration(ctx, s.db, &cfg); err != nil {
		return domain.Configuration{}, err
	}
	return cfg, nil
}

func (s *Service) EnsureDefaultConfiguration(ctx context.Context, projectID snowflake.ID) error {
	if projectID == 0 {
		return domain.ErrInvalidProject
	}

	existing, err := s.repo.FindConfiguration(ctx, s.db, projectID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	cfg := domain.DefaultConfiguration(projectID)
	cfg.ID = s.genID.Generate()
	return s.repo.InsertConfiguration(ctx, s.db, &cfg)
}

func (s *Service) CreateField(ctx context.Context, req domain.CreateFieldRequest) (domain.CustomField, error) {
	if req.ProjectID == 0 {
		return domain.CustomField{}, domain.ErrInvalidProject
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		return domain.CustomField{}, domain.ErrInvalidLabel
	}

	fieldType := strings.ToLower(strings.TrimSpace(req.FieldType))
	if fieldType == "" {
		fieldType = "text"
	}
	if _, ok := domain.FieldTypes[fieldType]; !ok {
		return domain.CustomField{}, domain.ErrInvalidType
	}

	maxOrder, err := s.repo.MaxDisplayOrder(ctx, s.db, req.ProjectID)
	if err != nil {
		return domain.CustomField{}, err
	}

	options := req.Options
	if options == nil {
		options = datatypes.JSONMap{}
	}

	now := time.Now().UTC()
	field := domain.CustomField{
		ID:           s.genID.Generate(),
		ProjectID:    req.ProjectID,
		Label:        label,
		FieldType:    fieldType,
		Placeholder:  strings.TrimSpace(req.Placeholder),
		Required:     req.Required,
		Options:      options,
		DisplayOrder: maxOrder + 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertField(ctx, s.db, &field); err != nil {
		return domain.CustomField{}, err
	}
	return field, nil
}

func (s *Service) ListFields(ctx context.Context, projectID snowflake.ID) ([]domain.CustomField, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	return s.repo.ListFields(ctx, s.db, projectID)
}

func (s *Service) UpdateField(ctx context.Context, req domain.UpdateFieldRequest) (domain.CustomField, error) {
	if req.ProjectID == 0 {
		return domain.CustomField{}, domain.ErrInvalidProject
	}

	field, err := s.repo.FindFieldByID(ctx, s.db, req.ProjectID, req.FieldID)
	if err != nil {
		return domain.CustomField{}, err
	}
	if field == nil {
		return domain.CustomField{}, domain.ErrFieldNotFound
	}

	if req.Label != nil {
		label := strings.TrimSpace(*req.Label)
		if label == "" {
			return domain.CustomField{}, domain.ErrInvalidLabel
		}
		field.Label = label
	}
	if req.FieldType != nil {
		fieldType := strings.ToLower(strings.TrimSpace(*req.FieldType))
		if _, ok := domain.FieldTypes[fieldType]; !ok {
			return domain.CustomField{}, domain.ErrInvalidType
		}
		field.FieldType = fieldType
	}
	if req.Placeholder != nil {
		field.Placeholder = strings.TrimSpace(*req.Placeholder)
	}
	if req.Required != nil {
		field.Required = *req.Required
	}
	if req.Options != nil {
		field.Options = *req.Options
	}
	if req.DisplayOrder != nil {
		field.DisplayOrder = *req.DisplayOrder
	}
	field.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateField(ctx, s.db, field); err != nil {
		return domain.CustomField{}, err
	}
	return *field, nil
}

func (s *Service) DeleteField(ctx context.Context, projectID, fieldID snowflake.ID) error {
	if projectID == 0 {
		return domain.ErrInvalidProject
	}

	field, err := s.repo.FindFieldByID(ctx, s.db, projectID, fieldID)
	if err != nil {
		return err
	}
	if field == nil {
		return domain.ErrFieldNotFound
	}
	return s.repo.DeleteField(ctx, s.db, projectID, fieldID)
}

func (s *Service) PublicSnapshot(ctx context.Context, projectID snowflake.ID) (domain.Snapshot, error) {
	cfg, err := s.GetConfiguration(ctx, projectID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	fields, err := s.repo.ListFields(ctx, s.db, projectID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{Configuration: cfg, Fields: fields}, nil
}
