package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	embeddomain "github.com/waitlyhq/waitly/internal/embed/domain"
	"github.com/waitlyhq/waitly/internal/project/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Embed embeddomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	embed embeddomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("project.service"),
		genID: p.GenID,
		repo:  p.Repo,
		embed: p.Embed,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProjectRequest) (domain.Project, error) {
	if req.OwnerID == 0 {
		return domain.Project{}, domain.ErrInvalidOwner
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Project{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:          s.genID.Generate(),
		OwnerID:     req.OwnerID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		WebsiteURL:  strings.TrimSpace(req.WebsiteURL),
		LogoURL:     strings.TrimSpace(req.LogoURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &project); err != nil {
		return domain.Project{}, err
	}

	// New projects start with a usable embed form.
	if err := s.embed.EnsureDefaultConfiguration(ctx, project.ID); err != nil {
		s.log.Warn("create default embed configuration",
			zap.String("project_id", project.ID.String()),
			zap.Error(err),
		)
	}

	s.log.Info("project created", zap.String("project_id", project.ID.String()))
	return project, nil
}

func (s *Service) List(ctx context.Context, ownerID snowflake.ID) ([]domain.Project, error) {
	if ownerID == 0 {
		return nil, domain.ErrInvalidOwner
	}
	return s.repo.ListByOwner(ctx, s.db, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID, projectID snowflake.ID) (domain.Project, error) {
	if ownerID == 0 {
		return domain.Project{}, domain.ErrInvalidOwner
	}

	project, err := s.repo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project == nil || project.OwnerID != ownerID {
		return domain.Project{}, domain.ErrNotFound
	}
	return *project, nil
}

func (s *Service) GetPublic(ctx context.Context, projectID snowflake.ID) (domain.Project, error) {
	project, err := s.repo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project == nil {
		return domain.Project{}, domain.ErrNotFound
	}
	return *project, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProjectRequest) (domain.Project, error) {
	project, err := s.Get(ctx, req.OwnerID, req.ProjectID)
	if err != nil {
		return domain.Project{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Project{}, domain.ErrInvalidName
		}
		project.Name = name
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	if req.WebsiteURL != nil {
		project.WebsiteURL = strings.TrimSpace(*req.WebsiteURL)
	}
	if req.LogoURL != nil {
		project.LogoURL = strings.TrimSpace(*req.LogoURL)
	}
	project.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, projectID snowflake.ID) error {
	if _, err := s.Get(ctx, ownerID, projectID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, projectID)
}
