package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
	"github.com/waitlyhq/waitly/internal/apikey/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	rawKeyPrefix   = "wl_"
	keyIDPrefix    = "wlk_"
	keySecretBytes = 32
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
		log:   p.Log.Named("apikey.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.SecretResponse, error) {
	if req.ProjectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	permissions := req.Permissions
	if len(permissions) == 0 {
		permissions = []string{domain.PermissionRead}
	}

	plain, err := newRawKey()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	key := domain.APIKey{
		ID:          s.genID.Generate(),
		ProjectID:   req.ProjectID,
		KeyID:       keyIDPrefix + ulid.Make().String(),
		Name:        name,
		KeyHash:     domain.HashAPIKey(plain),
		Prefix:      plain[:len(rawKeyPrefix)+4],
		Permissions: pq.StringArray(permissions),
		CreatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &key); err != nil {
		return nil, err
	}

	s.log.Info("api key created",
		zap.String("project_id", req.ProjectID.String()),
		zap.String("key_id", key.KeyID),
	)
	return &domain.SecretResponse{KeyID: key.KeyID, APIKey: plain}, nil
}

func (s *Service) List(ctx context.Context, projectID snowflake.ID) ([]domain.APIKey, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	return s.repo.ListByProject(ctx, s.db, projectID)
}

func (s *Service) Revoke(ctx context.Context, projectID, keyID snowflake.ID) error {
	key, err := s.find(ctx, projectID, keyID)
	if err != nil {
		return err
	}
	if key.RevokedAt != nil {
		return nil
	}

	now := time.Now().UTC()
	key.RevokedAt = &now
	return s.repo.Update(ctx, s.db, key)
}

func (s *Service) Delete(ctx context.Context, projectID, keyID snowflake.ID) error {
	if _, err := s.find(ctx, projectID, keyID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, projectID, keyID)
}

func (s *Service) Verify(ctx context.Context, rawKey string) (*domain.APIKey, error) {
	rawKey = strings.TrimSpace(rawKey)
	if !strings.HasPrefix(rawKey, rawKeyPrefix) {
		return nil, domain.ErrUnauthorized
	}

	key, err := s.repo.FindByHash(ctx, s.db, domain.HashAPIKey(rawKey))
	if err != nil {
		return nil, err
	}
	if key == nil || !key.Active() {
		return nil, domain.ErrUnauthorized
	}

	if err := s.repo.TouchLastUsed(ctx, s.db, key.ID); err != nil {
		s.log.Warn("touch api key", zap.Error(err))
	}
	return key, nil
}

func (s *Service) find(ctx context.Context, projectID, keyID snowflake.ID) (*domain.APIKey, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}

	key, err := s.repo.FindByID(ctx, s.db, projectID, keyID)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, domain.ErrNotFound
	}
	return key, nil
}

func newRawKey() (string, error) {
	raw := make([]byte, keySecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return rawKeyPrefix + hex.EncodeToString(raw), nil
}
