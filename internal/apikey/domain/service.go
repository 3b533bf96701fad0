package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidProject = errors.New("invalid_project")
	ErrInvalidName    = errors.New("invalid_name")
	ErrNotFound       = errors.New("api key not found")
	ErrUnauthorized   = errors.New("invalid api key")
)

type CreateRequest struct {
	ProjectID   snowflake.ID
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// SecretResponse is returned exactly once, at creation time. The raw key is
// never retrievable afterwards.
type SecretResponse struct {
	KeyID  string `json:"key_id"`
	APIKey string `json:"api_key"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, key *APIKey) error
	FindByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*APIKey, error)
	FindByHash(ctx context.Context, db *gorm.DB, keyHash string) (*APIKey, error)
	ListByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]APIKey, error)
	Update(ctx context.Context, db *gorm.DB, key *APIKey) error
	Delete(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) error
	TouchLastUsed(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*SecretResponse, error)
	List(ctx context.Context, projectID snowflake.ID) ([]APIKey, error)
	Revoke(ctx context.Context, projectID, keyID snowflake.ID) error
	Delete(ctx context.Context, projectID, keyID snowflake.ID) error

	// Verify resolves a raw bearer key to its record, updating last_used_at.
	Verify(ctx context.Context, rawKey string) (*APIKey, error)
}
