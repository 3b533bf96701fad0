package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateProjectRequest struct {
	OwnerID     snowflake.ID
	Name        string `json:"name"`
	Description string `json:"description"`
	WebsiteURL  string `json:"website_url"`
	LogoURL     string `json:"logo_url"`
}

type UpdateProjectRequest struct {
	OwnerID     snowflake.ID
	ProjectID   snowflake.ID
	Name        *string `json:"name"`
	Description *string `json:"description"`
	WebsiteURL  *string `json:"website_url"`
	LogoURL     *string `json:"logo_url"`
}

type Service interface {
	Create(ctx context.Context, req CreateProjectRequest) (Project, error)
	List(ctx context.Context, ownerID snowflake.ID) ([]Project, error)
	Get(ctx context.Context, ownerID, projectID snowflake.ID) (Project, error)
	GetPublic(ctx context.Context, projectID snowflake.ID) (Project, error)
	Update(ctx context.Context, req UpdateProjectRequest) (Project, error)
	Delete(ctx context.Context, ownerID, projectID snowflake.ID) error
}
