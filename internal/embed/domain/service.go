package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type UpdateConfigurationRequest struct {
	ProjectID      snowflake.ID
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	ButtonText     *string            `json:"button_text"`
	SuccessMessage *string            `json:"success_message"`
	CollectName    *bool              `json:"collect_name"`
	Theme          *datatypes.JSONMap `json:"theme"`
}

type CreateFieldRequest struct {
	ProjectID   snowflake.ID
	Label       string            `json:"label"`
	FieldType   string            `json:"field_type"`
	Placeholder string            `json:"placeholder"`
	Required    bool              `json:"required"`
	Options     datatypes.JSONMap `json:"options"`
}

type UpdateFieldRequest struct {
	ProjectID    snowflake.ID
	FieldID      snowflake.ID
	Label        *string            `json:"label"`
	FieldType    *string            `json:"field_type"`
	Placeholder  *string            `json:"placeholder"`
	Required     *bool              `json:"required"`
	Options      *datatypes.JSONMap `json:"options"`
	DisplayOrder *int               `json:"display_order"`
}

// Snapshot is the public view the embedded widget fetches before rendering.
type Snapshot struct {
	Configuration Configuration `json:"configuration"`
	Fields        []CustomField `json:"fields"`
}

type Service interface {
	GetConfiguration(ctx context.Context, projectID snowflake.ID) (Configuration, error)
	UpdateConfiguration(ctx context.Context, req UpdateConfigurationRequest) (Configuration, error)
	EnsureDefaultConfiguration(ctx context.Context, projectID snowflake.ID) error

	CreateField(ctx context.Context, req CreateFieldRequest) (CustomField, error)
	ListFields(ctx context.Context, projectID snowflake.ID) ([]CustomField, error)
	UpdateField(ctx context.Context, req UpdateFieldRequest) (CustomField, error)
	DeleteField(ctx context.Context, projectID, fieldID snowflake.ID) error

	PublicSnapshot(ctx context.Context, projectID snowflake.ID) (Snapshot, error)
}
