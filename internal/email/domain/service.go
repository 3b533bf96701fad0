package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateTemplateRequest struct {
	ProjectID snowflake.ID
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type UpdateTemplateRequest struct {
	ProjectID  snowflake.ID
	TemplateID snowflake.ID
	Name       *string `json:"name"`
	Subject    *string `json:"subject"`
	Body       *string `json:"body"`
}

type CreateCampaignRequest struct {
	ProjectID    snowflake.ID
	TemplateID   *snowflake.ID `json:"template_id"`
	Name         string        `json:"name"`
	Subject      string        `json:"subject"`
	Body         string        `json:"body"`
	TriggerType  string        `json:"trigger_type"`
	TriggerEvent string        `json:"trigger_event"`
}

type UpdateCampaignRequest struct {
	ProjectID    snowflake.ID
	CampaignID   snowflake.ID
	Name         *string `json:"name"`
	Subject      *string `json:"subject"`
	Body         *string `json:"body"`
	TriggerType  *string `json:"trigger_type"`
	TriggerEvent *string `json:"trigger_event"`
}

type SendCampaignRequest struct {
	ProjectID  snowflake.ID
	CampaignID snowflake.ID
	// TestEmail sends a single personalized preview without recording
	// events or counters.
	TestEmail string `json:"test_email"`
}

// SendReport summarizes a campaign dispatch. Individual delivery failures do
// not abort the run; they are collected here.
type SendReport struct {
	Requested int      `json:"requested"`
	Sent      int      `json:"sent"`
	Errors    []string `json:"errors,omitempty"`
}

// WelcomeParams carries the signup details needed to personalize automatic
// join emails.
type WelcomeParams struct {
	ProjectID snowflake.ID
	EntryID   snowflake.ID
	Recipient string
	Name      string
	Position  int64
}

type Service interface {
	CreateTemplate(ctx context.Context, req CreateTemplateRequest) (Template, error)
	ListTemplates(ctx context.Context, projectID snowflake.ID) ([]Template, error)
	UpdateTemplate(ctx context.Context, req UpdateTemplateRequest) (Template, error)
	DeleteTemplate(ctx context.Context, projectID, templateID snowflake.ID) error

	CreateCampaign(ctx context.Context, req CreateCampaignRequest) (Campaign, error)
	ListCampaigns(ctx context.Context, projectID snowflake.ID) ([]Campaign, error)
	GetCampaign(ctx context.Context, projectID, campaignID snowflake.ID) (Campaign, error)
	UpdateCampaign(ctx context.Context, req UpdateCampaignRequest) (Campaign, error)
	DeleteCampaign(ctx context.Context, projectID, campaignID snowflake.ID) error

	SendCampaign(ctx context.Context, req SendCampaignRequest) (SendReport, error)
	SendWelcome(ctx context.Context, params WelcomeParams) error
	ListEvents(ctx context.Context, projectID snowflake.ID, campaignID *snowflake.ID, limit int) ([]Event, error)

	TrackOpen(ctx context.Context, eventID snowflake.ID) error
	TrackClick(ctx context.Context, eventID snowflake.ID) error
}
