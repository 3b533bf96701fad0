package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type JoinRequest struct {
	ProjectID    snowflake.ID
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	ReferralCode string            `json:"referral_code"`
	Source       string            `json:"source"`
	Referrer     string            `json:"referrer"`
	CustomData   datatypes.JSONMap `json:"custom_data"`
}

type ListRequest struct {
	ProjectID snowflake.ID
	Search    string
	Status    string
	Limit     int
	Offset    int
}

type ListResponse struct {
	Entries []Entry `json:"entries"`
	Total   int64   `json:"total"`
}

type UpdateEntryRequest struct {
	ProjectID  snowflake.ID
	EntryID    snowflake.ID
	Name       *string            `json:"name"`
	Email      *string            `json:"email"`
	Status     *string            `json:"status"`
	CustomData *datatypes.JSONMap `json:"custom_data"`
}

// EntryStatus is the public view of one signup, looked up by referral code.
type EntryStatus struct {
	Position      int64  `json:"position"`
	Total         int64  `json:"total"`
	ReferralCode  string `json:"referral_code"`
	ReferralCount int64  `json:"referral_count"`
}

type Service interface {
	Join(ctx context.Context, req JoinRequest) (Entry, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Export(ctx context.Context, projectID snowflake.ID) ([]Entry, error)
	Get(ctx context.Context, projectID, entryID snowflake.ID) (Entry, error)
	Update(ctx context.Context, req UpdateEntryRequest) (Entry, error)
	Delete(ctx context.Context, projectID, entryID snowflake.ID) error
	ClearAll(ctx context.Context, projectID snowflake.ID) error
	Status(ctx context.Context, projectID snowflake.ID, referralCode string) (EntryStatus, error)
}
