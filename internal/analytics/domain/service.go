package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidProject = errors.New("invalid_project")
	ErrInvalidRange   = errors.New("invalid_range")
)

// Time windows accepted by Stats and SignupsOverTime.
const (
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeAll   = "all"
)

type RecordEventRequest struct {
	ProjectID snowflake.ID
	EventType string
	Referrer  string
	Source    string
	Metadata  datatypes.JSONMap
}

// Stats is the dashboard overview. Rates are percentages clamped to [0, 100].
// TotalSignups honors the requested window; ThisWeek always covers the last
// seven days. ConversionRate is email opens over windowed signups; ViewRate
// is signups over recorded page views.
type Stats struct {
	TotalSignups    int64   `json:"total_signups"`
	ThisWeek        int64   `json:"this_week"`
	TotalViews      int64   `json:"total_views"`
	ReferredSignups int64   `json:"referred_signups"`
	ReferralRate    float64 `json:"referral_rate"`
	ConversionRate  float64 `json:"conversion_rate"`
	ViewRate        float64 `json:"view_rate"`
}

type TimeBucket struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type WeekdayBucket struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *Event) error
	CountByType(ctx context.Context, db *gorm.DB, projectID snowflake.ID, eventType string) (int64, error)
	CountSignups(ctx context.Context, db *gorm.DB, projectID snowflake.ID, since time.Time) (int64, error)
	CountReferredSignups(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error)
	CountEmailOpens(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error)
	SignupDates(ctx context.Context, db *gorm.DB, projectID snowflake.ID, since time.Time) ([]time.Time, error)
	TopSources(ctx context.Context, db *gorm.DB, projectID snowflake.ID, limit int) ([]SourceCount, error)
}

type Service interface {
	Record(ctx context.Context, req RecordEventRequest) error
	Stats(ctx context.Context, projectID snowflake.ID, window string) (Stats, error)
	SignupsOverTime(ctx context.Context, projectID snowflake.ID, rng string) ([]TimeBucket, error)
	DailySignups(ctx context.Context, projectID snowflake.ID) ([]WeekdayBucket, error)
	TrafficSources(ctx context.Context, projectID snowflake.ID, limit int) ([]SourceCount, error)
}
