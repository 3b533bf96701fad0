package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/waitlyhq/waitly/internal/analytics/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultSourceLimit = 5
	dateLayout         = "2006-01-02"
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
		log:   p.Log.Named("analytics.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordEventRequest) error {
	if req.ProjectID == 0 {
		return domain.ErrInvalidProject
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = datatypes.JSONMap{}
	}

	event := domain.Event{
		ID:        s.genID.Generate(),
		ProjectID: req.ProjectID,
		EventType: strings.TrimSpace(req.EventType),
		Referrer:  strings.TrimSpace(req.Referrer),
		Source:    strings.TrimSpace(req.Source),
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	return s.repo.Insert(ctx, s.db, &event)
}

// Stats builds the dashboard overview for the requested window. The signup
// total honors the window; the referral rate is computed over all entries and
// the conversion rate counts email opens against the windowed signups.
func (s *Service) Stats(ctx context.Context, projectID snowflake.ID, window string) (domain.Stats, error) {
	if projectID == 0 {
		return domain.Stats{}, domain.ErrInvalidProject
	}

	since, err := windowStart(window)
	if err != nil {
		return domain.Stats{}, err
	}

	signups, err := s.repo.CountSignups(ctx, s.db, projectID, since)
	if err != nil {
		return domain.Stats{}, err
	}
	allSignups, err := s.repo.CountSignups(ctx, s.db, projectID, time.Time{})
	if err != nil {
		return domain.Stats{}, err
	}
	thisWeek, err := s.repo.CountSignups(ctx, s.db, projectID, time.Now().UTC().AddDate(0, 0, -7))
	if err != nil {
		return domain.Stats{}, err
	}
	views, err := s.repo.CountByType(ctx, s.db, projectID, domain.EventView)
	if err != nil {
		return domain.Stats{}, err
	}
	referred, err := s.repo.CountReferredSignups(ctx, s.db, projectID)
	if err != nil {
		return domain.Stats{}, err
	}
	opens, err := s.repo.CountEmailOpens(ctx, s.db, projectID)
	if err != nil {
		return domain.Stats{}, err
	}

	stats := domain.Stats{
		TotalSignups:    signups,
		ThisWeek:        thisWeek,
		TotalViews:      views,
		ReferredSignups: referred,
	}
	if allSignups > 0 {
		stats.ReferralRate = clampRate(float64(referred) / float64(allSignups) * 100)
	}
	if signups > 0 {
		stats.ConversionRate = clampRate(float64(opens) / float64(signups) * 100)
	}
	if views > 0 {
		stats.ViewRate = clampRate(float64(allSignups) / float64(views) * 100)
	}
	return stats, nil
}

func windowStart(window string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(window)) {
	case domain.RangeWeek:
		return time.Now().UTC().AddDate(0, 0, -7), nil
	case domain.RangeMonth:
		return time.Now().UTC().AddDate(0, 0, -30), nil
	case domain.RangeAll, "":
		return time.Time{}, nil
	default:
		return time.Time{}, domain.ErrInvalidRange
	}
}

// SignupsOverTime returns one bucket per day with zero-filled gaps, so
// charts always render a continuous series.
func (s *Service) SignupsOverTime(ctx context.Context, projectID snowflake.ID, rng string) ([]domain.TimeBucket, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}

	days, err := rangeDays(rng)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	dates, err := s.repo.SignupDates(ctx, s.db, projectID, since)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, days)
	for _, d := range dates {
		counts[d.UTC().Format(dateLayout)]++
	}

	buckets := make([]domain.TimeBucket, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format(dateLayout)
		buckets = append(buckets, domain.TimeBucket{
			Date:  day,
			Count: counts[day],
		})
	}
	return buckets, nil
}

// DailySignups aggregates all signups by weekday, Sunday first.
func (s *Service) DailySignups(ctx context.Context, projectID snowflake.ID) ([]domain.WeekdayBucket, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}

	dates, err := s.repo.SignupDates(ctx, s.db, projectID, time.Time{})
	if err != nil {
		return nil, err
	}

	var counts [7]int64
	for _, d := range dates {
		counts[int(d.UTC().Weekday())]++
	}

	buckets := make([]domain.WeekdayBucket, 0, 7)
	for i := 0; i < 7; i++ {
		buckets = append(buckets, domain.WeekdayBucket{
			Day:   time.Weekday(i).String()[:3],
			Count: counts[i],
		})
	}
	return buckets, nil
}

func (s *Service) TrafficSources(ctx context.Context, projectID snowflake.ID, limit int) ([]domain.SourceCount, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	if limit <= 0 {
		limit = defaultSourceLimit
	}
	return s.repo.TopSources(ctx, s.db, projectID, limit)
}

func rangeDays(rng string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(rng)) {
	case domain.RangeWeek, "":
		return 7, nil
	case domain.RangeMonth:
		return 30, nil
	case domain.RangeAll:
		return 90, nil
	default:
		return 0, domain.ErrInvalidRange
	}
}

func clampRate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
