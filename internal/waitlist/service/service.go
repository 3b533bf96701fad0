package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/waitlyhq/waitly/internal/analytics/domain"
	emaildomain "github.com/waitlyhq/waitly/internal/email/domain"
	"github.com/waitlyhq/waitly/internal/observability/metrics"
	projectdomain "github.com/waitlyhq/waitly/internal/project/domain"
	"github.com/waitlyhq/waitly/internal/waitlist/domain"
	webhookdomain "github.com/waitlyhq/waitly/internal/webhook/domain"
	"github.com/waitlyhq/waitly/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	referralCodeLen         = 8
	referralCodeFallbackLen = 12
	referralCodeAttempts    = 5
	referralFallbackRetries = 3
	referralCodeCharset     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	detachedTaskTimeout = 15 * time.Second
	defaultListLimit    = 50
	maxListLimit        = 250
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Projects  projectdomain.Repository
	Analytics analyticsdomain.Service
	Email     emaildomain.Service
	Webhooks  webhookdomain.Service
	Metrics   *metrics.Metrics
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	projects  projectdomain.Repository
	analytics analyticsdomain.Service
	email     emaildomain.Service
	webhooks  webhookdomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("waitlist.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		projects:  p.Projects,
		analytics: p.Analytics,
		email:     p.Email,
		webhooks:  p.Webhooks,
		metrics:   p.Metrics,
	}
}

func (s *Service) Join(ctx context.Context, req domain.JoinRequest) (domain.Entry, error) {
	if req.ProjectID == 0 {
		return domain.Entry{}, domain.ErrInvalidProject
	}

	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Entry{}, domain.ErrInvalidEmail
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, req.ProjectID, email)
	if err != nil {
		return domain.Entry{}, err
	}
	if existing != nil {
		return domain.Entry{}, domain.ErrEmailAlreadyRegistered
	}

	// An unknown or foreign referral code is ignored, not rejected. The
	// public form forwards whatever ?ref= value it was loaded with.
	var referredBy *snowflake.ID
	if code := strings.ToUpper(strings.TrimSpace(req.ReferralCode)); code != "" {
		referrer, err := s.repo.FindByReferralCode(ctx, s.db, req.ProjectID, code)
		if err != nil {
			return domain.Entry{}, err
		}
		if referrer != nil {
			id := referrer.ID
			referredBy = &id
		}
	}

	// Position is the current row count plus one. Join does not run in a
	// transaction, so two concurrent signups can observe the same count
	// and share a position. Positions are display ordering, not tickets.
	count, err := s.repo.CountByProject(ctx, s.db, req.ProjectID)
	if err != nil {
		return domain.Entry{}, err
	}

	code, err := s.allocateReferralCode(ctx)
	if err != nil {
		return domain.Entry{}, err
	}

	customData := req.CustomData
	if customData == nil {
		customData = datatypes.JSONMap{}
	}

	now := time.Now().UTC()
	entry := domain.Entry{
		ID:           s.genID.Generate(),
		ProjectID:    req.ProjectID,
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		ReferralCode: code,
		ReferredBy:   referredBy,
		Position:     count + 1,
		Status:       domain.StatusActive,
		Source:       strings.TrimSpace(req.Source),
		CustomData:   customData,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Lost a race on the (project_id, email) index.
			if dup, findErr := s.repo.FindByEmail(ctx, s.db, req.ProjectID, email); findErr == nil && dup != nil {
				return domain.Entry{}, domain.ErrEmailAlreadyRegistered
			}
		}
		return domain.Entry{}, err
	}

	if err := s.projects.IncrementSignups(ctx, s.db, req.ProjectID, 1); err != nil {
		s.log.Warn("increment project signups",
			zap.String("project_id", req.ProjectID.String()),
			zap.Error(err),
		)
	}

	if err := s.analytics.Record(ctx, analyticsdomain.RecordEventRequest{
		ProjectID: req.ProjectID,
		EventType: analyticsdomain.EventSignup,
		Referrer:  strings.TrimSpace(req.Referrer),
		Source:    strings.TrimSpace(req.Source),
		Metadata:  datatypes.JSONMap{"referred": referredBy != nil},
	}); err != nil {
		s.log.Warn("record signup event", zap.Error(err))
	}

	s.metrics.RecordSignup(ctx, req.ProjectID.String(), referredBy != nil)
	s.log.Info("waitlist entry created",
		zap.String("project_id", req.ProjectID.String()),
		zap.String("entry_id", entry.ID.String()),
		zap.Int64("position", entry.Position),
		zap.Bool("referred", referredBy != nil),
	)

	s.afterJoin(ctx, entry)
	return entry, nil
}

// afterJoin runs the welcome email and webhook notifications without
// blocking the signup response. Failures are logged only.
func (s *Service) afterJoin(ctx context.Context, entry domain.Entry) {
	detached := context.WithoutCancel(ctx)
	go func() {
		taskCtx, cancel := context.WithTimeout(detached, detachedTaskTimeout)
		defer cancel()

		if err := s.email.SendWelcome(taskCtx, emaildomain.WelcomeParams{
			ProjectID: entry.ProjectID,
			EntryID:   entry.ID,
			Recipient: entry.Email,
			Name:      entry.Name,
			Position:  entry.Position,
		}); err != nil {
			s.log.Warn("send welcome email",
				zap.String("entry_id", entry.ID.String()),
				zap.Error(err),
			)
		}

		s.webhooks.Dispatch(taskCtx, entry.ProjectID, webhookdomain.EventEntryCreated, map[string]any{
			"id":            entry.ID.String(),
			"project_id":    entry.ProjectID.String(),
			"email":         entry.Email,
			"name":          entry.Name,
			"position":      entry.Position,
			"referral_code": entry.ReferralCode,
			"created_at":    entry.CreatedAt.Format(time.RFC3339),
		})
	}()
}

// allocateReferralCode draws short codes first and falls back to a longer
// code before giving up, keeping the retry loop bounded under heavy
// collision load.
func (s *Service) allocateReferralCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < referralCodeAttempts+referralFallbackRetries; attempt++ {
		length := referralCodeLen
		if attempt >= referralCodeAttempts {
			length = referralCodeFallbackLen
		}

		code, err := randomCode(length)
		if err != nil {
			return "", err
		}

		taken, err := s.repo.ReferralCodeExists(ctx, s.db, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", domain.ErrReferralCodeExhausted
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	if req.ProjectID == 0 {
		return domain.ListResponse{}, domain.ErrInvalidProject
	}

	status := strings.TrimSpace(req.Status)
	if status != "" {
		if _, ok := domain.Statuses[status]; !ok {
			return domain.ListResponse{}, domain.ErrInvalidStatus
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	entries, total, err := s.repo.List(ctx, s.db, req.ProjectID, domain.ListFilter{
		Search: req.Search,
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return domain.ListResponse{}, err
	}
	return domain.ListResponse{Entries: entries, Total: total}, nil
}

// Export returns every entry on the project in position order, paging
// through the store so large waitlists are not truncated.
func (s *Service) Export(ctx context.Context, projectID snowflake.ID) ([]domain.Entry, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}

	var all []domain.Entry
	for offset := 0; ; offset += maxListLimit {
		page, _, err := s.repo.List(ctx, s.db, projectID, domain.ListFilter{
			Limit:  maxListLimit,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < maxListLimit {
			break
		}
	}
	return all, nil
}

func (s *Service) Get(ctx context.Context, projectID, entryID snowflake.ID) (domain.Entry, error) {
	if projectID == 0 {
		return domain.Entry{}, domain.ErrInvalidProject
	}

	entry, err := s.repo.FindByID(ctx, s.db, projectID, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if entry == nil {
		return domain.Entry{}, domain.ErrEntryNotFound
	}
	return *entry, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateEntryRequest) (domain.Entry, error) {
	entry, err := s.Get(ctx, req.ProjectID, req.EntryID)
	if err != nil {
		return domain.Entry{}, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" || !strings.Contains(email, "@") {
			return domain.Entry{}, domain.ErrInvalidEmail
		}
		if email != entry.Email {
			dup, err := s.repo.FindByEmail(ctx, s.db, req.ProjectID, email)
			if err != nil {
				return domain.Entry{}, err
			}
			if dup != nil {
				return domain.Entry{}, domain.ErrEmailAlreadyRegistered
			}
			entry.Email = email
		}
	}
	if req.Name != nil {
		entry.Name = strings.TrimSpace(*req.Name)
	}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if _, ok := domain.Statuses[status]; !ok {
			return domain.Entry{}, domain.ErrInvalidStatus
		}
		entry.Status = status
	}
	if req.CustomData != nil {
		entry.CustomData = *req.CustomData
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &entry); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

// Delete removes one entry. Remaining positions are never recompacted, so
// the deleted slot stays as a gap.
func (s *Service) Delete(ctx context.Context, projectID, entryID snowflake.ID) error {
	entry, err := s.Get(ctx, projectID, entryID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, s.db, projectID, entryID); err != nil {
		return err
	}

	if err := s.projects.IncrementSignups(ctx, s.db, projectID, -1); err != nil {
		s.log.Warn("decrement project signups", zap.Error(err))
	}

	s.webhooks.Dispatch(ctx, projectID, webhookdomain.EventEntryDeleted, map[string]any{
		"id":         entry.ID.String(),
		"project_id": projectID.String(),
		"email":      entry.Email,
	})
	return nil
}

func (s *Service) ClearAll(ctx context.Context, projectID snowflake.ID) error {
	if projectID == 0 {
		return domain.ErrInvalidProject
	}

	if err := s.repo.DeleteAllByProject(ctx, s.db, projectID); err != nil {
		return err
	}
	return s.projects.ResetSignups(ctx, s.db, projectID)
}

func (s *Service) Status(ctx context.Context, projectID snowflake.ID, referralCode string) (domain.EntryStatus, error) {
	if projectID == 0 {
		return domain.EntryStatus{}, domain.ErrInvalidProject
	}

	code := strings.ToUpper(strings.TrimSpace(referralCode))
	entry, err := s.repo.FindByReferralCode(ctx, s.db, projectID, code)
	if err != nil {
		return domain.EntryStatus{}, err
	}
	if entry == nil {
		return domain.EntryStatus{}, domain.ErrEntryNotFound
	}

	total, err := s.repo.CountByProject(ctx, s.db, projectID)
	if err != nil {
		return domain.EntryStatus{}, err
	}
	referrals, err := s.repo.CountReferrals(ctx, s.db, entry.ID)
	if err != nil {
		return domain.EntryStatus{}, err
	}

	return domain.EntryStatus{
		Position:      entry.Position,
		Total:         total,
		ReferralCode:  entry.ReferralCode,
		ReferralCount: referrals,
	}, nil
}

func randomCode(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(referralCodeCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = referralCodeCharset[n.Int64()]
	}
	return string(out), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
