package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
	"github.com/waitlyhq/waitly/internal/observability/metrics"
	"github.com/waitlyhq/waitly/internal/webhook/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	secretPrefix    = "whsec_"
	secretBytes     = 24
	deliveryTimeout = 10 * time.Second
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	metrics *metrics.Metrics
	client  *http.Client
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("webhook.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
		client: &http.Client{
			Timeout: deliveryTimeout,
		},
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateWebhookRequest) (domain.Webhook, error) {
	if req.ProjectID == 0 {
		return domain.Webhook{}, domain.ErrInvalidProject
	}
	if err := validateURL(req.URL); err != nil {
		return domain.Webhook{}, err
	}

	secret, err := newSecret()
	if err != nil {
		return domain.Webhook{}, err
	}

	events := req.Events
	if len(events) == 0 {
		events = []string{domain.EventEntryCreated}
	}

	now := time.Now().UTC()
	webhook := domain.Webhook{
		ID:        s.genID.Generate(),
		ProjectID: req.ProjectID,
		URL:       strings.TrimSpace(req.URL),
		Secret:    secret,
		Events:    pq.StringArray(events),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &webhook); err != nil {
		return domain.Webhook{}, err
	}
	return webhook, nil
}

func (s *Service) List(ctx context.Context, projectID snowflake.ID) ([]domain.Webhook, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	return s.repo.ListByProject(ctx, s.db, projectID)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateWebhookRequest) (domain.Webhook, error) {
	if req.ProjectID == 0 {
		return domain.Webhook{}, domain.ErrInvalidProject
	}

	webhook, err := s.repo.FindByID(ctx, s.db, req.ProjectID, req.WebhookID)
	if err != nil {
		return domain.Webhook{}, err
	}
	if webhook == nil {
		return domain.Webhook{}, domain.ErrNotFound
	}

	if req.URL != nil {
		if err := validateURL(*req.URL); err != nil {
			return domain.Webhook{}, err
		}
		webhook.URL = strings.TrimSpace(*req.URL)
	}
	if req.Events != nil {
		webhook.Events = pq.StringArray(*req.Events)
	}
	if req.Active != nil {
		webhook.Active = *req.Active
	}
	webhook.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, webhook); err != nil {
		return domain.Webhook{}, err
	}
	return *webhook, nil
}

func (s *Service) Delete(ctx context.Context, projectID, webhookID snowflake.ID) error {
	if projectID == 0 {
		return domain.ErrInvalidProject
	}

	webhook, err := s.repo.FindByID(ctx, s.db, projectID, webhookID)
	if err != nil {
		return err
	}
	if webhook == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, projectID, webhookID)
}

// Dispatch signs and posts the event to every active subscribed endpoint.
// Failures are logged and counted, never surfaced to the caller.
func (s *Service) Dispatch(ctx context.Context, projectID snowflake.ID, event string, payload map[string]any) {
	webhooks, err := s.repo.ListActiveByProject(ctx, s.db, projectID)
	if err != nil {
		s.log.Warn("list webhooks", zap.Error(err))
		return
	}

	body, err := json.Marshal(map[string]any{
		"event":      event,
		"created_at": time.Now().UTC().Format(time.RFC3339),
		"data":       payload,
	})
	if err != nil {
		s.log.Warn("marshal webhook payload", zap.Error(err))
		return
	}

	for i := range webhooks {
		webhook := webhooks[i]
		if !webhook.Subscribed(event) {
			continue
		}

		err := s.deliver(ctx, webhook, body)
		s.metrics.RecordWebhookDelivery(ctx, event, err == nil)
		if err != nil {
			s.log.Warn("webhook delivery failed",
				zap.String("webhook_id", webhook.ID.String()),
				zap.String("event", event),
				zap.Error(err),
			)
			continue
		}

		if err := s.repo.MarkTriggered(ctx, s.db, webhook.ID, time.Now().UTC()); err != nil {
			s.log.Warn("mark webhook triggered", zap.Error(err))
		}
	}
}

func (s *Service) deliver(ctx context.Context, webhook domain.Webhook, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Waitly-Timestamp", timestamp)
	req.Header.Set("X-Waitly-Signature", Sign(webhook.Secret, timestamp, body))

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 of "<timestamp>.<body>" with the
// webhook secret. Receivers recompute this to verify authenticity.
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newSecret() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return secretPrefix + hex.EncodeToString(raw), nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return domain.ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return domain.ErrInvalidURL
	}
	return nil
}
