package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/waitlyhq/waitly/internal/webhook/domain"
	"github.com/waitlyhq/waitly/internal/webhook/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupWebhooks(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&domain.Webhook{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db
}

func TestCreateWebhookDefaults(t *testing.T) {
	svc, _ := setupWebhooks(t)

	webhook, err := svc.Create(context.Background(), domain.CreateWebhookRequest{
		ProjectID: 100,
		URL:       "https://example.com/hooks",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(webhook.Secret, "whsec_") {
		t.Fatalf("secret = %q", webhook.Secret)
	}
	if len(webhook.Events) != 1 || webhook.Events[0] != domain.EventEntryCreated {
		t.Fatalf("events = %v, want default entry.created", webhook.Events)
	}
	if !webhook.Active {
		t.Fatal("webhook should start active")
	}
}

func TestCreateWebhookRejectsBadURL(t *testing.T) {
	svc, _ := setupWebhooks(t)

	for _, raw := range []string{"", "ftp://example.com", "not a url", "/relative"} {
		if _, err := svc.Create(context.Background(), domain.CreateWebhookRequest{
			ProjectID: 100,
			URL:       raw,
		}); err != domain.ErrInvalidURL {
			t.Fatalf("url %q: err = %v, want ErrInvalidURL", raw, err)
		}
	}
}

func TestSignIsDeterministic(t *testing.T) {
	body := []byte(`{"event":"entry.created"}`)

	a := Sign("whsec_abc", "1700000000", body)
	b := Sign("whsec_abc", "1700000000", body)
	if a != b {
		t.Fatalf("signatures differ: %s != %s", a, b)
	}
	if Sign("whsec_other", "1700000000", body) == a {
		t.Fatal("different secrets must produce different signatures")
	}
	if Sign("whsec_abc", "1700000001", body) == a {
		t.Fatal("different timestamps must produce different signatures")
	}
}

func TestDispatchSignsAndMarksTriggered(t *testing.T) {
	svc, db := setupWebhooks(t)
	projectID := snowflake.ID(100)

	received := make(chan *http.Request, 1)
	bodies := make(chan []byte, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- r
		bodies <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	webhook, err := svc.Create(context.Background(), domain.CreateWebhookRequest{
		ProjectID: projectID,
		URL:       server.URL,
		Events:    []string{domain.EventEntryCreated},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	svc.Dispatch(context.Background(), projectID, domain.EventEntryCreated, map[string]any{
		"email": "user@example.com",
	})

	req := <-received
	body := <-bodies

	timestamp := req.Header.Get("X-Waitly-Timestamp")
	if timestamp == "" {
		t.Fatal("missing timestamp header")
	}
	if got := req.Header.Get("X-Waitly-Signature"); got != Sign(webhook.Secret, timestamp, body) {
		t.Fatalf("signature mismatch: %s", got)
	}

	var envelope struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if envelope.Event != domain.EventEntryCreated || envelope.Data["email"] != "user@example.com" {
		t.Fatalf("envelope = %+v", envelope)
	}

	var stored domain.Webhook
	if err := db.First(&stored, "id = ?", webhook.ID).Error; err != nil {
		t.Fatalf("load webhook: %v", err)
	}
	if stored.LastTriggeredAt == nil {
		t.Fatal("last_triggered_at not set")
	}
}

func TestDispatchSkipsUnsubscribedAndInactive(t *testing.T) {
	svc, _ := setupWebhooks(t)
	projectID := snowflake.ID(100)

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if _, err := svc.Create(context.Background(), domain.CreateWebhookRequest{
		ProjectID: projectID,
		URL:       server.URL,
		Events:    []string{domain.EventEntryDeleted},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	inactive, err := svc.Create(context.Background(), domain.CreateWebhookRequest{
		ProjectID: projectID,
		URL:       server.URL,
		Events:    []string{domain.EventEntryCreated},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	off := false
	if _, err := svc.Update(context.Background(), domain.UpdateWebhookRequest{
		ProjectID: projectID,
		WebhookID: inactive.ID,
		Active:    &off,
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	svc.Dispatch(context.Background(), projectID, domain.EventEntryCreated, map[string]any{})

	if hits != 0 {
		t.Fatalf("hits = %d, want 0", hits)
	}
}

func TestWildcardSubscription(t *testing.T) {
	webhook := domain.Webhook{Events: []string{"*"}}
	if !webhook.Subscribed(domain.EventEntryDeleted) {
		t.Fatal("wildcard must match every event")
	}
}
