package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	analyticsdomain "github.com/waitlyhq/waitly/internal/analytics/domain"
	emaildomain "github.com/waitlyhq/waitly/internal/email/domain"
	projectdomain "github.com/waitlyhq/waitly/internal/project/domain"
	"github.com/waitlyhq/waitly/internal/waitlist/domain"
	"github.com/waitlyhq/waitly/internal/waitlist/repository"
	webhookdomain "github.com/waitlyhq/waitly/internal/webhook/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type projectRepoStub struct {
	mu         sync.Mutex
	increments int64
	resets     int
}

func (p *projectRepoStub) Insert(ctx context.Context, db *gorm.DB, project *projectdomain.Project) error {
	return nil
}

func (p *projectRepoStub) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*projectdomain.Project, error) {
	return nil, nil
}

func (p *projectRepoStub) ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]projectdomain.Project, error) {
	return nil, nil
}

func (p *projectRepoStub) Update(ctx context.Context, db *gorm.DB, project *projectdomain.Project) error {
	return nil
}

func (p *projectRepoStub) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return nil
}

func (p *projectRepoStub) IncrementSignups(ctx context.Context, db *gorm.DB, id snowflake.ID, delta int64) error {
	p.mu.Lock()
	p.increments += delta
	p.mu.Unlock()
	return nil
}

func (p *projectRepoStub) ResetSignups(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	p.mu.Lock()
	p.resets++
	p.mu.Unlock()
	return nil
}

func (p *projectRepoStub) Increments() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.increments
}

type analyticsStub struct {
	mu     sync.Mutex
	events []analyticsdomain.RecordEventRequest
}

func (a *analyticsStub) Record(ctx context.Context, req analyticsdomain.RecordEventRequest) error {
	a.mu.Lock()
	a.events = append(a.events, req)
	a.mu.Unlock()
	return nil
}

func (a *analyticsStub) Stats(ctx context.Context, projectID snowflake.ID, window string) (analyticsdomain.Stats, error) {
	return analyticsdomain.Stats{}, nil
}

func (a *analyticsStub) SignupsOverTime(ctx context.Context, projectID snowflake.ID, rng string) ([]analyticsdomain.TimeBucket, error) {
	return nil, nil
}

func (a *analyticsStub) DailySignups(ctx context.Context, projectID snowflake.ID) ([]analyticsdomain.WeekdayBucket, error) {
	return nil, nil
}

func (a *analyticsStub) TrafficSources(ctx context.Context, projectID snowflake.ID, limit int) ([]analyticsdomain.SourceCount, error) {
	return nil, nil
}

func (a *analyticsStub) Events() []analyticsdomain.RecordEventRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]analyticsdomain.RecordEventRequest, len(a.events))
	copy(out, a.events)
	return out
}

type emailStub struct {
	welcomes chan emaildomain.WelcomeParams
}

func newEmailStub() *emailStub {
	return &emailStub{welcomes: make(chan emaildomain.WelcomeParams, 8)}
}

func (e *emailStub) CreateTemplate(ctx context.Context, req emaildomain.CreateTemplateRequest) (emaildomain.Template, error) {
	return emaildomain.Template{}, nil
}

func (e *emailStub) ListTemplates(ctx context.Context, projectID snowflake.ID) ([]emaildomain.Template, error) {
	return nil, nil
}

func (e *emailStub) UpdateTemplate(ctx context.Context, req emaildomain.UpdateTemplateRequest) (emaildomain.Template, error) {
	return emaildomain.Template{}, nil
}

func (e *emailStub) DeleteTemplate(ctx context.Context, projectID, templateID snowflake.ID) error {
	return nil
}

func (e *emailStub) CreateCampaign(ctx context.Context, req emaildomain.CreateCampaignRequest) (emaildomain.Campaign, error) {
	return emaildomain.Campaign{}, nil
}

func (e *emailStub) ListCampaigns(ctx context.Context, projectID snowflake.ID) ([]emaildomain.Campaign, error) {
	return nil, nil
}

func (e *emailStub) GetCampaign(ctx context.Context, projectID, campaignID snowflake.ID) (emaildomain.Campaign, error) {
	return emaildomain.Campaign{}, nil
}

func (e *emailStub) UpdateCampaign(ctx context.Context, req emaildomain.UpdateCampaignRequest) (emaildomain.Campaign, error) {
	return emaildomain.Campaign{}, nil
}

func (e *emailStub) DeleteCampaign(ctx context.Context, projectID, campaignID snowflake.ID) error {
	return nil
}

func (e *emailStub) SendCampaign(ctx context.Context, req emaildomain.SendCampaignRequest) (emaildomain.SendReport, error) {
	return emaildomain.SendReport{}, nil
}

func (e *emailStub) SendWelcome(ctx context.Context, params emaildomain.WelcomeParams) error {
	e.welcomes <- params
	return nil
}

func (e *emailStub) ListEvents(ctx context.Context, projectID snowflake.ID, campaignID *snowflake.ID, limit int) ([]emaildomain.Event, error) {
	return nil, nil
}

func (e *emailStub) TrackOpen(ctx context.Context, eventID snowflake.ID) error {
	return nil
}

func (e *emailStub) TrackClick(ctx context.Context, eventID snowflake.ID) error {
	return nil
}

type webhookStub struct {
	dispatches chan string
}

func newWebhookStub() *webhookStub {
	return &webhookStub{dispatches: make(chan string, 8)}
}

func (w *webhookStub) Create(ctx context.Context, req webhookdomain.CreateWebhookRequest) (webhookdomain.Webhook, error) {
	return webhookdomain.Webhook{}, nil
}

func (w *webhookStub) List(ctx context.Context, projectID snowflake.ID) ([]webhookdomain.Webhook, error) {
	return nil, nil
}

func (w *webhookStub) Update(ctx context.Context, req webhookdomain.UpdateWebhookRequest) (webhookdomain.Webhook, error) {
	return webhookdomain.Webhook{}, nil
}

func (w *webhookStub) Delete(ctx context.Context, projectID, webhookID snowflake.ID) error {
	return nil
}

func (w *webhookStub) Dispatch(ctx context.Context, projectID snowflake.ID, event string, payload map[string]any) {
	w.dispatches <- event
}

type fixture struct {
	svc       domain.Service
	db        *gorm.DB
	projects  *projectRepoStub
	analytics *analyticsStub
	email     *emailStub
	webhooks  *webhookStub
}

func setupService(t *testing.T) *fixture {
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

	if err := db.AutoMigrate(&domain.Entry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	f := &fixture{
		db:        db,
		projects:  &projectRepoStub{},
		analytics: &analyticsStub{},
		email:     newEmailStub(),
		webhooks:  newWebhookStub(),
	}
	f.svc = New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		Projects:  f.projects,
		Analytics: f.analytics,
		Email:     f.email,
		Webhooks:  f.webhooks,
	})
	return f
}

func TestJoinAssignsSequentialPositions(t *testing.T) {
	f := setupService(t)
	projectID := snowflake.ID(100)

	for i := 1; i <= 3; i++ {
		entry, err := f.svc.Join(context.Background(), domain.JoinRequest{
			ProjectID: projectID,
			Email:     fmt.Sprintf("user%d@example.com", i),
		})
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		if entry.Position != int64(i) {
			t.Fatalf("position = %d, want %d", entry.Position, i)
		}
		if len(entry.ReferralCode) != referralCodeLen {
			t.Fatalf("referral code %q, want %d chars", entry.ReferralCode, referralCodeLen)
		}
		if entry.Status != domain.StatusActive {
			t.Fatalf("status = %q, want %q", entry.Status, domain.StatusActive)
		}
	}

	if got := f.projects.Increments(); got != 3 {
		t.Fatalf("project signups incremented %d times, want 3", got)
	}
}

func TestJoinRejectsDuplicateEmail(t *testing.T) {
	f := setupService(t)
	projectID := snowflake.ID(100)

	if _, err := f.svc.Join(context.Background(), domain.JoinRequest{
		ProjectID: projectID,
		Email:     "dup@example.com",
	}); err != nil {
		t.Fatalf("first join: %v", err)
	}

	// Same address with different casing and whitespace.
	_, err := f.svc.Join(context.Background(), domain.JoinRequest{
		ProjectID: projectID,
		Email:     "  DUP@Example.com ",
	})
	if err != domain.ErrEmailAlreadyRegistered {
		t.Fatalf("err = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestJoinAllowsSameEmailAcrossProjects(t *testing.T) {
	f := setupService(t)

	if _, err := f.svc.Join(context.Background(), domain.JoinRequest{
		ProjectID: 100,
		Email:     "shared@example.com",
	}); err != nil {
		t.Fatalf("join project 100: %v", err)
	}
	if _, err := f.svc.Join(context.Background(), domain.JoinRequest{
		ProjectID: 200,
		Email:     "shared@example.com",
	}); err != nil {
		t.Fatalf("join project 200: %v", err)
	}
}

func TestJoinRejectsInvalidEmail(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.Join(context.Background(), domain.JoinRequest{
		ProjectID: 100,
		Email:     "not-an-email",
	})
	if err != domain.ErrInvalidEmail {
		t.Fatalf("err = %v, want ErrInvalidEmail", err)
	}
}

func TestJoinAttributesReferral(t *testing.T) {
	f := setupService(t)
	projectID := snowflake.ID(100)

	referrer, err := f.svc.Join(context.Background(), domain.JoinRequest{
		ProjectID: projectID,
		Email:     "referrer@example.com",
	})
	if err != nil {
		t.Fatalf("join referrer: %v", err)
	}

	referred, err := f.svc.Join(context.Background(), domain.JoinRequest{
		ProjectID:    projectID,
		Email:        "friend@example.com",
		ReferralCode: referrer.ReferralCode,
	})
	if err != nil {
		t.Fatalf("join referred: %v", err)
	}
	if referred.ReferredBy == nil || *referred.ReferredBy != referrer.ID {
		t.Fatalf("referred_by = %v, want %v", referred.ReferredBy, referrer.ID)
	}

	status, err := f.svc.Status(context.Background(), projectID, referrer.ReferralCode)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.ReferralCount != 1 {
		t.Fatalf("referral count = %d, want 1", status.ReferralCount)
	}
	if status.Position != 1 || status.Total != 2 {
		t.Fatalf("status = %+v, want position 1 of 2", status)
	}
}

func TestJoinIgnoresUnknownReferralCode(t *testing.T) {
	f := setupService(t)

	entry, err := f.svc.Join(context.Background(), domain.JoinRequest{
		ProjectID:    100,
		Email:        "user@example.com",
		ReferralCode: "NOSUCHCODE",
	})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if entry.ReferredBy != nil {
		t.Fatalf("referred_by = %v, want nil", entry.ReferredBy)
	}
}

func TestJoinRunsPostSignupTasks(t *testing.T) {
	f := setupService(t)

	entry, err := f.svc.Join(context.Background(), domain.JoinRequest{
		ProjectID: 100,
		Email:     "user@example.com",
		Name:      "Ada",
	})
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	select {
	case params := <-f.email.welcomes:
		if params.Recipient != entry.Email || params.Position != entry.Position {
			t.Fatalf("welcome params = %+v", params)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email never sent")
	}

	select {
	case event := <-f.webhooks.dispatches:
		if event != webhookdomain.EventEntryCreated {
			t.Fatalf("dispatched %q, want %q", event, webhookdomain.EventEntryCreated)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook never dispatched")
	}

	events := f.analytics.Events()
	if len(events) != 1 || events[0].EventType != analyticsdomain.EventSignup {
		t.Fatalf("analytics events = %+v", events)
	}
}

type exhaustedCodeRepo struct {
	domain.Repository
}

func (exhaustedCodeRepo) ReferralCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	return true, nil
}

func TestJoinReferralCodeAllocationIsBounded(t *testing.T) {
	f := setupService(t)
	node, _ := snowflake.NewNode(2)

	svc := New(Params{
		DB:        f.db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      exhaustedCodeRepo{repository.Provide()},
		Projects:  f.projects,
		Analytics: f.analytics,
		Email:     f.email,
		Webhooks:  f.webhooks,
	})

	_, err := svc.Join(context.Background(), domain.JoinRequest{
		ProjectID: 100,
		Email:     "user@example.com",
	})
	if err != domain.ErrReferralCodeExhausted {
		t.Fatalf("err = %v, want ErrReferralCodeExhausted", err)
	}
}

func TestDeletePreservesPositionGaps(t *testing.T) {
	f := setupService(t)
	projectID := snowflake.ID(100)

	var entries []domain.Entry
	for i := 1; i <= 3; i++ {
		entry, err := f.svc.Join(context.Background(), domain.JoinRequest{
			ProjectID: projectID,
			Email:     fmt.Sprintf("user%d@example.com", i),
		})
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		entries = append(entries, entry)
	}

	if err := f.svc.Delete(context.Background(), projectID, entries[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	resp, err := f.svc.List(context.Background(), domain.ListRequest{ProjectID: projectID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	if resp.Entries[0].Position != 1 || resp.Entries[1].Position != 3 {
		t.Fatalf("positions = %d, %d, want gap preserved (1, 3)",
			resp.Entries[0].Position, resp.Entries[1].Position)
	}

	// The next signup counts rows, so the freed slot is reused as a
	// position value even though existing gaps stay.
	next, err := f.svc.Join(context.Background(), domain.JoinRequest{
		ProjectID: projectID,
		Email:     "late@example.com",
	})
	if err != nil {
		t.Fatalf("join after delete: %v", err)
	}
	if next.Position != 3 {
		t.Fatalf("position = %d, want 3", next.Position)
	}
}

func TestUpdateEntryValidatesStatus(t *testing.T) {
	f := setupService(t)
	projectID := snowflake.ID(100)

	entry, err := f.svc.Join(context.Background(), domain.JoinRequest{
		ProjectID: projectID,
		Email:     "user@example.com",
	})
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	bogus := "archived"
	if _, err := f.svc.Update(context.Background(), domain.UpdateEntryRequest{
		ProjectID: projectID,
		EntryID:   entry.ID,
		Status:    &bogus,
	}); err != domain.ErrInvalidStatus {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}

	approved := domain.StatusApproved
	updated, err := f.svc.Update(context.Background(), domain.UpdateEntryRequest{
		ProjectID: projectID,
		EntryID:   entry.ID,
		Status:    &approved,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusApproved {
		t.Fatalf("status = %q, want %q", updated.Status, domain.StatusApproved)
	}

	rejected := domain.StatusRejected
	updated, err = f.svc.Update(context.Background(), domain.UpdateEntryRequest{
		ProjectID: projectID,
		EntryID:   entry.ID,
		Status:    &rejected,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusRejected {
		t.Fatalf("status = %q, want %q", updated.Status, domain.StatusRejected)
	}
}

func TestClearAllResetsProjectCounter(t *testing.T) {
	f := setupService(t)
	projectID := snowflake.ID(100)

	for i := 1; i <= 2; i++ {
		if _, err := f.svc.Join(context.Background(), domain.JoinRequest{
			ProjectID: projectID,
			Email:     fmt.Sprintf("user%d@example.com", i),
		}); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}

	if err := f.svc.ClearAll(context.Background(), projectID); err != nil {
		t.Fatalf("clear all: %v", err)
	}

	resp, err := f.svc.List(context.Background(), domain.ListRequest{ProjectID: projectID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 0 {
		t.Fatalf("total = %d, want 0", resp.Total)
	}
	if f.projects.resets != 1 {
		t.Fatalf("resets = %d, want 1", f.projects.resets)
	}
}

func TestStatusUnknownCode(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.Status(context.Background(), 100, "missing")
	if err != domain.ErrEntryNotFound {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
}

func TestExportReturnsEveryEntryInOrder(t *testing.T) {
	f := setupService(t)
	projectID := snowflake.ID(100)

	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	// More rows than one repository page holds.
	total := maxListLimit + 10
	for i := 1; i <= total; i++ {
		entry := domain.Entry{
			ID:           node.Generate(),
			ProjectID:    projectID,
			Email:        fmt.Sprintf("user%d@example.com", i),
			ReferralCode: node.Generate().String(),
			Position:     int64(i),
			Status:       domain.StatusActive,
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := f.db.Create(&entry).Error; err != nil {
			t.Fatalf("seed entry %d: %v", i, err)
		}
	}

	entries, err := f.svc.Export(context.Background(), projectID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(entries) != total {
		t.Fatalf("exported %d entries, want %d", len(entries), total)
	}
	for i, entry := range entries {
		if entry.Position != int64(i+1) {
			t.Fatalf("entry %d position = %d, want %d", i, entry.Position, i+1)
		}
	}
}
