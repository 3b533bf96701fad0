package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/waitlyhq/waitly/internal/email/domain"
	"github.com/waitlyhq/waitly/internal/email/repository"
	projectdomain "github.com/waitlyhq/waitly/internal/project/domain"
	projectrepository "github.com/waitlyhq/waitly/internal/project/repository"
	waitlistdomain "github.com/waitlyhq/waitly/internal/waitlist/domain"
	waitlistrepository "github.com/waitlyhq/waitly/internal/waitlist/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type providerStub struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]error
}

func newProviderStub() *providerStub {
	return &providerStub{failTo: map[string]error{}}
}

func (p *providerStub) Send(ctx context.Context, to, subject, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.failTo[to]; ok {
		return err
	}
	p.sent = append(p.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (p *providerStub) Sent() []sentMail {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]sentMail, len(p.sent))
	copy(out, p.sent)
	return out
}

type emailFixture struct {
	svc       domain.Service
	db        *gorm.DB
	node      *snowflake.Node
	provider  *providerStub
	projectID snowflake.ID
}

func setupEmail(t *testing.T) *emailFixture {
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

	if err := db.AutoMigrate(
		&domain.Template{},
		&domain.Campaign{},
		&domain.Event{},
		&waitlistdomain.Entry{},
		&projectdomain.Project{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	f := &emailFixture{
		db:        db,
		node:      node,
		provider:  newProviderStub(),
		projectID: node.Generate(),
	}

	project := projectdomain.Project{
		ID:      f.projectID,
		OwnerID: node.Generate(),
		Name:    "Launchpad",
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	f.svc = New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		Entries:  waitlistrepository.Provide(),
		Projects: projectrepository.Provide(),
		Provider: f.provider,
	})
	return f
}

func (f *emailFixture) seedEntry(t *testing.T, email, name string, position int64, status string) waitlistdomain.Entry {
	t.Helper()

	entry := waitlistdomain.Entry{
		ID:           f.node.Generate(),
		ProjectID:    f.projectID,
		Email:        email,
		Name:         name,
		ReferralCode: f.node.Generate().String(),
		Position:     position,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := f.db.Create(&entry).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return entry
}

func TestCreateCampaignFromTemplate(t *testing.T) {
	f := setupEmail(t)
	ctx := context.Background()

	template, err := f.svc.CreateTemplate(ctx, domain.CreateTemplateRequest{
		ProjectID: f.projectID,
		Name:      "welcome",
		Subject:   "Welcome to {{waitlist_name}}",
		Body:      "Hi {{name}}, you are #{{position}}.",
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	campaign, err := f.svc.CreateCampaign(ctx, domain.CreateCampaignRequest{
		ProjectID:  f.projectID,
		TemplateID: &template.ID,
		Name:       "launch blast",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if campaign.Subject != template.Subject || campaign.Body != template.Body {
		t.Fatalf("campaign content not seeded from template: %+v", campaign)
	}
	if campaign.Status != domain.StatusDraft {
		t.Fatalf("status = %q, want draft", campaign.Status)
	}
}

func TestCreateCampaignRejectsBadTrigger(t *testing.T) {
	f := setupEmail(t)

	_, err := f.svc.CreateCampaign(context.Background(), domain.CreateCampaignRequest{
		ProjectID:   f.projectID,
		Name:        "bad",
		Subject:     "hello",
		TriggerType: "scheduled",
	})
	if err != domain.ErrInvalidTrigger {
		t.Fatalf("err = %v, want ErrInvalidTrigger", err)
	}

	// Automatic campaigns must name a supported trigger event.
	_, err = f.svc.CreateCampaign(context.Background(), domain.CreateCampaignRequest{
		ProjectID:    f.projectID,
		Name:         "bad",
		Subject:      "hello",
		TriggerType:  domain.TriggerAutomatic,
		TriggerEvent: "on_leave",
	})
	if err != domain.ErrInvalidTrigger {
		t.Fatalf("err = %v, want ErrInvalidTrigger", err)
	}
}

func TestSendCampaignPersonalizesAndCollectsFailures(t *testing.T) {
	f := setupEmail(t)
	ctx := context.Background()

	f.seedEntry(t, "ada@example.com", "Ada", 1, waitlistdomain.StatusActive)
	f.seedEntry(t, "broken@example.com", "", 2, waitlistdomain.StatusActive)
	f.seedEntry(t, "gone@example.com", "Gone", 3, waitlistdomain.StatusRejected)
	f.provider.failTo["broken@example.com"] = errors.New("mailbox full")

	campaign, err := f.svc.CreateCampaign(ctx, domain.CreateCampaignRequest{
		ProjectID: f.projectID,
		Name:      "launch",
		Subject:   "{{waitlist_name}} update",
		Body:      "Hi {{name}}, you are #{{position}}.",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	report, err := f.svc.SendCampaign(ctx, domain.SendCampaignRequest{
		ProjectID:  f.projectID,
		CampaignID: campaign.ID,
	})
	if err != nil {
		t.Fatalf("send campaign: %v", err)
	}

	// Rejected entries are not recipients.
	if report.Requested != 2 || report.Sent != 1 {
		t.Fatalf("report = %+v, want 2 requested, 1 sent", report)
	}
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], "broken@example.com") {
		t.Fatalf("errors = %v", report.Errors)
	}

	sent := f.provider.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent = %+v, want 1 delivery", sent)
	}
	if sent[0].Subject != "Launchpad update" {
		t.Fatalf("subject = %q", sent[0].Subject)
	}
	if sent[0].Body != "Hi Ada, you are #1." {
		t.Fatalf("body = %q", sent[0].Body)
	}

	updated, err := f.svc.GetCampaign(ctx, f.projectID, campaign.ID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if updated.Status != domain.StatusSent || updated.TotalSent != 1 || updated.SentAt == nil {
		t.Fatalf("campaign after send = %+v", updated)
	}

	events, err := f.svc.ListEvents(ctx, f.projectID, &campaign.ID, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %+v, want one sent and one failed", events)
	}
}

func TestSendCampaignTwiceConflicts(t *testing.T) {
	f := setupEmail(t)
	ctx := context.Background()

	f.seedEntry(t, "ada@example.com", "Ada", 1, waitlistdomain.StatusActive)

	campaign, err := f.svc.CreateCampaign(ctx, domain.CreateCampaignRequest{
		ProjectID: f.projectID,
		Name:      "launch",
		Subject:   "hello",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	if _, err := f.svc.SendCampaign(ctx, domain.SendCampaignRequest{
		ProjectID:  f.projectID,
		CampaignID: campaign.ID,
	}); err != nil {
		t.Fatalf("first send: %v", err)
	}

	_, err = f.svc.SendCampaign(ctx, domain.SendCampaignRequest{
		ProjectID:  f.projectID,
		CampaignID: campaign.ID,
	})
	if err != domain.ErrAlreadySent {
		t.Fatalf("err = %v, want ErrAlreadySent", err)
	}
}

func TestSendCampaignNoRecipients(t *testing.T) {
	f := setupEmail(t)
	ctx := context.Background()

	campaign, err := f.svc.CreateCampaign(ctx, domain.CreateCampaignRequest{
		ProjectID: f.projectID,
		Name:      "launch",
		Subject:   "hello",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	_, err = f.svc.SendCampaign(ctx, domain.SendCampaignRequest{
		ProjectID:  f.projectID,
		CampaignID: campaign.ID,
	})
	if err != domain.ErrNoRecipients {
		t.Fatalf("err = %v, want ErrNoRecipients", err)
	}
}

func TestSendCampaignTestEmailLeavesDraft(t *testing.T) {
	f := setupEmail(t)
	ctx := context.Background()

	campaign, err := f.svc.CreateCampaign(ctx, domain.CreateCampaignRequest{
		ProjectID: f.projectID,
		Name:      "launch",
		Subject:   "Hi {{name}}",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	report, err := f.svc.SendCampaign(ctx, domain.SendCampaignRequest{
		ProjectID:  f.projectID,
		CampaignID: campaign.ID,
		TestEmail:  "me@example.com",
	})
	if err != nil {
		t.Fatalf("test send: %v", err)
	}
	if report.Sent != 1 {
		t.Fatalf("report = %+v", report)
	}

	sent := f.provider.Sent()
	if len(sent) != 1 || sent[0].To != "me@example.com" || sent[0].Subject != "Hi there" {
		t.Fatalf("sent = %+v", sent)
	}

	updated, err := f.svc.GetCampaign(ctx, f.projectID, campaign.ID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if updated.Status != domain.StatusDraft || updated.TotalSent != 0 {
		t.Fatalf("campaign after test send = %+v", updated)
	}

	events, err := f.svc.ListEvents(ctx, f.projectID, &campaign.ID, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %+v, want none for test sends", events)
	}
}

func TestSendWelcomeUsesOnJoinCampaigns(t *testing.T) {
	f := setupEmail(t)
	ctx := context.Background()

	welcome, err := f.svc.CreateCampaign(ctx, domain.CreateCampaignRequest{
		ProjectID:    f.projectID,
		Name:         "auto welcome",
		Subject:      "Welcome {{name}}",
		Body:         "You are #{{position}} on {{waitlist_name}}.",
		TriggerType:  domain.TriggerAutomatic,
		TriggerEvent: domain.EventOnJoin,
	})
	if err != nil {
		t.Fatalf("create welcome campaign: %v", err)
	}

	// Manual campaigns must not fire on join.
	if _, err := f.svc.CreateCampaign(ctx, domain.CreateCampaignRequest{
		ProjectID: f.projectID,
		Name:      "manual blast",
		Subject:   "buy now",
	}); err != nil {
		t.Fatalf("create manual campaign: %v", err)
	}

	entry := f.seedEntry(t, "new@example.com", "Grace", 7, waitlistdomain.StatusActive)

	if err := f.svc.SendWelcome(ctx, domain.WelcomeParams{
		ProjectID: f.projectID,
		EntryID:   entry.ID,
		Recipient: entry.Email,
		Name:      entry.Name,
		Position:  entry.Position,
	}); err != nil {
		t.Fatalf("send welcome: %v", err)
	}

	sent := f.provider.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent = %+v, want exactly the on-join campaign", sent)
	}
	if sent[0].Subject != "Welcome Grace" {
		t.Fatalf("subject = %q", sent[0].Subject)
	}
	if sent[0].Body != "You are #7 on Launchpad." {
		t.Fatalf("body = %q", sent[0].Body)
	}

	updated, err := f.svc.GetCampaign(ctx, f.projectID, welcome.ID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if updated.TotalSent != 1 {
		t.Fatalf("total sent = %d, want 1", updated.TotalSent)
	}
	if updated.Status != domain.StatusDraft {
		t.Fatalf("status = %q, on-join campaigns stay draft", updated.Status)
	}
}

func TestSendCampaignPagesThroughAllRecipients(t *testing.T) {
	f := setupEmail(t)
	ctx := context.Background()

	restore := campaignPageSize
	campaignPageSize = 2
	defer func() { campaignPageSize = restore }()

	for i := 1; i <= 5; i++ {
		f.seedEntry(t, fmt.Sprintf("user%d@example.com", i), "", int64(i), waitlistdomain.StatusActive)
	}

	campaign, err := f.svc.CreateCampaign(ctx, domain.CreateCampaignRequest{
		ProjectID: f.projectID,
		Name:      "launch",
		Subject:   "hello",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	report, err := f.svc.SendCampaign(ctx, domain.SendCampaignRequest{
		ProjectID:  f.projectID,
		CampaignID: campaign.ID,
	})
	if err != nil {
		t.Fatalf("send campaign: %v", err)
	}
	if report.Requested != 5 || report.Sent != 5 {
		t.Fatalf("report = %+v, want all 5 recipients across pages", report)
	}
	if got := len(f.provider.Sent()); got != 5 {
		t.Fatalf("deliveries = %d, want 5", got)
	}
}

func TestTrackOpenAndClickBumpCampaignCounters(t *testing.T) {
	f := setupEmail(t)
	ctx := context.Background()

	f.seedEntry(t, "ada@example.com", "Ada", 1, waitlistdomain.StatusActive)

	campaign, err := f.svc.CreateCampaign(ctx, domain.CreateCampaignRequest{
		ProjectID: f.projectID,
		Name:      "launch",
		Subject:   "hello",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if _, err := f.svc.SendCampaign(ctx, domain.SendCampaignRequest{
		ProjectID:  f.projectID,
		CampaignID: campaign.ID,
	}); err != nil {
		t.Fatalf("send campaign: %v", err)
	}

	events, err := f.svc.ListEvents(ctx, f.projectID, &campaign.ID, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].EventType != domain.EventSent {
		t.Fatalf("events = %+v, want one sent event", events)
	}
	sentEvent := events[0]

	if err := f.svc.TrackOpen(ctx, sentEvent.ID); err != nil {
		t.Fatalf("track open: %v", err)
	}
	if err := f.svc.TrackClick(ctx, sentEvent.ID); err != nil {
		t.Fatalf("track click: %v", err)
	}

	updated, err := f.svc.GetCampaign(ctx, f.projectID, campaign.ID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if updated.TotalOpened != 1 || updated.TotalClicked != 1 {
		t.Fatalf("counters = %d opened / %d clicked, want 1 / 1", updated.TotalOpened, updated.TotalClicked)
	}

	events, err = f.svc.ListEvents(ctx, f.projectID, &campaign.ID, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	types := map[string]int{}
	for _, event := range events {
		types[event.EventType]++
	}
	if types[domain.EventOpened] != 1 || types[domain.EventClicked] != 1 {
		t.Fatalf("event types = %v, want one opened and one clicked", types)
	}
}

func TestTrackOpenRejectsUnknownAndDerivedEvents(t *testing.T) {
	f := setupEmail(t)
	ctx := context.Background()

	if err := f.svc.TrackOpen(ctx, f.node.Generate()); err != domain.ErrEventNotFound {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}

	f.seedEntry(t, "ada@example.com", "Ada", 1, waitlistdomain.StatusActive)
	campaign, err := f.svc.CreateCampaign(ctx, domain.CreateCampaignRequest{
		ProjectID: f.projectID,
		Name:      "launch",
		Subject:   "hello",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if _, err := f.svc.SendCampaign(ctx, domain.SendCampaignRequest{
		ProjectID:  f.projectID,
		CampaignID: campaign.ID,
	}); err != nil {
		t.Fatalf("send campaign: %v", err)
	}

	events, err := f.svc.ListEvents(ctx, f.projectID, &campaign.ID, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if err := f.svc.TrackOpen(ctx, events[0].ID); err != nil {
		t.Fatalf("track open: %v", err)
	}

	events, err = f.svc.ListEvents(ctx, f.projectID, &campaign.ID, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	var openedID snowflake.ID
	for _, event := range events {
		if event.EventType == domain.EventOpened {
			openedID = event.ID
		}
	}

	// Only delivery events accept engagement tracking.
	if err := f.svc.TrackOpen(ctx, openedID); err != domain.ErrEventNotFound {
		t.Fatalf("err = %v, want ErrEventNotFound for derived event", err)
	}
}
