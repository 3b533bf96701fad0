package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/waitlyhq/waitly/internal/email/domain"
	"github.com/waitlyhq/waitly/internal/observability/metrics"
	projectdomain "github.com/waitlyhq/waitly/internal/project/domain"
	provider "github.com/waitlyhq/waitly/internal/providers/email"
	waitlistdomain "github.com/waitlyhq/waitly/internal/waitlist/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// campaignPageSize bounds one recipient query; SendCampaign pages until the
// list is exhausted.
var campaignPageSize = 1000

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Entries  waitlistdomain.Repository
	Projects projectdomain.Repository
	Provider provider.Provider
	Metrics  *metrics.Metrics
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	entries  waitlistdomain.Repository
	projects projectdomain.Repository
	provider provider.Provider
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("email.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		entries:  p.Entries,
		projects: p.Projects,
		provider: p.Provider,
		metrics:  p.Metrics,
	}
}

func (s *Service) CreateTemplate(ctx context.Context, req domain.CreateTemplateRequest) (domain.Template, error) {
	if req.ProjectID == 0 {
		return domain.Template{}, domain.ErrInvalidProject
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Template{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	template := domain.Template{
		ID:        s.genID.Generate(),
		ProjectID: req.ProjectID,
		Name:      name,
		Subject:   strings.TrimSpace(req.Subject),
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertTemplate(ctx, s.db, &template); err != nil {
		return domain.Template{}, err
	}
	return template, nil
}

func (s *Service) ListTemplates(ctx context.Context, projectID snowflake.ID) ([]domain.Template, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	return s.repo.ListTemplates(ctx, s.db, projectID)
}

func (s *Service) UpdateTemplate(ctx context.Context, req domain.UpdateTemplateRequest) (domain.Template, error) {
	if req.ProjectID == 0 {
		return domain.Template{}, domain.ErrInvalidProject
	}

	template, err := s.repo.FindTemplateByID(ctx, s.db, req.ProjectID, req.TemplateID)
	if err != nil {
		return domain.Template{}, err
	}
	if template == nil {
		return domain.Template{}, domain.ErrTemplateNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Template{}, domain.ErrInvalidName
		}
		template.Name = name
	}
	if req.Subject != nil {
		template.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Body != nil {
		template.Body = *req.Body
	}
	template.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateTemplate(ctx, s.db, template); err != nil {
		return domain.Template{}, err
	}
	return *template, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, projectID, templateID snowflake.ID) error {
	if projectID == 0 {
		return domain.ErrInvalidProject
	}

	template, err := s.repo.FindTemplateByID(ctx, s.db, projectID, templateID)
	if err != nil {
		return err
	}
	if template == nil {
		return domain.ErrTemplateNotFound
	}
	return s.repo.DeleteTemplate(ctx, s.db, projectID, templateID)
}

func (s *Service) CreateCampaign(ctx context.Context, req domain.CreateCampaignRequest) (domain.Campaign, error) {
	if req.ProjectID == 0 {
		return domain.Campaign{}, domain.ErrInvalidProject
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Campaign{}, domain.ErrInvalidName
	}

	triggerType := strings.TrimSpace(req.TriggerType)
	if triggerType == "" {
		triggerType = domain.TriggerManual
	}
	if triggerType != domain.TriggerManual && triggerType != domain.TriggerAutomatic {
		return domain.Campaign{}, domain.ErrInvalidTrigger
	}

	triggerEvent := strings.TrimSpace(req.TriggerEvent)
	if triggerType == domain.TriggerAutomatic && triggerEvent != domain.EventOnJoin {
		return domain.Campaign{}, domain.ErrInvalidTrigger
	}

	subject := strings.TrimSpace(req.Subject)
	body := req.Body

	// A campaign built from a template starts with the template content.
	if req.TemplateID != nil {
		template, err := s.repo.FindTemplateByID(ctx, s.db, req.ProjectID, *req.TemplateID)
		if err != nil {
			return domain.Campaign{}, err
		}
		if template == nil {
			return domain.Campaign{}, domain.ErrTemplateNotFound
		}
		if subject == "" {
			subject = template.Subject
		}
		if body == "" {
			body = template.Body
		}
	}
	if subject == "" {
		return domain.Campaign{}, domain.ErrInvalidSubject
	}

	now := time.Now().UTC()
	campaign := domain.Campaign{
		ID:           s.genID.Generate(),
		ProjectID:    req.ProjectID,
		TemplateID:   req.TemplateID,
		Name:         name,
		Subject:      subject,
		Body:         body,
		Status:       domain.StatusDraft,
		TriggerType:  triggerType,
		TriggerEvent: triggerEvent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertCampaign(ctx, s.db, &campaign); err != nil {
		return domain.Campaign{}, err
	}
	return campaign, nil
}

func (s *Service) ListCampaigns(ctx context.Context, projectID snowflake.ID) ([]domain.Campaign, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	return s.repo.ListCampaigns(ctx, s.db, projectID)
}

func (s *Service) GetCampaign(ctx context.Context, projectID, campaignID snowflake.ID) (domain.Campaign, error) {
	if projectID == 0 {
		return domain.Campaign{}, domain.ErrInvalidProject
	}

	campaign, err := s.repo.FindCampaignByID(ctx, s.db, projectID, campaignID)
	if err != nil {
		return domain.Campaign{}, err
	}
	if campaign == nil {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}
	return *campaign, nil
}

func (s *Service) UpdateCampaign(ctx context.Context, req domain.UpdateCampaignRequest) (domain.Campaign, error) {
	campaign, err := s.GetCampaign(ctx, req.ProjectID, req.CampaignID)
	if err != nil {
		return domain.Campaign{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Campaign{}, domain.ErrInvalidName
		}
		campaign.Name = name
	}
	if req.Subject != nil {
		subject := strings.TrimSpace(*req.Subject)
		if subject == "" {
			return domain.Campaign{}, domain.ErrInvalidSubject
		}
		campaign.Subject = subject
	}
	if req.Body != nil {
		campaign.Body = *req.Body
	}
	if req.TriggerType != nil {
		triggerType := strings.TrimSpace(*req.TriggerType)
		if triggerType != domain.TriggerManual && triggerType != domain.TriggerAutomatic {
			return domain.Campaign{}, domain.ErrInvalidTrigger
		}
		campaign.TriggerType = triggerType
	}
	if req.TriggerEvent != nil {
		campaign.TriggerEvent = strings.TrimSpace(*req.TriggerEvent)
	}
	campaign.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateCampaign(ctx, s.db, &campaign); err != nil {
		return domain.Campaign{}, err
	}
	return campaign, nil
}

func (s *Service) DeleteCampaign(ctx context.Context, projectID, campaignID snowflake.ID) error {
	if _, err := s.GetCampaign(ctx, projectID, campaignID); err != nil {
		return err
	}
	return s.repo.DeleteCampaign(ctx, s.db, projectID, campaignID)
}

// SendCampaign delivers the campaign to every active entry sequentially.
// A failed recipient does not stop the run; failures are collected in the
// report and recorded as failed events.
func (s *Service) SendCampaign(ctx context.Context, req domain.SendCampaignRequest) (domain.SendReport, error) {
	campaign, err := s.GetCampaign(ctx, req.ProjectID, req.CampaignID)
	if err != nil {
		return domain.SendReport{}, err
	}

	projectName, err := s.projectName(ctx, req.ProjectID)
	if err != nil {
		return domain.SendReport{}, err
	}

	// Test sends preview the campaign for one address without touching
	// events, counters, or campaign status.
	if testEmail := strings.TrimSpace(req.TestEmail); testEmail != "" {
		subject, body := personalize(campaign.Subject, campaign.Body, "there", 1, projectName)
		if err := s.provider.Send(ctx, testEmail, subject, body); err != nil {
			return domain.SendReport{}, err
		}
		return domain.SendReport{Requested: 1, Sent: 1}, nil
	}

	if campaign.Status == domain.StatusSent {
		return domain.SendReport{}, domain.ErrAlreadySent
	}

	var recipients []waitlistdomain.Entry
	for offset := 0; ; offset += campaignPageSize {
		page, _, err := s.entries.List(ctx, s.db, req.ProjectID, waitlistdomain.ListFilter{
			Status: waitlistdomain.StatusActive,
			Limit:  campaignPageSize,
			Offset: offset,
		})
		if err != nil {
			return domain.SendReport{}, err
		}
		recipients = append(recipients, page...)
		if len(page) < campaignPageSize {
			break
		}
	}
	if len(recipients) == 0 {
		return domain.SendReport{}, domain.ErrNoRecipients
	}

	campaign.Status = domain.StatusSending
	campaign.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateCampaign(ctx, s.db, &campaign); err != nil {
		return domain.SendReport{}, err
	}

	report := domain.SendReport{Requested: len(recipients)}
	for i := range recipients {
		entry := recipients[i]
		subject, body := personalize(campaign.Subject, campaign.Body, entry.Name, entry.Position, projectName)

		sendErr := s.provider.Send(ctx, entry.Email, subject, body)
		eventType := domain.EventSent
		if sendErr != nil {
			eventType = domain.EventFailed
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", entry.Email, sendErr))
			s.metrics.RecordEmailFailed(ctx, "campaign")
		} else {
			report.Sent++
			s.metrics.RecordEmailSent(ctx, "campaign")
		}

		entryID := entry.ID
		campaignID := campaign.ID
		if err := s.repo.InsertEvent(ctx, s.db, &domain.Event{
			ID:         s.genID.Generate(),
			ProjectID:  req.ProjectID,
			CampaignID: &campaignID,
			EntryID:    &entryID,
			Recipient:  entry.Email,
			EventType:  eventType,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			s.log.Warn("record email event", zap.Error(err))
		}
	}

	now := time.Now().UTC()
	campaign.Status = domain.StatusSent
	campaign.TotalSent += int64(report.Sent)
	campaign.SentAt = &now
	campaign.UpdatedAt = now
	if err := s.repo.UpdateCampaign(ctx, s.db, &campaign); err != nil {
		return report, err
	}

	s.log.Info("campaign dispatched",
		zap.String("campaign_id", campaign.ID.String()),
		zap.Int("requested", report.Requested),
		zap.Int("sent", report.Sent),
		zap.Int("failed", len(report.Errors)),
	)
	return report, nil
}

// SendWelcome delivers every automatic on-join campaign to a new signup.
func (s *Service) SendWelcome(ctx context.Context, params domain.WelcomeParams) error {
	campaigns, err := s.repo.ListJoinCampaigns(ctx, s.db, params.ProjectID)
	if err != nil {
		return err
	}
	if len(campaigns) == 0 {
		return nil
	}

	projectName, err := s.projectName(ctx, params.ProjectID)
	if err != nil {
		return err
	}

	for i := range campaigns {
		campaign := campaigns[i]
		subject, body := personalize(campaign.Subject, campaign.Body, params.Name, params.Position, projectName)

		sendErr := s.provider.Send(ctx, params.Recipient, subject, body)
		eventType := domain.EventSent
		if sendErr != nil {
			eventType = domain.EventFailed
			s.metrics.RecordEmailFailed(ctx, "welcome")
			s.log.Warn("send welcome campaign",
				zap.String("campaign_id", campaign.ID.String()),
				zap.Error(sendErr),
			)
		} else {
			s.metrics.RecordEmailSent(ctx, "welcome")
		}

		campaignID := campaign.ID
		entryID := params.EntryID
		if err := s.repo.InsertEvent(ctx, s.db, &domain.Event{
			ID:         s.genID.Generate(),
			ProjectID:  params.ProjectID,
			CampaignID: &campaignID,
			EntryID:    &entryID,
			Recipient:  params.Recipient,
			EventType:  eventType,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			s.log.Warn("record email event", zap.Error(err))
		}

		if sendErr == nil {
			campaign.TotalSent++
			campaign.UpdatedAt = time.Now().UTC()
			if err := s.repo.UpdateCampaign(ctx, s.db, &campaign); err != nil {
				s.log.Warn("update campaign counters", zap.Error(err))
			}
		}
	}
	return nil
}

// TrackOpen records an open for a delivered message and bumps the campaign
// counter. Opens arrive from tracking pixels, so duplicates count again.
func (s *Service) TrackOpen(ctx context.Context, eventID snowflake.ID) error {
	return s.trackEngagement(ctx, eventID, domain.EventOpened)
}

func (s *Service) TrackClick(ctx context.Context, eventID snowflake.ID) error {
	return s.trackEngagement(ctx, eventID, domain.EventClicked)
}

func (s *Service) trackEngagement(ctx context.Context, eventID snowflake.ID, eventType string) error {
	source, err := s.repo.FindEventByID(ctx, s.db, eventID)
	if err != nil {
		return err
	}
	if source == nil || source.EventType != domain.EventSent {
		return domain.ErrEventNotFound
	}

	if err := s.repo.InsertEvent(ctx, s.db, &domain.Event{
		ID:         s.genID.Generate(),
		ProjectID:  source.ProjectID,
		CampaignID: source.CampaignID,
		EntryID:    source.EntryID,
		Recipient:  source.Recipient,
		EventType:  eventType,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		return err
	}

	if source.CampaignID == nil {
		return nil
	}
	campaign, err := s.repo.FindCampaignByID(ctx, s.db, source.ProjectID, *source.CampaignID)
	if err != nil {
		return err
	}
	if campaign == nil {
		return nil
	}
	switch eventType {
	case domain.EventOpened:
		campaign.TotalOpened++
	case domain.EventClicked:
		campaign.TotalClicked++
	}
	campaign.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateCampaign(ctx, s.db, campaign)
}

func (s *Service) ListEvents(ctx context.Context, projectID snowflake.ID, campaignID *snowflake.ID, limit int) ([]domain.Event, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListEvents(ctx, s.db, projectID, campaignID, limit)
}

func (s *Service) projectName(ctx context.Context, projectID snowflake.ID) (string, error) {
	project, err := s.projects.FindByID(ctx, s.db, projectID)
	if err != nil {
		return "", err
	}
	if project == nil {
		return "", domain.ErrInvalidProject
	}
	return project.Name, nil
}

// personalize substitutes the supported tokens in subject and body.
func personalize(subject, body, name string, position int64, projectName string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "there"
	}

	replacer := strings.NewReplacer(
		"{{name}}", name,
		"{{position}}", strconv.FormatInt(position, 10),
		"{{waitlist_name}}", projectName,
	)
	return replacer.Replace(subject), replacer.Replace(body)
}
