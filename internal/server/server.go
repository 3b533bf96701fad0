package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/waitlyhq/waitly/internal/analytics"
	analyticsdomain "github.com/waitlyhq/waitly/internal/analytics/domain"
	"github.com/waitlyhq/waitly/internal/apikey"
	apikeydomain "github.com/waitlyhq/waitly/internal/apikey/domain"
	"github.com/waitlyhq/waitly/internal/auth"
	authdomain "github.com/waitlyhq/waitly/internal/auth/domain"
	"github.com/waitlyhq/waitly/internal/auth/session"
	"github.com/waitlyhq/waitly/internal/config"
	"github.com/waitlyhq/waitly/internal/embed"
	embeddomain "github.com/waitlyhq/waitly/internal/embed/domain"
	"github.com/waitlyhq/waitly/internal/email"
	emaildomain "github.com/waitlyhq/waitly/internal/email/domain"
	"github.com/waitlyhq/waitly/internal/observability"
	obsmiddleware "github.com/waitlyhq/waitly/internal/observability/logger"
	obsmetrics "github.com/waitlyhq/waitly/internal/observability/metrics"
	obstracing "github.com/waitlyhq/waitly/internal/observability/tracing"
	"github.com/waitlyhq/waitly/internal/project"
	projectdomain "github.com/waitlyhq/waitly/internal/project/domain"
	"github.com/waitlyhq/waitly/internal/ratelimit"
	"github.com/waitlyhq/waitly/internal/waitlist"
	waitlistdomain "github.com/waitlyhq/waitly/internal/waitlist/domain"
	"github.com/waitlyhq/waitly/internal/webhook"
	webhookdomain "github.com/waitlyhq/waitly/internal/webhook/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	project.Module,
	embed.Module,
	waitlist.Module,
	analytics.Module,
	email.Module,
	webhook.Module,
	apikey.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node

	sessions *session.Manager

	authsvc      authdomain.Service
	projectSvc   projectdomain.Service
	waitlistSvc  waitlistdomain.Service
	embedSvc     embeddomain.Service
	analyticsSvc analyticsdomain.Service
	emailSvc     emaildomain.Service
	webhookSvc   webhookdomain.Service
	apiKeySvc    apikeydomain.Service

	joinLimiter *ratelimit.JoinLimiter
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node

	Sessions *session.Manager

	Authsvc      authdomain.Service
	ProjectSvc   projectdomain.Service
	WaitlistSvc  waitlistdomain.Service
	EmbedSvc     embeddomain.Service
	AnalyticsSvc analyticsdomain.Service
	EmailSvc     emaildomain.Service
	WebhookSvc   webhookdomain.Service
	APIKeySvc    apikeydomain.Service

	JoinLimiter *ratelimit.JoinLimiter `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics    `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("http.server"),
		genID:        p.GenID,
		sessions:     p.Sessions,
		authsvc:      p.Authsvc,
		projectSvc:   p.ProjectSvc,
		waitlistSvc:  p.WaitlistSvc,
		embedSvc:     p.EmbedSvc,
		analyticsSvc: p.AnalyticsSvc,
		emailSvc:     p.EmailSvc,
		webhookSvc:   p.WebhookSvc,
		apiKeySvc:    p.APIKeySvc,
		joinLimiter:  p.JoinLimiter,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAdminRoutes()
	svc.registerPublicRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.AuthRequired())

	admin.GET("/projects", s.ListProjects)
	admin.POST("/projects", s.CreateProject)

	proj := admin.Group("/projects/:projectId", s.RequireProject())
	{
		proj.GET("", s.GetProject)
		proj.PATCH("", s.UpdateProject)
		proj.DELETE("", s.DeleteProject)

		// -------- Waitlist entries --------
		proj.GET("/entries", s.ListEntries)
		proj.GET("/entries/export", s.ExportEntries)
		proj.GET("/entries/:entryId", s.GetEntry)
		proj.PATCH("/entries/:entryId", s.UpdateEntry)
		proj.DELETE("/entries/:entryId", s.DeleteEntry)
		proj.DELETE("/entries", s.ClearEntries)

		// -------- Embed form --------
		proj.GET("/embed", s.GetEmbedConfiguration)
		proj.PATCH("/embed", s.UpdateEmbedConfiguration)
		proj.GET("/embed/fields", s.ListCustomFields)
		proj.POST("/embed/fields", s.CreateCustomField)
		proj.PATCH("/embed/fields/:fieldId", s.UpdateCustomField)
		proj.DELETE("/embed/fields/:fieldId", s.DeleteCustomField)

		// -------- Analytics --------
		proj.GET("/analytics/stats", s.GetStats)
		proj.GET("/analytics/signups", s.GetSignupsOverTime)
		proj.GET("/analytics/daily", s.GetDailySignups)
		proj.GET("/analytics/sources", s.GetTrafficSources)

		// -------- Email --------
		proj.GET("/templates", s.ListTemplates)
		proj.POST("/templates", s.CreateTemplate)
		proj.PATCH("/templates/:templateId", s.UpdateTemplate)
		proj.DELETE("/templates/:templateId", s.DeleteTemplate)

		proj.GET("/campaigns", s.ListCampaigns)
		proj.POST("/campaigns", s.CreateCampaign)
		proj.GET("/campaigns/:campaignId", s.GetCampaign)
		proj.PATCH("/campaigns/:campaignId", s.UpdateCampaign)
		proj.DELETE("/campaigns/:campaignId", s.DeleteCampaign)
		proj.POST("/campaigns/:campaignId/send", s.SendCampaign)
		proj.GET("/email-events", s.ListEmailEvents)

		// -------- Integrations --------
		proj.GET("/api-keys", s.ListAPIKeys)
		proj.POST("/api-keys", s.CreateAPIKey)
		proj.POST("/api-keys/:keyId/revoke", s.RevokeAPIKey)
		proj.DELETE("/api-keys/:keyId", s.DeleteAPIKey)

		proj.GET("/webhooks", s.ListWebhooks)
		proj.POST("/webhooks", s.CreateWebhook)
		proj.PATCH("/webhooks/:webhookId", s.UpdateWebhook)
		proj.DELETE("/webhooks/:webhookId", s.DeleteWebhook)
	}
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/public/projects/:projectId")

	public.GET("", s.PublicProject)
	public.GET("/embed", s.PublicEmbedSnapshot)
	public.POST("/join", s.JoinRateLimit(), s.Join)
	public.GET("/status/:referralCode", s.EntryStatus)
	public.POST("/view", s.RecordView)

	track := s.engine.Group("/public/email")
	track.GET("/open/:eventId", s.TrackEmailOpen)
	track.GET("/click/:eventId", s.TrackEmailClick)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1")

	api.GET("/entries", s.APIKeyRequired(apikeydomain.PermissionRead), s.APIListEntries)
	api.POST("/entries", s.APIKeyRequired(apikeydomain.PermissionWrite), s.APICreateEntry)
	api.GET("/entries/:entryId", s.APIKeyRequired(apikeydomain.PermissionRead), s.APIGetEntry)
	api.DELETE("/entries/:entryId", s.APIKeyRequired(apikeydomain.PermissionWrite), s.APIDeleteEntry)
	api.GET("/stats", s.APIKeyRequired(apikeydomain.PermissionRead), s.APIStats)
}
