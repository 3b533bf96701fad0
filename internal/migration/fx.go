package migration

import (
	analyticsdomain "github.com/waitlyhq/waitly/internal/analytics/domain"
	apikeydomain "github.com/waitlyhq/waitly/internal/apikey/domain"
	authdomain "github.com/waitlyhq/waitly/internal/auth/domain"
	"github.com/waitlyhq/waitly/internal/config"
	embeddomain "github.com/waitlyhq/waitly/internal/embed/domain"
	emaildomain "github.com/waitlyhq/waitly/internal/email/domain"
	projectdomain "github.com/waitlyhq/waitly/internal/project/domain"
	waitlistdomain "github.com/waitlyhq/waitly/internal/waitlist/domain"
	webhookdomain "github.com/waitlyhq/waitly/internal/webhook/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// Non-postgres databases (sqlite in development and tests) use the
		// gorm schema instead of the versioned SQL files.
		return conn.AutoMigrate(
			&authdomain.User{},
			&authdomain.Session{},
			&projectdomain.Project{},
			&waitlistdomain.Entry{},
			&embeddomain.Configuration{},
			&embeddomain.CustomField{},
			&emaildomain.Template{},
			&emaildomain.Campaign{},
			&emaildomain.Event{},
			&analyticsdomain.Event{},
			&apikeydomain.APIKey{},
			&webhookdomain.Webhook{},
		)
	}),
)
