package analytics

import (
	"github.com/waitlyhq/waitly/internal/analytics/repository"
	"github.com/waitlyhq/waitly/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
