package webhook

import (
	"github.com/waitlyhq/waitly/internal/webhook/repository"
	"github.com/waitlyhq/waitly/internal/webhook/service"
	"go.uber.org/fx"
)

var Module = fx.Module("webhook.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
