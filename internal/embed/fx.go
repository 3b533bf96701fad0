package embed

import (
	"github.com/waitlyhq/waitly/internal/embed/repository"
	"github.com/waitlyhq/waitly/internal/embed/service"
	"go.uber.org/fx"
)

var Module = fx.Module("embed.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
