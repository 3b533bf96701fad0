package waitlist

import (
	"github.com/waitlyhq/waitly/internal/waitlist/repository"
	"github.com/waitlyhq/waitly/internal/waitlist/service"
	"go.uber.org/fx"
)

var Module = fx.Module("waitlist.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
