package email

import (
	"github.com/waitlyhq/waitly/internal/email/repository"
	"github.com/waitlyhq/waitly/internal/email/service"
	"go.uber.org/fx"
)

var Module = fx.Module("email.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
