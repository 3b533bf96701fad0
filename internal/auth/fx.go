package auth

import (
	"github.com/waitlyhq/waitly/internal/auth/repository"
	"github.com/waitlyhq/waitly/internal/auth/service"
	"github.com/waitlyhq/waitly/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)
