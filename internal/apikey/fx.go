package apikey

import (
	"github.com/waitlyhq/waitly/internal/apikey/repository"
	"github.com/waitlyhq/waitly/internal/apikey/service"
	"go.uber.org/fx"
)

var Module = fx.Module("apikey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
