package project

import (
	"github.com/waitlyhq/waitly/internal/project/repository"
	"github.com/waitlyhq/waitly/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
