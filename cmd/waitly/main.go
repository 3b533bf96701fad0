package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/waitlyhq/waitly/internal/config"
	"github.com/waitlyhq/waitly/internal/migration"
	"github.com/waitlyhq/waitly/internal/observability"
	emailprovider "github.com/waitlyhq/waitly/internal/providers/email"
	"github.com/waitlyhq/waitly/internal/server"
	"github.com/waitlyhq/waitly/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		emailprovider.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
