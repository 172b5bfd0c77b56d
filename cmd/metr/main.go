package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/metr/internal/config"
	"github.com/smallbiznis/metr/internal/meter"
	"github.com/smallbiznis/metr/internal/migration"
	"github.com/smallbiznis/metr/internal/observability"
	"github.com/smallbiznis/metr/internal/server"
	"github.com/smallbiznis/metr/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		meter.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
