package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/metr/internal/config"
	"github.com/smallbiznis/metr/internal/gateway"
	"github.com/smallbiznis/metr/internal/meter"
	"github.com/smallbiznis/metr/internal/migration"
	"github.com/smallbiznis/metr/internal/observability"
	"github.com/smallbiznis/metr/pkg/db"
	"go.uber.org/fx"
)

func main() {
	var (
		cfg     config.Config
		handler *gateway.Handler
	)

	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		meter.Module,
		gateway.Module,
		fx.Populate(&cfg, &handler),
		fx.NopLogger,
	)

	// Connections opened here survive across warm invocations.
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("start: %v", err)
	}

	lambda.StartWithOptions(handler.Func(cfg.LambdaHandler),
		lambda.WithEnableSIGTERM(func() {
			_ = app.Stop(context.Background())
		}),
	)
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
