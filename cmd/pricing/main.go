package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/spotlane/pricing/internal/clock"
	"github.com/spotlane/pricing/internal/config"
	"github.com/spotlane/pricing/internal/migration"
	"github.com/spotlane/pricing/internal/observability"
	"github.com/spotlane/pricing/internal/server"
	"github.com/spotlane/pricing/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
