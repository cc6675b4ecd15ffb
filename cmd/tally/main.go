package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/internal/clock"
	"github.com/smallbiznis/tally/internal/config"
	"github.com/smallbiznis/tally/internal/lock"
	"github.com/smallbiznis/tally/internal/logger"
	"github.com/smallbiznis/tally/internal/migration"
	"github.com/smallbiznis/tally/internal/observability"
	"github.com/smallbiznis/tally/internal/server"
	"github.com/smallbiznis/tally/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,
		migration.Module,

		// Domain + HTTP surface
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
