package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/amainooti/Zakat-foundation/internal/config"
	"github.com/amainooti/Zakat-foundation/internal/logger"
	"github.com/amainooti/Zakat-foundation/internal/migration"
	"github.com/amainooti/Zakat-foundation/internal/server"
	"github.com/amainooti/Zakat-foundation/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
