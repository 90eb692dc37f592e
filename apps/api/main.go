// @title           Land iQ Reporting API
// @version         1.0
// @description     Usage analytics and responsibility matrix API
// @host      localhost:8080
// @BasePath  /api

package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/spitfire8790/landiqr/internal/analytics"
	"github.com/spitfire8790/landiqr/internal/audit"
	"github.com/spitfire8790/landiqr/internal/clock"
	"github.com/spitfire8790/landiqr/internal/config"
	"github.com/spitfire8790/landiqr/internal/crm"
	"github.com/spitfire8790/landiqr/internal/ingest"
	"github.com/spitfire8790/landiqr/internal/matrix"
	"github.com/spitfire8790/landiqr/internal/migration"
	"github.com/spitfire8790/landiqr/internal/observability"
	"github.com/spitfire8790/landiqr/internal/seed"
	"github.com/spitfire8790/landiqr/internal/server"
	"github.com/spitfire8790/landiqr/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		fx.Invoke(func(conn *gorm.DB) error {
			if err := migration.Run(conn); err != nil {
				return err
			}
			return seed.EnsureDefaultBoard(conn)
		}),

		audit.Module,
		crm.Module,
		ingest.Module,
		analytics.Module,
		matrix.Module,

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
