// Command migrate applies or rolls back the reporting schema migrations.
//
//	migrate up
//	migrate down
package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	_ "github.com/lib/pq"

	"SettleReporting/internal/config"
	"SettleReporting/internal/observability"
	"SettleReporting/internal/store"
)

func main() {
	logger := observability.NewLogger("migrate")

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("open postgres")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping postgres")
	}

	migrator := store.NewMigrator(db, cfg.MigrationsDir, logger)

	switch direction {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	default:
		logger.Fatal().Str("direction", direction).Msg("unknown direction, use up or down")
	}
	if err != nil {
		logger.Fatal().Err(err).Str("direction", direction).Msg("migration failed")
	}

	logger.Info().Str("direction", direction).Msg("migration complete")
}
