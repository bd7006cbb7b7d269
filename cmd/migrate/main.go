package main

// Apply or inspect the schema:
//   go run ./cmd/migrate            (up)
//   go run ./cmd/migrate status

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"portfolio-backend/internal/shared/config"
	"portfolio-backend/internal/shared/storage/db"
	"portfolio-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.Env)

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if err := run(command, cfg.DatabaseURL); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
}

func run(command, databaseURL string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Connect(ctx, databaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return db.MigrateCommand(ctx, sqlDB, command)
}
