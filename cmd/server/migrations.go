package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bridgehead/bridgehead-api/internal/config"
	"github.com/bridgehead/bridgehead-api/internal/platform/postgres"
)

// handleMigrations runs a single goose command against the configured
// database. Unknown commands are rejected before connecting.
func handleMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	if !slices.Contains(postgres.MigrationCommands, command) {
		return fmt.Errorf("unknown migration command %q (want one of %v)", command, postgres.MigrationCommands)
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Executing migrations", slog.String("command", command))
	if err := postgres.Migrate(ctx, db, command, logger); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	logger.Info("Migrations completed", slog.String("command", command))
	return nil
}
