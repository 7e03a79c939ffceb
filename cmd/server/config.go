package main

import (
	"fmt"
	"log/slog"

	"github.com/bridgehead/bridgehead-api/internal/config"
)

// loadAppConfig loads the application configuration from environment variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// logConfigSummary logs non-secret configuration details.
func logConfigSummary(cfg *config.Config, logger *slog.Logger) {
	logger.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("model", cfg.LLM.ModelName),
		slog.String("deep_dive_model", cfg.LLM.DeepDiveModelName),
		slog.Bool("geocode_cache", cfg.Redis.Enabled()))

	logger.Debug("Secrets present",
		slog.Bool("database_url", cfg.Database.URL != ""),
		slog.Bool("jwt_secret", cfg.Auth.JWTSecret != ""),
		slog.Bool("gemini_api_key", cfg.LLM.GeminiAPIKey != ""))
}
