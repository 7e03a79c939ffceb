package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/bridgehead/bridgehead-api/internal/config"
	"github.com/bridgehead/bridgehead-api/internal/generation"
	"github.com/bridgehead/bridgehead-api/internal/platform/cache"
	"github.com/bridgehead/bridgehead-api/internal/platform/gemini"
	"github.com/bridgehead/bridgehead-api/internal/platform/metrics"
	"github.com/bridgehead/bridgehead-api/internal/platform/postgres"
	"github.com/bridgehead/bridgehead-api/internal/service/advisor"
	"github.com/bridgehead/bridgehead-api/internal/service/auth"
	"github.com/bridgehead/bridgehead-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	// registry backs the /metrics endpoint
	registry *prometheus.Registry

	demandStore store.DemandStore
	rentalStore store.RentalStore

	jwtService     auth.JWTService
	generator      generation.Generator
	advisorService advisor.Service
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection must already be established.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: newRegistry(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.demandStore = postgres.NewPostgresDemandStore(db, logger)
	app.rentalStore = postgres.NewPostgresRentalStore(db, logger)

	gen, err := gemini.NewGeminiGenerator(ctx, logger.With(slog.String("component", "llm_generator")), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	app.generator = metrics.InstrumentGenerator(gen, metrics.NewAIMetrics(app.registry))
	logger.Info("LLM generator initialized successfully")

	var geocodeCache advisor.GeocodeCache
	if cfg.Redis.Enabled() {
		geocodeCache = app.setupGeocodeCache(ctx)
	}

	app.advisorService, err = advisor.NewAdvisorService(
		app.generator,
		app.demandStore,
		app.rentalStore,
		geocodeCache,
		advisor.OptionsFromConfig(cfg.LLM),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create advisor service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupGeocodeCache connects to Redis. The cache is an optimisation, so an
// unreachable Redis only disables it.
func (app *application) setupGeocodeCache(ctx context.Context) advisor.GeocodeCache {
	client, err := cache.NewClient(ctx, app.config.Redis)
	if err != nil {
		app.logger.Warn("geocode cache disabled", slog.String("error", err.Error()))
		return nil
	}
	app.redis = client

	ttl := time.Duration(app.config.Redis.GeocodeTTLMinutes) * time.Minute
	app.logger.Info("geocode cache enabled", slog.Duration("ttl", ttl))
	return cache.NewGeocodeCache(client, ttl)
}

// newRegistry returns a registry carrying the standard Go and process collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis connection", slog.String("error", err.Error()))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}
