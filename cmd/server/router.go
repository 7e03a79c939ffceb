package main

import (
	"net/http"

	"github.com/bridgehead/bridgehead-api/internal/api"
	apiMiddleware "github.com/bridgehead/bridgehead-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	aiHandler := api.NewAIHandler(app.advisorService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api/ai", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/geocode", aiHandler.Geocode)
		r.Post("/reverse-geocode", aiHandler.ReverseGeocode)
		r.Post("/ideas", aiHandler.Ideas)
		r.Post("/matches", aiHandler.Matches)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	return r
}
