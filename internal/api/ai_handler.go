package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bridgehead/bridgehead-api/internal/api/shared"
	"github.com/bridgehead/bridgehead-api/internal/platform/logger"
	"github.com/bridgehead/bridgehead-api/internal/redact"
	"github.com/bridgehead/bridgehead-api/internal/service/advisor"
)

// AIHandler handles the AI advisor endpoints under /api/ai.
type AIHandler struct {
	advisor advisor.Service
	logger  *slog.Logger
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(advisorService advisor.Service, logger *slog.Logger) *AIHandler {
	if advisorService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("advisor service cannot be nil for AIHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AIHandler")
	}

	return &AIHandler{
		advisor: advisorService,
		logger:  logger.With(slog.String("component", "ai_handler")),
	}
}

// Geocode handles POST /api/ai/geocode requests
func (h *AIHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req GeocodeRequest
	userID, ok := decodeAndValidate(w, r, &req, log)
	if !ok {
		return
	}

	coords, err := h.advisor.Geocode(r.Context(), userID, req.Address)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to geocode address")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CoordinatesResponse{
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
	})
}

// ReverseGeocode handles POST /api/ai/reverse-geocode requests.
// When the address cannot be resolved the response carries the coordinate
// placeholder with approximate set, so the caller always has something to show.
func (h *AIHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CoordinatesRequest
	userID, ok := decodeAndValidate(w, r, &req, log)
	if !ok {
		return
	}
	coords := req.Coordinates()

	loc, err := h.advisor.ReverseGeocode(r.Context(), userID, coords)
	switch {
	case err == nil:
		shared.RespondWithJSON(w, r, http.StatusOK, AddressResponse{Address: loc.Address})
	case errors.Is(err, advisor.ErrSuperseded), MapErrorToStatusCode(err) == http.StatusBadRequest:
		HandleAPIError(w, r, err, "")
	default:
		log.Warn("reverse geocode failed, answering with placeholder",
			slog.Int("mapped_status", MapErrorToStatusCode(err)),
			slog.String("error", redact.Error(err)))
		shared.RespondWithJSON(w, r, http.StatusOK, AddressResponse{
			Address:     coords.Placeholder(),
			Approximate: true,
		})
	}
}

// Ideas handles POST /api/ai/ideas requests
func (h *AIHandler) Ideas(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req IdeasRequest
	userID, ok := decodeAndValidate(w, r, &req, log)
	if !ok {
		return
	}

	report, err := h.advisor.GenerateIdeas(r.Context(), userID, advisor.IdeaRequest{
		Location: CoordinatesRequest{Latitude: req.Latitude, Longitude: req.Longitude}.Coordinates(),
		DeepDive: req.DeepDive,
		RadiusKm: req.RadiusKm,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate business ideas")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ideaReportToResponse(report))
}

// Matches handles POST /api/ai/matches requests
func (h *AIHandler) Matches(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req MatchesRequest
	userID, ok := decodeAndValidate(w, r, &req, log)
	if !ok {
		return
	}

	matches, err := h.advisor.FindMatches(r.Context(), userID, advisor.MatchRequest{
		DemandIDs: req.DemandIDs,
		RentalIDs: req.RentalIDs,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to find matches")
		return
	}

	log.Debug("matches found", slog.Int("count", len(matches)))
	shared.RespondWithJSON(w, r, http.StatusOK, MatchesResponse{Matches: matches})
}
