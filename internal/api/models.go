package api

import (
	"github.com/bridgehead/bridgehead-api/internal/domain"
)

// GeocodeRequest defines the payload for POST /api/ai/geocode.
type GeocodeRequest struct {
	Address string `json:"address" validate:"required,max=500"`
}

// CoordinatesRequest defines the payload for POST /api/ai/reverse-geocode.
// Pointers distinguish a missing value from 0.
type CoordinatesRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// Coordinates converts the validated request into domain coordinates.
func (r CoordinatesRequest) Coordinates() domain.Coordinates {
	return domain.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// IdeasRequest defines the payload for POST /api/ai/ideas.
type IdeasRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	DeepDive  bool     `json:"deep_dive"`
	// RadiusKm of zero means the server default.
	RadiusKm float64 `json:"radius_km" validate:"gte=0,lte=100"`
}

// MatchesRequest defines the payload for POST /api/ai/matches. Omitted ID
// lists select the most recent posts.
type MatchesRequest struct {
	DemandIDs []string `json:"demand_ids" validate:"max=200,dive,required,max=64"`
	RentalIDs []string `json:"rental_ids" validate:"max=200,dive,required,max=64"`
}

// CoordinatesResponse is returned by the geocode endpoint.
type CoordinatesResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AddressResponse is returned by the reverse-geocode endpoint. Approximate is
// true when no address could be resolved and Address holds the coordinate
// placeholder instead.
type AddressResponse struct {
	Address     string `json:"address"`
	Approximate bool   `json:"approximate"`
}

// SourceResponse is one citation in an idea report.
type SourceResponse struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// IdeasResponse is returned by the ideas endpoint.
type IdeasResponse struct {
	Markdown    string           `json:"markdown"`
	Sources     []SourceResponse `json:"sources"`
	DeepDive    bool             `json:"deep_dive"`
	DemandCount int              `json:"demand_count"`
}

// MatchesResponse is returned by the matches endpoint.
type MatchesResponse struct {
	Matches []domain.Match `json:"matches"`
}

func ideaReportToResponse(report *domain.IdeaReport) IdeasResponse {
	sources := make([]SourceResponse, 0, len(report.Sources))
	for _, s := range report.Sources {
		sources = append(sources, SourceResponse{Kind: string(s.Kind), Title: s.Title, URI: s.URI})
	}
	return IdeasResponse{
		Markdown:    report.Markdown,
		Sources:     sources,
		DeepDive:    report.DeepDive,
		DemandCount: report.DemandCount,
	}
}
