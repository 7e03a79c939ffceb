package generation

import (
	"context"

	"github.com/bridgehead/bridgehead-api/internal/domain"
)

// Task names the pipeline operation a request belongs to. Implementations use it
// for logging and metrics.
type Task string

const (
	TaskGeocode        Task = "geocode"
	TaskReverseGeocode Task = "reverse_geocode"
	TaskIdeas          Task = "ideas"
	TaskMatches        Task = "matches"
)

// Request describes a single generation call.
type Request struct {
	Task   Task
	Prompt string

	// DeepDive selects the higher-capability model tier.
	DeepDive bool

	// JSON forces an application/json response.
	JSON bool

	// Grounding attaches web search and maps grounding. When Location is set it
	// is passed to the maps tool as the user's position.
	Grounding bool
	Location  *domain.Coordinates
}

// Response is the raw upstream answer.
type Response struct {
	Text    string
	Sources []domain.GroundingSource
	Model   string
}

// Generator performs exactly one logical upstream generation per call.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
