package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bridgehead/bridgehead-api/internal/config"
	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/bridgehead/bridgehead-api/internal/generation"
	"github.com/bridgehead/bridgehead-api/internal/platform/logger"
	"github.com/bridgehead/bridgehead-api/internal/store"
	"github.com/google/uuid"
)

const (
	// ideaCandidateLimit bounds how many nearby demands are loaded before
	// ranking them for the idea prompt.
	ideaCandidateLimit = 100

	defaultMaxMatchPosts = 50
)

// GeocodeCache caches forward-geocoding answers. Implementations must treat a
// miss as (zero, false, nil).
type GeocodeCache interface {
	Get(ctx context.Context, address string) (domain.Coordinates, bool, error)
	Set(ctx context.Context, address string, coords domain.Coordinates) error
}

// IdeaRequest describes a business-idea report request.
type IdeaRequest struct {
	Location domain.Coordinates
	DeepDive bool
	// RadiusKm limits which demands inform the report. Zero means the store default.
	RadiusKm float64
}

// MatchRequest selects the posts to match. Empty ID lists mean "the most
// recent posts".
type MatchRequest struct {
	DemandIDs []string
	RentalIDs []string
}

// Service defines the AI pipeline operations.
// Every operation is tracked per user and action; pass uuid.Nil to skip tracking.
type Service interface {
	// Geocode converts a free-text address into coordinates.
	Geocode(ctx context.Context, userID uuid.UUID, address string) (domain.Coordinates, error)

	// ReverseGeocode resolves coordinates into a single-line address.
	ReverseGeocode(ctx context.Context, userID uuid.UUID, coords domain.Coordinates) (domain.Location, error)

	// GenerateIdeas produces a Markdown business-idea report informed by the
	// demands posted near the requested location.
	GenerateIdeas(ctx context.Context, userID uuid.UUID, req IdeaRequest) (*domain.IdeaReport, error)

	// FindMatches loads posts from the store and pairs demands with rentals.
	FindMatches(ctx context.Context, userID uuid.UUID, req MatchRequest) ([]domain.Match, error)

	// MatchPosts pairs the supplied demands with the supplied rentals. Matches
	// referencing posts outside these inputs are dropped. Results are ordered
	// by confidence, highest first.
	MatchPosts(ctx context.Context, demands []domain.DemandPost, rentals []domain.RentalPost) ([]domain.Match, error)
}

// Options tune the pipeline limits.
type Options struct {
	MaxIdeaDemands int
	MaxMatchPosts  int
}

// OptionsFromConfig extracts the pipeline limits from the LLM configuration.
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		MaxIdeaDemands: cfg.MaxIdeaDemands,
		MaxMatchPosts:  cfg.MaxMatchPosts,
	}
}

type advisorService struct {
	generator generation.Generator
	demands   store.DemandStore
	rentals   store.RentalStore
	cache     GeocodeCache
	tracker   *RequestTracker
	opts      Options
	logger    *slog.Logger
}

// Ensure advisorService implements Service interface
var _ Service = (*advisorService)(nil)

// NewAdvisorService creates the pipeline service. cache may be nil to disable
// geocode caching.
func NewAdvisorService(
	generator generation.Generator,
	demands store.DemandStore,
	rentals store.RentalStore,
	cache GeocodeCache,
	opts Options,
	logger *slog.Logger,
) (Service, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: generator cannot be nil", generation.ErrInvalidConfig)
	}
	if demands == nil || rentals == nil {
		return nil, errors.New("post stores cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxIdeaDemands <= 0 {
		opts.MaxIdeaDemands = generation.DefaultMaxIdeaDemands
	}
	if opts.MaxMatchPosts <= 0 {
		opts.MaxMatchPosts = defaultMaxMatchPosts
	}

	return &advisorService{
		generator: generator,
		demands:   demands,
		rentals:   rentals,
		cache:     cache,
		tracker:   NewRequestTracker(),
		opts:      opts,
		logger:    logger.With(slog.String("component", "advisor_service")),
	}, nil
}

// tracked runs fn under a request ticket for (userID, action). A result that
// arrives after a newer request began is discarded with ErrSuperseded.
func tracked[T any](
	s *advisorService,
	ctx context.Context,
	userID uuid.UUID,
	action Action,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	if userID == uuid.Nil {
		return fn(ctx)
	}

	reqCtx, ticket := s.tracker.Begin(ctx, userID, action)
	defer ticket.Finish()

	result, err := fn(reqCtx)
	if !ticket.Current() {
		logger.FromContextOrDefault(ctx, s.logger).Info("discarding superseded result",
			slog.String("action", string(action)),
			slog.Uint64("token", ticket.Token()))
		return zero, fmt.Errorf("%w: %s", ErrSuperseded, action)
	}
	if err != nil {
		return zero, err
	}
	return result, nil
}
