package mocks

import (
	"context"

	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/bridgehead/bridgehead-api/internal/service/advisor"
	"github.com/google/uuid"
)

// MockAdvisorService implements advisor.Service for testing
type MockAdvisorService struct {
	GeocodeFn        func(ctx context.Context, userID uuid.UUID, address string) (domain.Coordinates, error)
	ReverseGeocodeFn func(ctx context.Context, userID uuid.UUID, coords domain.Coordinates) (domain.Location, error)
	GenerateIdeasFn  func(ctx context.Context, userID uuid.UUID, req advisor.IdeaRequest) (*domain.IdeaReport, error)
	FindMatchesFn    func(ctx context.Context, userID uuid.UUID, req advisor.MatchRequest) ([]domain.Match, error)
	MatchPostsFn     func(ctx context.Context, demands []domain.DemandPost, rentals []domain.RentalPost) ([]domain.Match, error)
}

var _ advisor.Service = (*MockAdvisorService)(nil)

// Geocode implements advisor.Service
func (m *MockAdvisorService) Geocode(ctx context.Context, userID uuid.UUID, address string) (domain.Coordinates, error) {
	if m.GeocodeFn != nil {
		return m.GeocodeFn(ctx, userID, address)
	}
	return domain.Coordinates{}, nil
}

// ReverseGeocode implements advisor.Service
func (m *MockAdvisorService) ReverseGeocode(
	ctx context.Context,
	userID uuid.UUID,
	coords domain.Coordinates,
) (domain.Location, error) {
	if m.ReverseGeocodeFn != nil {
		return m.ReverseGeocodeFn(ctx, userID, coords)
	}
	return domain.Location{Coordinates: coords}, nil
}

// GenerateIdeas implements advisor.Service
func (m *MockAdvisorService) GenerateIdeas(
	ctx context.Context,
	userID uuid.UUID,
	req advisor.IdeaRequest,
) (*domain.IdeaReport, error) {
	if m.GenerateIdeasFn != nil {
		return m.GenerateIdeasFn(ctx, userID, req)
	}
	return &domain.IdeaReport{Sources: []domain.GroundingSource{}}, nil
}

// FindMatches implements advisor.Service
func (m *MockAdvisorService) FindMatches(
	ctx context.Context,
	userID uuid.UUID,
	req advisor.MatchRequest,
) ([]domain.Match, error) {
	if m.FindMatchesFn != nil {
		return m.FindMatchesFn(ctx, userID, req)
	}
	return []domain.Match{}, nil
}

// MatchPosts implements advisor.Service
func (m *MockAdvisorService) MatchPosts(
	ctx context.Context,
	demands []domain.DemandPost,
	rentals []domain.RentalPost,
) ([]domain.Match, error) {
	if m.MatchPostsFn != nil {
		return m.MatchPostsFn(ctx, demands, rentals)
	}
	return []domain.Match{}, nil
}
