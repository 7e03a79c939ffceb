package advisor_test

import (
	"context"
	"sync"

	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/bridgehead/bridgehead-api/internal/generation"
)

type mockGenerator struct {
	mu       sync.Mutex
	requests []generation.Request

	GenerateFn func(ctx context.Context, req generation.Request) (*generation.Response, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	return &generation.Response{Text: "ok"}, nil
}

func (m *mockGenerator) Requests() []generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]generation.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func respondWith(text string) func(context.Context, generation.Request) (*generation.Response, error) {
	return func(context.Context, generation.Request) (*generation.Response, error) {
		return &generation.Response{Text: text}, nil
	}
}

type mockDemandStore struct {
	ListRecentFn func(ctx context.Context, limit int) ([]domain.DemandPost, error)
	GetByIDsFn   func(ctx context.Context, ids []string) ([]domain.DemandPost, error)
	ListNearFn   func(ctx context.Context, center domain.Coordinates, radiusKm float64, limit int) ([]domain.DemandPost, error)
}

func (m *mockDemandStore) ListRecent(ctx context.Context, limit int) ([]domain.DemandPost, error) {
	if m.ListRecentFn != nil {
		return m.ListRecentFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockDemandStore) GetByIDs(ctx context.Context, ids []string) ([]domain.DemandPost, error) {
	if m.GetByIDsFn != nil {
		return m.GetByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockDemandStore) ListNear(
	ctx context.Context,
	center domain.Coordinates,
	radiusKm float64,
	limit int,
) ([]domain.DemandPost, error) {
	if m.ListNearFn != nil {
		return m.ListNearFn(ctx, center, radiusKm, limit)
	}
	return nil, nil
}

type mockRentalStore struct {
	ListRecentFn func(ctx context.Context, limit int) ([]domain.RentalPost, error)
	GetByIDsFn   func(ctx context.Context, ids []string) ([]domain.RentalPost, error)
}

func (m *mockRentalStore) ListRecent(ctx context.Context, limit int) ([]domain.RentalPost, error) {
	if m.ListRecentFn != nil {
		return m.ListRecentFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockRentalStore) GetByIDs(ctx context.Context, ids []string) ([]domain.RentalPost, error) {
	if m.GetByIDsFn != nil {
		return m.GetByIDsFn(ctx, ids)
	}
	return nil, nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string]domain.Coordinates
	getErr  error
	setErr  error
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]domain.Coordinates)}
}

func (m *mockCache) Get(_ context.Context, address string) (domain.Coordinates, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.Coordinates{}, false, m.getErr
	}
	c, ok := m.entries[address]
	return c, ok, nil
}

func (m *mockCache) Set(_ context.Context, address string, coords domain.Coordinates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[address] = coords
	return nil
}
