package store

import (
	"context"

	"github.com/bridgehead/bridgehead-api/internal/domain"
)

const (
	// DefaultRadiusKm is the nearby-search radius used when the caller gives none.
	DefaultRadiusKm = 10.0

	// MaxRadiusKm caps nearby searches.
	MaxRadiusKm = 100.0
)

// DemandStore reads community demand posts.
type DemandStore interface {
	// ListRecent returns up to limit demands, newest first.
	ListRecent(ctx context.Context, limit int) ([]domain.DemandPost, error)

	// GetByIDs returns the demands with the given IDs in request order.
	// Returns ErrDemandNotFound naming the missing IDs if any is unknown.
	GetByIDs(ctx context.Context, ids []string) ([]domain.DemandPost, error)

	// ListNear returns up to limit demands within radiusKm of center, closest
	// first. A non-positive radius means DefaultRadiusKm; radii above
	// MaxRadiusKm are capped.
	ListNear(ctx context.Context, center domain.Coordinates, radiusKm float64, limit int) ([]domain.DemandPost, error)
}

// RentalStore reads commercial rental listings.
type RentalStore interface {
	// ListRecent returns up to limit rentals, newest first.
	ListRecent(ctx context.Context, limit int) ([]domain.RentalPost, error)

	// GetByIDs returns the rentals with the given IDs in request order.
	// Returns ErrRentalNotFound naming the missing IDs if any is unknown.
	GetByIDs(ctx context.Context, ids []string) ([]domain.RentalPost, error)
}
