package testutils

import (
	"time"

	"github.com/bridgehead/bridgehead-api/internal/domain"
)

// MountainView is the location used by fixtures unless a test overrides it.
var MountainView = domain.Coordinates{Latitude: 37.422, Longitude: -122.084}

// FixtureTime is the creation time of fixture posts.
var FixtureTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// NewDemandPost returns a valid demand post located at MountainView.
func NewDemandPost(id string, upvotes int) domain.DemandPost {
	return domain.DemandPost{
		ID:          id,
		Title:       "Demand " + id,
		Category:    "Food",
		Description: "We want a bakery",
		Location:    domain.Location{Coordinates: MountainView, Address: "Castro St, Mountain View, CA"},
		Images:      []string{},
		Upvotes:     upvotes,
		CreatedAt:   FixtureTime,
	}
}

// NewRentalPost returns a valid rental post located at MountainView.
func NewRentalPost(id string) domain.RentalPost {
	return domain.RentalPost{
		ID:          id,
		Title:       "Storefront " + id,
		Category:    "Retail",
		Description: "Corner unit",
		Location:    domain.Location{Coordinates: MountainView, Address: "Castro St, Mountain View, CA"},
		Images:      []string{},
		Price:       4200,
		SquareFeet:  1200,
		CreatedAt:   FixtureTime,
	}
}
