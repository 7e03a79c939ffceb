package domain

import (
	"strings"
	"time"
)

// DemandPost is a community-voiced request for a kind of business at a location.
type DemandPost struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Category            string    `json:"category"`
	Description         string    `json:"description"`
	Location            Location  `json:"location"`
	Images              []string  `json:"images"`
	Upvotes             int       `json:"upvotes"`
	CreatedAt           time.Time `json:"createdAt"`
	Phone               string    `json:"phone,omitempty"`
	Email               string    `json:"email,omitempty"`
	OpenToCollaboration bool      `json:"openToCollaboration"`
}

// Validate checks the fields the advisor relies on.
func (d *DemandPost) Validate() error {
	return validatePost(d.ID, d.Title, d.Location)
}

// RentalPost is a commercial property listing available for lease.
type RentalPost struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Category            string    `json:"category"`
	Description         string    `json:"description"`
	Location            Location  `json:"location"`
	Images              []string  `json:"images"`
	Price               float64   `json:"price"`
	SquareFeet          int       `json:"squareFeet"`
	CreatedAt           time.Time `json:"createdAt"`
	Phone               string    `json:"phone,omitempty"`
	Email               string    `json:"email,omitempty"`
	OpenToCollaboration bool      `json:"openToCollaboration"`
}

// Validate checks the fields the advisor relies on.
func (r *RentalPost) Validate() error {
	if err := validatePost(r.ID, r.Title, r.Location); err != nil {
		return err
	}
	if r.Price < 0 {
		return NewValidationError("price", "cannot be negative", nil)
	}
	if r.SquareFeet < 0 {
		return NewValidationError("squareFeet", "cannot be negative", nil)
	}
	return nil
}

func validatePost(id, title string, loc Location) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError("id", "is required", ErrEmptyPostID)
	}
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "is required", ErrEmptyTitle)
	}
	return loc.Validate()
}
