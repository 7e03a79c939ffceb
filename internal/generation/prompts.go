package generation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/bridgehead/bridgehead-api/internal/domain"
)

// DefaultMaxIdeaDemands is the number of demands summarized into an idea prompt
// when the caller does not configure one.
const DefaultMaxIdeaDemands = 10

//go:embed prompts/*.tmpl
var promptFS embed.FS

var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

type geocodePromptData struct {
	Address string
}

type ideaPromptData struct {
	Latitude  float64
	Longitude float64
	Demands   []domain.DemandPost
	DeepDive  bool
}

type matchPromptData struct {
	DemandsJSON string
	RentalsJSON string
}

// demandProjection is the reduced demand shape sent to the matchmaker.
type demandProjection struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// rentalProjection is the reduced rental shape sent to the matchmaker.
type rentalProjection struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Price       float64 `json:"price"`
	SquareFeet  int     `json:"squareFeet"`
}

// BuildGeocodePrompt asks the model to convert address into a bare
// {"latitude","longitude"} JSON object.
func BuildGeocodePrompt(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: address", ErrEmptyInput)
	}
	return render("geocode.tmpl", geocodePromptData{Address: address})
}

// BuildReverseGeocodePrompt asks the model for a one-line place name for coords.
func BuildReverseGeocodePrompt(coords domain.Coordinates) (string, error) {
	if err := coords.Validate(); err != nil {
		return "", err
	}
	return render("reverse_geocode.tmpl", coords)
}

// BuildIdeaPrompt asks for 3-5 Markdown business ideas around coords, informed
// by at most maxDemands of the supplied demands (see SummarizeDemands).
func BuildIdeaPrompt(
	coords domain.Coordinates,
	demands []domain.DemandPost,
	deepDive bool,
	maxDemands int,
) (string, error) {
	if err := coords.Validate(); err != nil {
		return "", err
	}
	return render("ideas.tmpl", ideaPromptData{
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		Demands:   SummarizeDemands(demands, maxDemands),
		DeepDive:  deepDive,
	})
}

// SummarizeDemands returns the demands that make it into an idea prompt: the
// most upvoted first, ties kept in input order, truncated to max entries.
// A non-positive max falls back to DefaultMaxIdeaDemands. The input is not modified.
func SummarizeDemands(demands []domain.DemandPost, max int) []domain.DemandPost {
	if max <= 0 {
		max = DefaultMaxIdeaDemands
	}
	ranked := make([]domain.DemandPost, len(demands))
	copy(ranked, demands)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Upvotes > ranked[j].Upvotes
	})
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

// BuildMatchPrompt embeds reduced projections of demands and rentals as JSON and
// asks for a JSON array of MatchResult objects.
func BuildMatchPrompt(demands []domain.DemandPost, rentals []domain.RentalPost) (string, error) {
	if len(demands) == 0 || len(rentals) == 0 {
		return "", fmt.Errorf("%w: matching needs at least one demand and one rental", ErrEmptyInput)
	}

	dp := make([]demandProjection, 0, len(demands))
	for _, d := range demands {
		dp = append(dp, demandProjection{
			ID:          d.ID,
			Title:       d.Title,
			Category:    d.Category,
			Description: d.Description,
			Location:    d.Location.Coordinates.String(),
		})
	}

	rp := make([]rentalProjection, 0, len(rentals))
	for _, r := range rentals {
		rp = append(rp, rentalProjection{
			ID:          r.ID,
			Title:       r.Title,
			Category:    r.Category,
			Description: r.Description,
			Location:    r.Location.Coordinates.String(),
			Price:       r.Price,
			SquareFeet:  r.SquareFeet,
		})
	}

	demandsJSON, err := compactJSON(dp)
	if err != nil {
		return "", fmt.Errorf("failed to encode demands: %w", err)
	}
	rentalsJSON, err := compactJSON(rp)
	if err != nil {
		return "", fmt.Errorf("failed to encode rentals: %w", err)
	}

	return render("matches.tmpl", matchPromptData{
		DemandsJSON: demandsJSON,
		RentalsJSON: rentalsJSON,
	})
}

func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}
	return buf.String(), nil
}
