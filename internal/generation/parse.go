package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/bridgehead/bridgehead-api/internal/platform/logger"
	"github.com/xeipuuv/gojsonschema"
)

const geocodeSchema = `{
	"type": "object",
	"required": ["latitude", "longitude"],
	"properties": {
		"latitude":  {"type": "number", "minimum": -90,  "maximum": 90},
		"longitude": {"type": "number", "minimum": -180, "maximum": 180}
	}
}`

const matchResultsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["demandId", "rentalId", "reasoning", "confidenceScore"],
		"properties": {
			"demandId":        {"type": "string", "minLength": 1},
			"rentalId":        {"type": "string", "minLength": 1},
			"reasoning":       {"type": "string"},
			"confidenceScore": {"type": "number"}
		}
	}
}`

var (
	geocodeValidator      = mustSchema(geocodeSchema)
	matchResultsValidator = mustSchema(matchResultsSchema)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return schema
}

// StripCodeFence removes a surrounding Markdown code fence (``` or ```json)
// from text. Text without a fence is returned trimmed, so applying it twice
// gives the same result as applying it once.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string ("json", "JSON", ...) on the opening line.
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "json"), "JSON")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseGeocodeResult validates a geocode answer and returns its coordinates.
// Both keys must be present, numeric and within range.
func ParseGeocodeResult(text string) (domain.Coordinates, error) {
	body := StripCodeFence(text)
	if err := validateDocument(geocodeValidator, body); err != nil {
		return domain.Coordinates{}, err
	}

	var coords domain.Coordinates
	if err := json.Unmarshal([]byte(body), &coords); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return coords, nil
}

// ParseMatchResults validates a match answer. Every element must carry the
// four MatchResult fields with the right types. Confidence scores outside
// [0, 1] are clamped and logged.
func ParseMatchResults(ctx context.Context, text string) ([]domain.MatchResult, error) {
	body := StripCodeFence(text)
	if err := validateDocument(matchResultsValidator, body); err != nil {
		return nil, err
	}

	var results []domain.MatchResult
	if err := json.Unmarshal([]byte(body), &results); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if results == nil {
		results = []domain.MatchResult{}
	}

	log := logger.FromContextOrDefault(ctx, slog.Default())
	for i := range results {
		score := results[i].ConfidenceScore
		clamped := clampScore(score)
		if clamped != score {
			log.Warn("clamped out-of-range confidence score",
				slog.String("demand_id", results[i].DemandID),
				slog.String("rental_id", results[i].RentalID),
				slog.Float64("score", score),
				slog.Float64("clamped", clamped))
			results[i].ConfidenceScore = clamped
		}
	}
	return results, nil
}

// ParseAddressText turns a reverse-geocode answer into a single line.
func ParseAddressText(text string) (string, error) {
	address := strings.Join(strings.Fields(StripCodeFence(text)), " ")
	if address == "" {
		return "", fmt.Errorf("%w: empty address", ErrInvalidResponse)
	}
	return address, nil
}

// ParseIdeaMarkdown checks that an idea answer has content and returns it trimmed.
func ParseIdeaMarkdown(text string) (string, error) {
	markdown := strings.TrimSpace(text)
	if markdown == "" {
		return "", fmt.Errorf("%w: empty idea report", ErrInvalidResponse)
	}
	return markdown, nil
}

func clampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

func validateDocument(schema *gojsonschema.Schema, body string) error {
	if body == "" {
		return fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		// The document is not JSON at all.
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(errs, "; "))
	}
	return nil
}
