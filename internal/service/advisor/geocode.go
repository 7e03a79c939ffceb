package advisor

import (
	"context"
	"log/slog"

	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/bridgehead/bridgehead-api/internal/generation"
	"github.com/bridgehead/bridgehead-api/internal/platform/logger"
	"github.com/bridgehead/bridgehead-api/internal/redact"
	"github.com/google/uuid"
)

// Geocode implements Service.Geocode.
// Cached answers skip the upstream call; cache failures are logged and ignored.
func (s *advisorService) Geocode(ctx context.Context, userID uuid.UUID, address string) (domain.Coordinates, error) {
	return tracked(s, ctx, userID, ActionGeocode, func(ctx context.Context) (domain.Coordinates, error) {
		log := logger.FromContextOrDefault(ctx, s.logger)

		prompt, err := generation.BuildGeocodePrompt(address)
		if err != nil {
			return domain.Coordinates{}, err
		}

		if s.cache != nil {
			coords, ok, err := s.cache.Get(ctx, address)
			switch {
			case err != nil:
				log.Warn("geocode cache lookup failed", slog.String("error", redact.Error(err)))
			case ok:
				log.Debug("geocode cache hit")
				return coords, nil
			}
		}

		resp, err := s.generator.Generate(ctx, generation.Request{
			Task:   generation.TaskGeocode,
			Prompt: prompt,
			JSON:   true,
		})
		if err != nil {
			return domain.Coordinates{}, NewAdvisorError("geocode", "generation failed", err)
		}

		coords, err := generation.ParseGeocodeResult(resp.Text)
		if err != nil {
			log.Warn("unusable geocode response", slog.String("error", err.Error()))
			return domain.Coordinates{}, NewAdvisorError("geocode", "invalid model response", err)
		}

		if s.cache != nil {
			if err := s.cache.Set(ctx, address, coords); err != nil {
				log.Warn("geocode cache write failed", slog.String("error", redact.Error(err)))
			}
		}

		return coords, nil
	})
}

// ReverseGeocode implements Service.ReverseGeocode.
func (s *advisorService) ReverseGeocode(
	ctx context.Context,
	userID uuid.UUID,
	coords domain.Coordinates,
) (domain.Location, error) {
	return tracked(s, ctx, userID, ActionReverseGeocode, func(ctx context.Context) (domain.Location, error) {
		prompt, err := generation.BuildReverseGeocodePrompt(coords)
		if err != nil {
			return domain.Location{}, err
		}

		resp, err := s.generator.Generate(ctx, generation.Request{
			Task:   generation.TaskReverseGeocode,
			Prompt: prompt,
		})
		if err != nil {
			return domain.Location{}, NewAdvisorError("reverse_geocode", "generation failed", err)
		}

		address, err := generation.ParseAddressText(resp.Text)
		if err != nil {
			return domain.Location{}, NewAdvisorError("reverse_geocode", "invalid model response", err)
		}

		return domain.Location{Coordinates: coords, Address: address}, nil
	})
}
