package advisor

import (
	"context"
	"log/slog"
	"sort"

	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/bridgehead/bridgehead-api/internal/generation"
	"github.com/bridgehead/bridgehead-api/internal/platform/logger"
	"github.com/google/uuid"
)

// FindMatches implements Service.FindMatches.
func (s *advisorService) FindMatches(ctx context.Context, userID uuid.UUID, req MatchRequest) ([]domain.Match, error) {
	return tracked(s, ctx, userID, ActionMatches, func(ctx context.Context) ([]domain.Match, error) {
		demands, err := s.loadDemands(ctx, req.DemandIDs)
		if err != nil {
			return nil, NewAdvisorError("find_matches", "failed to load demands", err)
		}
		rentals, err := s.loadRentals(ctx, req.RentalIDs)
		if err != nil {
			return nil, NewAdvisorError("find_matches", "failed to load rentals", err)
		}
		return s.MatchPosts(ctx, demands, rentals)
	})
}

// MatchPosts implements Service.MatchPosts.
// With no demands or no rentals there is nothing to pair and no upstream call is made.
func (s *advisorService) MatchPosts(
	ctx context.Context,
	demands []domain.DemandPost,
	rentals []domain.RentalPost,
) ([]domain.Match, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	demands = validPosts(log, "demand", demands, func(d *domain.DemandPost) (string, error) {
		return d.ID, d.Validate()
	})
	rentals = validPosts(log, "rental", rentals, func(r *domain.RentalPost) (string, error) {
		return r.ID, r.Validate()
	})

	if len(demands) == 0 || len(rentals) == 0 {
		log.Debug("skipping matchmaking without candidates",
			slog.Int("demands", len(demands)),
			slog.Int("rentals", len(rentals)))
		return []domain.Match{}, nil
	}

	prompt, err := generation.BuildMatchPrompt(demands, rentals)
	if err != nil {
		return nil, err
	}

	resp, err := s.generator.Generate(ctx, generation.Request{
		Task:   generation.TaskMatches,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, NewAdvisorError("find_matches", "generation failed", err)
	}

	results, err := generation.ParseMatchResults(ctx, resp.Text)
	if err != nil {
		log.Warn("unusable match response", slog.String("error", err.Error()))
		return nil, NewAdvisorError("find_matches", "invalid model response", err)
	}

	matches := ResolveMatches(ctx, results, demands, rentals)
	log.Info("matchmaking completed",
		slog.Int("demands", len(demands)),
		slog.Int("rentals", len(rentals)),
		slog.Int("proposed", len(results)),
		slog.Int("resolved", len(matches)))
	return matches, nil
}

// ResolveMatches pairs each result with the demand and rental it references,
// silently dropping results whose IDs are not among the supplied posts, and
// orders the matches by confidence, highest first.
func ResolveMatches(
	ctx context.Context,
	results []domain.MatchResult,
	demands []domain.DemandPost,
	rentals []domain.RentalPost,
) []domain.Match {
	log := logger.FromContextOrDefault(ctx, slog.Default())

	demandByID := make(map[string]domain.DemandPost, len(demands))
	for _, d := range demands {
		demandByID[d.ID] = d
	}
	rentalByID := make(map[string]domain.RentalPost, len(rentals))
	for _, r := range rentals {
		rentalByID[r.ID] = r
	}

	ranked := make([]domain.MatchResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ConfidenceScore > ranked[j].ConfidenceScore
	})

	matches := make([]domain.Match, 0, len(ranked))
	for _, r := range ranked {
		demand, okDemand := demandByID[r.DemandID]
		rental, okRental := rentalByID[r.RentalID]
		if !okDemand || !okRental {
			log.Debug("dropping match with unknown reference",
				slog.String("demand_id", r.DemandID),
				slog.String("rental_id", r.RentalID))
			continue
		}
		matches = append(matches, domain.Match{
			Demand:          demand,
			Rental:          rental,
			Reasoning:       r.Reasoning,
			ConfidenceScore: r.ConfidenceScore,
		})
	}
	return matches
}

func (s *advisorService) loadDemands(ctx context.Context, ids []string) ([]domain.DemandPost, error) {
	if len(ids) == 0 {
		return s.demands.ListRecent(ctx, s.opts.MaxMatchPosts)
	}
	if len(ids) > s.opts.MaxMatchPosts {
		ids = ids[:s.opts.MaxMatchPosts]
	}
	return s.demands.GetByIDs(ctx, ids)
}

func (s *advisorService) loadRentals(ctx context.Context, ids []string) ([]domain.RentalPost, error) {
	if len(ids) == 0 {
		return s.rentals.ListRecent(ctx, s.opts.MaxMatchPosts)
	}
	if len(ids) > s.opts.MaxMatchPosts {
		ids = ids[:s.opts.MaxMatchPosts]
	}
	return s.rentals.GetByIDs(ctx, ids)
}

// validPosts returns the posts that pass check, logging each one it skips.
// The input slice is not modified.
func validPosts[T any](log *slog.Logger, kind string, posts []T, check func(*T) (string, error)) []T {
	valid := make([]T, 0, len(posts))
	for i := range posts {
		id, err := check(&posts[i])
		if err != nil {
			log.Warn("skipping invalid post",
				slog.String("kind", kind),
				slog.String("post_id", id),
				slog.String("error", err.Error()))
			continue
		}
		valid = append(valid, posts[i])
	}
	return valid
}
