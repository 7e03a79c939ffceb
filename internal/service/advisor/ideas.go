package advisor

import (
	"context"
	"log/slog"

	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/bridgehead/bridgehead-api/internal/generation"
	"github.com/bridgehead/bridgehead-api/internal/platform/logger"
	"github.com/google/uuid"
)

// GenerateIdeas implements Service.GenerateIdeas.
// An area without demands still gets a report; the prompt says so.
func (s *advisorService) GenerateIdeas(
	ctx context.Context,
	userID uuid.UUID,
	req IdeaRequest,
) (*domain.IdeaReport, error) {
	return tracked(s, ctx, userID, ActionIdeas, func(ctx context.Context) (*domain.IdeaReport, error) {
		log := logger.FromContextOrDefault(ctx, s.logger)

		if err := req.Location.Validate(); err != nil {
			return nil, err
		}

		nearby, err := s.demands.ListNear(ctx, req.Location, req.RadiusKm, ideaCandidateLimit)
		if err != nil {
			return nil, NewAdvisorError("generate_ideas", "failed to load nearby demands", err)
		}
		summarized := generation.SummarizeDemands(nearby, s.opts.MaxIdeaDemands)

		prompt, err := generation.BuildIdeaPrompt(req.Location, summarized, req.DeepDive, s.opts.MaxIdeaDemands)
		if err != nil {
			return nil, err
		}

		location := req.Location
		resp, err := s.generator.Generate(ctx, generation.Request{
			Task:      generation.TaskIdeas,
			Prompt:    prompt,
			DeepDive:  req.DeepDive,
			Grounding: true,
			Location:  &location,
		})
		if err != nil {
			return nil, NewAdvisorError("generate_ideas", "generation failed", err)
		}

		markdown, err := generation.ParseIdeaMarkdown(resp.Text)
		if err != nil {
			return nil, NewAdvisorError("generate_ideas", "invalid model response", err)
		}

		sources := resp.Sources
		if sources == nil {
			sources = []domain.GroundingSource{}
		}

		log.Info("generated idea report",
			slog.Int("nearby_demands", len(nearby)),
			slog.Int("summarized_demands", len(summarized)),
			slog.Int("sources", len(sources)),
			slog.Bool("deep_dive", req.DeepDive))

		return &domain.IdeaReport{
			Markdown:    markdown,
			Sources:     sources,
			DeepDive:    req.DeepDive,
			DemandCount: len(summarized),
		}, nil
	})
}
