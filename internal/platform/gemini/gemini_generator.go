package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/bridgehead/bridgehead-api/internal/config"
	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/bridgehead/bridgehead-api/internal/generation"
	"github.com/bridgehead/bridgehead-api/internal/platform/logger"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries     = 2
	defaultRetryDelay     = time.Second
	defaultAttemptTimeout = 60 * time.Second
	jsonMIMEType          = "application/json"
)

// contentGenerator is the subset of the genai Models service the generator uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API.
type GeminiGenerator struct {
	logger *slog.Logger
	config config.LLMConfig
	client contentGenerator

	// sleep waits between retry attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a new instance of GeminiGenerator with the provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model names, and retry settings
//
// Returns:
//   - A properly initialized GeminiGenerator or an error wrapping
//     generation.ErrInvalidConfig if initialization fails
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return newGeneratorWithClient(logger, cfg, client.Models), nil
}

func newGeneratorWithClient(logger *slog.Logger, cfg config.LLMConfig, client contentGenerator) *GeminiGenerator {
	return &GeminiGenerator{
		logger: logger,
		config: cfg,
		client: client,
		sleep:  sleepContext,
	}
}

// Generate sends req.Prompt to the model tier selected by req.DeepDive and
// returns the answer text with any grounding citations.
func (g *GeminiGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Response, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt", generation.ErrEmptyInput)
	}

	model := g.modelFor(req)
	log := logger.FromContextOrDefault(ctx, g.logger).With(
		slog.String("task", string(req.Task)),
		slog.String("model", model),
	)

	resp, err := g.callGeminiWithRetry(logger.WithLogger(ctx, log), model, req.Prompt, g.buildConfig(req))
	if err != nil {
		return nil, err
	}

	text, sources, err := extractResponse(resp)
	if err != nil {
		log.WarnContext(ctx, "Unusable Gemini response", "error", err)
		return nil, err
	}

	log.DebugContext(ctx, "Gemini response received",
		"text_length", len(text),
		"source_count", len(sources))

	return &generation.Response{
		Text:    text,
		Sources: sources,
		Model:   model,
	}, nil
}

func (g *GeminiGenerator) modelFor(req generation.Request) string {
	if req.DeepDive {
		return g.config.DeepDiveModelName
	}
	return g.config.ModelName
}

// buildConfig translates request options into SDK generation settings.
// The API rejects a JSON MIME type combined with tools, so grounded requests
// rely on the prompt for their output format.
func (g *GeminiGenerator) buildConfig(req generation.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if req.Grounding {
		cfg.Tools = []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
			{GoogleMaps: &genai.GoogleMaps{}},
		}
		if req.Location != nil {
			lat, lng := req.Location.Latitude, req.Location.Longitude
			cfg.ToolConfig = &genai.ToolConfig{
				RetrievalConfig: &genai.RetrievalConfig{
					LatLng: &genai.LatLng{Latitude: &lat, Longitude: &lng},
				},
			}
		}
	} else if req.JSON {
		cfg.ResponseMIMEType = jsonMIMEType
	}

	return cfg
}

// callGeminiWithRetry makes a call to the Gemini API with exponential backoff retry logic.
//
// Each attempt is bounded by the configured request timeout. Transient failures
// (rate limiting, server errors, timeouts) are retried up to config.MaxRetries
// times with delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5)). Permanent
// failures are returned immediately.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation and logging
//   - model: The model name to call
//   - prompt: The prompt string to send
//   - cfg: Generation settings for the call
//
// Returns:
//   - The raw SDK response
//   - An error wrapping a generation sentinel if all attempts fail
func (g *GeminiGenerator) callGeminiWithRetry(
	ctx context.Context,
	model string,
	prompt string,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	baseDelay := time.Duration(g.config.RetryDelaySeconds) * time.Second
	if baseDelay <= 0 {
		baseDelay = defaultRetryDelay
	}
	attemptTimeout := time.Duration(g.config.RequestTimeoutSeconds) * time.Second
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}

	contents := genai.Text(prompt)

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		log.InfoContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		resp, err := g.client.GenerateContent(attemptCtx, model, contents, cfg)
		cancel()

		if err == nil {
			log.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return resp, nil
		}

		// The caller gave up; do not report that as an upstream failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		mapped, transient := classifyError(err)
		log.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"transient", transient,
			"error", mapped)

		if !transient {
			return nil, mapped
		}

		if attempt >= maxRetries {
			log.WarnContext(ctx, "Maximum retry attempts reached", "max_retries", maxRetries)
			return nil, fmt.Errorf("exceeded maximum retry attempts (%d): %w", maxRetries, mapped)
		}

		delay := g.backoff(baseDelay, attempt)
		log.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay_seconds", delay.Seconds())

		if err := g.sleep(ctx, delay); err != nil {
			log.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", err)
			return nil, err
		}
	}
}

func (g *GeminiGenerator) backoff(base time.Duration, attempt int) time.Duration {
	backoff := float64(base) * math.Pow(2, float64(attempt))
	// The package-level source is safe for concurrent retry loops.
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(backoff * jitter)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// extractResponse pulls the answer text and grounding citations out of the
// first candidate.
func extractResponse(resp *genai.GenerateContentResponse) (string, []domain.GroundingSource, error) {
	if resp == nil {
		return "", nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", nil, fmt.Errorf("%w: prompt blocked (%s)",
				generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
		}
		return "", nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", nil, fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	if candidate.Content == nil {
		return "", nil, fmt.Errorf("%w: empty content in response (finish reason: %s)",
			generation.ErrInvalidResponse, candidate.FinishReason)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text.WriteString(part.Text)
	}

	if strings.TrimSpace(text.String()) == "" {
		return "", nil, fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}

	return text.String(), groundingSources(candidate.GroundingMetadata), nil
}

// groundingSources returns the web and maps citations in order of appearance,
// skipping chunks without a URI and repeated URIs.
func groundingSources(meta *genai.GroundingMetadata) []domain.GroundingSource {
	sources := []domain.GroundingSource{}
	if meta == nil {
		return sources
	}

	seen := make(map[string]struct{})
	add := func(kind domain.SourceKind, uri, title string) {
		if uri == "" {
			return
		}
		if _, dup := seen[uri]; dup {
			return
		}
		seen[uri] = struct{}{}
		if title == "" {
			title = uri
		}
		sources = append(sources, domain.GroundingSource{Kind: kind, Title: title, URI: uri})
	}

	for _, chunk := range meta.GroundingChunks {
		if chunk == nil {
			continue
		}
		if chunk.Web != nil {
			add(domain.SourceKindWeb, chunk.Web.URI, chunk.Web.Title)
		}
		if chunk.Maps != nil {
			add(domain.SourceKindMaps, chunk.Maps.URI, chunk.Maps.Title)
		}
	}
	return sources
}
