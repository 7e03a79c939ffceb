// Package metrics exposes Prometheus instrumentation for the AI pipeline.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/bridgehead/bridgehead-api/internal/generation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for bridgehead_ai_requests_total.
const (
	OutcomeSuccess         = "success"
	OutcomeTransient       = "transient_failure"
	OutcomeFailed          = "failed"
	OutcomeBlocked         = "blocked"
	OutcomeInvalidResponse = "invalid_response"
	OutcomeInvalidConfig   = "invalid_config"
	OutcomeCanceled        = "canceled"
)

// AIMetrics holds the collectors for upstream generation calls.
type AIMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewAIMetrics registers the AI collectors with reg.
func NewAIMetrics(reg prometheus.Registerer) *AIMetrics {
	factory := promauto.With(reg)
	return &AIMetrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridgehead_ai_requests_total",
				Help: "Total number of language model generations by task and outcome",
			},
			[]string{"task", "outcome"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridgehead_ai_request_duration_seconds",
				Help:    "Duration of language model generations in seconds, retries included",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"task"},
		),
	}
}

type instrumentedGenerator struct {
	next    generation.Generator
	metrics *AIMetrics
	now     func() time.Time
}

// InstrumentGenerator wraps next so every call is counted and timed.
func InstrumentGenerator(next generation.Generator, m *AIMetrics) generation.Generator {
	return &instrumentedGenerator{next: next, metrics: m, now: time.Now}
}

func (g *instrumentedGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Response, error) {
	start := g.now()
	resp, err := g.next.Generate(ctx, req)

	task := string(req.Task)
	g.metrics.Duration.WithLabelValues(task).Observe(g.now().Sub(start).Seconds())
	g.metrics.Requests.WithLabelValues(task, Outcome(err)).Inc()

	return resp, err
}

// Outcome returns the outcome label for a generation error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.Is(err, generation.ErrContentBlocked):
		return OutcomeBlocked
	case errors.Is(err, generation.ErrInvalidResponse):
		return OutcomeInvalidResponse
	case errors.Is(err, generation.ErrInvalidConfig):
		return OutcomeInvalidConfig
	case errors.Is(err, generation.ErrTransientFailure):
		return OutcomeTransient
	default:
		return OutcomeFailed
	}
}
