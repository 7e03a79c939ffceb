package metrics_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bridgehead/bridgehead-api/internal/generation"
	"github.com/bridgehead/bridgehead-api/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	err error
}

func (s stubGenerator) Generate(_ context.Context, _ generation.Request) (*generation.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &generation.Response{Text: "ok"}, nil
}

func TestInstrumentGenerator(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.NewAIMetrics(reg)

	ok := metrics.InstrumentGenerator(stubGenerator{}, m)
	failing := metrics.InstrumentGenerator(stubGenerator{err: fmt.Errorf("wrapped: %w", generation.ErrTransientFailure)}, m)

	ctx := context.Background()
	resp, err := ok.Generate(ctx, generation.Request{Task: generation.TaskGeocode})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	_, _ = ok.Generate(ctx, generation.Request{Task: generation.TaskGeocode})

	_, err = failing.Generate(ctx, generation.Request{Task: generation.TaskMatches})
	assert.ErrorIs(t, err, generation.ErrTransientFailure)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("geocode", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("matches", metrics.OutcomeTransient)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.OutcomeSuccess},
		{context.Canceled, metrics.OutcomeCanceled},
		{generation.ErrContentBlocked, metrics.OutcomeBlocked},
		{fmt.Errorf("x: %w", generation.ErrInvalidResponse), metrics.OutcomeInvalidResponse},
		{generation.ErrInvalidConfig, metrics.OutcomeInvalidConfig},
		{generation.ErrTransientFailure, metrics.OutcomeTransient},
		{generation.ErrGenerationFailed, metrics.OutcomeFailed},
		{errors.New("other"), metrics.OutcomeFailed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, metrics.Outcome(tt.err), "error: %v", tt.err)
	}
}
