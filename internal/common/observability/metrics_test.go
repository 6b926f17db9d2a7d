package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestObservability_RecordsDecisionsAndSteps(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	obs := newWithProvider(provider, "test")

	ctx := context.Background()
	obs.RecordDecision(ctx, "accepted")
	obs.RecordDecision(ctx, "accepted")
	obs.RecordDecision(ctx, "denied")
	obs.RecordStepDuration(ctx, "decision", 120*time.Millisecond, "ok")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	found := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		found[m.Name] = true
		if m.Name == "decisions.applied" {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			assert.Equal(t, int64(3), total)
		}
	}
	assert.True(t, found["decisions.applied"])
	assert.True(t, found["workflow.step.duration"])
}

func TestObservability_NoopIsSafe(t *testing.T) {
	obs := NewNoop()
	obs.RecordDecision(context.Background(), "accepted")
	obs.RecordStepDuration(context.Background(), "x", time.Second, "ok")
	obs.Shutdown()

	var nilObs *Observability
	nilObs.RecordDecision(context.Background(), "denied")
}
