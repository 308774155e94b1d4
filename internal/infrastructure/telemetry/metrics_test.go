package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/campus/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"), "a no-op meter is returned when disabled")
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewMeterProvider_Enabled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping exporter test in short mode")
	}

	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    time.Hour,
		ServiceName:       "test-service",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	counter, err := telemetry.NewCounter(mp.Meter("test"), "test_total", "test counter", "{n}")
	require.NoError(t, err)
	counter.Inc(ctx)

	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = mp.Shutdown(shutdownCtx)
}

func TestCounterAndHistogram(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()
	meter := provider.Meter("test")

	counter, err := telemetry.NewCounter(meter, "jobs_total", "jobs", "{jobs}")
	require.NoError(t, err)
	counter.Inc(ctx, attribute.String("kind", "a"))
	counter.Add(ctx, 4, attribute.String("kind", "a"))

	hist, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:       "job_seconds",
		Unit:       "s",
		Boundaries: telemetry.ProvisionDurationBuckets,
	})
	require.NoError(t, err)
	hist.RecordDuration(ctx, 300*time.Millisecond)
	hist.Record(ctx, 0.2)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	for _, m := range rm.ScopeMetrics[0].Metrics {
		switch m.Name {
		case "jobs_total":
			points := m.Data.(metricdata.Sum[int64]).DataPoints
			require.Len(t, points, 1)
			assert.EqualValues(t, 5, points[0].Value)
		case "job_seconds":
			points := m.Data.(metricdata.Histogram[float64]).DataPoints
			require.Len(t, points, 1)
			assert.EqualValues(t, 2, points[0].Count)
			assert.InDelta(t, 0.5, points[0].Sum, 1e-9)
			assert.Equal(t, telemetry.ProvisionDurationBuckets, points[0].Bounds)
		default:
			t.Errorf("unexpected metric %s", m.Name)
		}
	}
}
