package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader, scopeName string) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != scopeName {
			continue
		}
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func newManualProvider(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

func TestNewCountryMetrics(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewCountryMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("records countries total", func(t *testing.T) {
		t.Parallel()

		reader, mp := newManualProvider(t)
		metrics, err := NewCountryMetrics(mp)
		require.NoError(t, err)
		require.NotNil(t, metrics)

		metrics.RecordCountriesTotal(context.Background(), 250)

		got := collect(t, reader, CountryMetricsMeterName)
		m, ok := got["country_cache_countries_total"]
		require.True(t, ok)
		gauge, ok := m.Data.(metricdata.Gauge[int64])
		require.True(t, ok)
		require.Len(t, gauge.DataPoints, 1)
		assert.Equal(t, int64(250), gauge.DataPoints[0].Value)
	})

	t.Run("no-op when metrics is nil", func(t *testing.T) {
		t.Parallel()

		var metrics *CountryMetrics
		metrics.RecordCountriesTotal(context.Background(), 1)
	})
}

func TestRefreshMetrics_NilSafety(t *testing.T) {
	t.Parallel()

	metrics, err := NewRefreshMetrics(nil)
	require.NoError(t, err)
	require.Nil(t, metrics)

	ctx := context.Background()
	metrics.RecordRefreshDuration(ctx, time.Second, true)
	metrics.RecordRun(ctx, "success")
	metrics.RecordSummaryFailure(ctx)

	unregister, err := metrics.ObserveQueueDepth(func() int { return 1 })
	require.NoError(t, err)
	require.NoError(t, unregister())
}

func TestRefreshMetrics_Record(t *testing.T) {
	t.Parallel()

	reader, mp := newManualProvider(t)
	metrics, err := NewRefreshMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRefreshDuration(ctx, 1500*time.Millisecond, true)
	metrics.RecordRun(ctx, "success")
	metrics.RecordRun(ctx, "failed")
	metrics.RecordRun(ctx, "failed")
	metrics.RecordSummaryFailure(ctx)

	got := collect(t, reader, RefreshMetricsMeterName)

	hist, ok := got["country_cache_refresh_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.InDelta(t, 1.5, hist.DataPoints[0].Sum, 0.001)

	runs, ok := got["country_cache_refresh_runs_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	byPhase := map[string]int64{}
	for _, dp := range runs.DataPoints {
		phase, _ := dp.Attributes.Value("phase")
		byPhase[phase.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"success": 1, "failed": 2}, byPhase)

	failures, ok := got["country_cache_summary_render_failures_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, failures.DataPoints, 1)
	assert.Equal(t, int64(1), failures.DataPoints[0].Value)
}

func TestRefreshMetrics_ObserveQueueDepth(t *testing.T) {
	t.Parallel()

	reader, mp := newManualProvider(t)
	metrics, err := NewRefreshMetrics(mp)
	require.NoError(t, err)

	depth := 3
	unregister, err := metrics.ObserveQueueDepth(func() int { return depth })
	require.NoError(t, err)

	got := collect(t, reader, RefreshMetricsMeterName)
	gauge, ok := got["country_cache_refresh_queue_depth"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)

	require.NoError(t, unregister())
	got = collect(t, reader, RefreshMetricsMeterName)
	if m, ok := got["country_cache_refresh_queue_depth"]; ok {
		gauge, _ := m.Data.(metricdata.Gauge[int64])
		assert.Empty(t, gauge.DataPoints, "unregistered callback should not report")
	}
}
