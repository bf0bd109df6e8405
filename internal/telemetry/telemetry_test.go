package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNew_Disabled(t *testing.T) {
	t.Parallel()

	for _, cfg := range []*Config{nil, {}, {Enabled: true}} {
		tel, err := New(context.Background(), cfg)
		require.NoError(t, err)

		assert.IsType(t, tracenoop.TracerProvider{}, tel.TracerProvider())
		assert.IsType(t, metricnoop.MeterProvider{}, tel.MeterProvider())
		assert.NotNil(t, tel.Tracer("test"))
		assert.Nil(t, tel.MetricsHandler())
		require.NoError(t, tel.Shutdown(context.Background()))
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &Config{
		Enabled: true,
		Tracing: &TracingConfig{Enabled: true, Sampling: 2},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid telemetry configuration")
}

func TestNewMeterProvider_PrometheusRequiresRegisterer(t *testing.T) {
	t.Parallel()

	cfg := &Config{Enabled: true, Metrics: &MetricsConfig{Enabled: true, Exporter: MetricsExporterPrometheus}}
	_, err := NewMeterProvider(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registerer is required")
}

func TestNewMeterProvider_Prometheus(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	cfg := &Config{Enabled: true, Metrics: &MetricsConfig{Enabled: true, Exporter: MetricsExporterPrometheus}}

	mp, err := NewMeterProvider(context.Background(), cfg, reg)
	require.NoError(t, err)
	sdk, ok := mp.(*sdkmetric.MeterProvider)
	require.True(t, ok)
	t.Cleanup(func() { _ = sdk.Shutdown(context.Background()) })

	metrics, err := NewCountryMetrics(mp)
	require.NoError(t, err)
	metrics.RecordCountriesTotal(context.Background(), 42)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "country_cache_countries") {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, 42.0, f.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found, "gauge should be exposed through the prometheus registry")
}

func TestTelemetry_MetricsHandler(t *testing.T) {
	// Not parallel: New installs the global meter provider.
	tel, err := New(context.Background(), &Config{
		Enabled: true,
		Metrics: &MetricsConfig{Enabled: true, Exporter: MetricsExporterPrometheus},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	handler := tel.MetricsHandler()
	require.NotNil(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
	assert.Contains(t, string(body), "target_info")

	// Shutdown twice is harmless
	require.NoError(t, tel.Shutdown(context.Background()))
}
