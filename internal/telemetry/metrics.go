package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// CountryMetricsMeterName is the name used for the country store meter
	CountryMetricsMeterName = "github.com/stacklok/country-cache-server/countries"

	// RefreshMetricsMeterName is the name used for the refresh pipeline meter
	RefreshMetricsMeterName = "github.com/stacklok/country-cache-server/refresh"
)

// CountryMetrics holds the OpenTelemetry instruments for the cached country set
type CountryMetrics struct {
	countriesTotal metric.Int64Gauge
}

// NewCountryMetrics creates a new CountryMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewCountryMetrics(provider metric.MeterProvider) (*CountryMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(CountryMetricsMeterName)

	countriesTotal, err := meter.Int64Gauge(
		"country_cache_countries_total",
		metric.WithDescription("Number of cached countries after the last successful refresh"),
		metric.WithUnit("{country}"),
	)
	if err != nil {
		return nil, err
	}

	return &CountryMetrics{
		countriesTotal: countriesTotal,
	}, nil
}

// RecordCountriesTotal records the current number of cached countries
func (m *CountryMetrics) RecordCountriesTotal(ctx context.Context, count int64) {
	if m == nil || m.countriesTotal == nil {
		return
	}
	m.countriesTotal.Record(ctx, count)
}

// RefreshMetrics holds the OpenTelemetry instruments for refresh runs
type RefreshMetrics struct {
	meter           metric.Meter
	duration        metric.Float64Histogram
	runs            metric.Int64Counter
	summaryFailures metric.Int64Counter
	queueDepth      metric.Int64ObservableGauge
}

// NewRefreshMetrics creates a new RefreshMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewRefreshMetrics(provider metric.MeterProvider) (*RefreshMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(RefreshMetricsMeterName)

	duration, err := meter.Float64Histogram(
		"country_cache_refresh_duration_seconds",
		metric.WithDescription("Duration of refresh runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter(
		"country_cache_refresh_runs_total",
		metric.WithDescription("Number of finished refresh runs by terminal phase"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	summaryFailures, err := meter.Int64Counter(
		"country_cache_summary_render_failures_total",
		metric.WithDescription("Number of summary image renders that failed"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64ObservableGauge(
		"country_cache_refresh_queue_depth",
		metric.WithDescription("Number of refresh jobs waiting for a worker"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	return &RefreshMetrics{
		meter:           meter,
		duration:        duration,
		runs:            runs,
		summaryFailures: summaryFailures,
		queueDepth:      queueDepth,
	}, nil
}

// RecordRefreshDuration records how long a run took
func (m *RefreshMetrics) RecordRefreshDuration(ctx context.Context, duration time.Duration, success bool) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordRun counts a run that reached a terminal phase
func (m *RefreshMetrics) RecordRun(ctx context.Context, phase string) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", phase)))
}

// RecordSummaryFailure counts a failed summary render
func (m *RefreshMetrics) RecordSummaryFailure(ctx context.Context) {
	if m == nil || m.summaryFailures == nil {
		return
	}
	m.summaryFailures.Add(ctx, 1)
}

// ObserveQueueDepth registers a callback reporting the number of queued jobs.
// The returned function unregisters the callback.
func (m *RefreshMetrics) ObserveQueueDepth(depth func() int) (func() error, error) {
	if m == nil || m.queueDepth == nil {
		return func() error { return nil }, nil
	}

	reg, err := m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(m.queueDepth, int64(depth()))
		return nil
	}, m.queueDepth)
	if err != nil {
		return nil, err
	}
	return reg.Unregister, nil
}
