package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/country-cache-server/internal/otel"
	"github.com/stacklok/country-cache-server/internal/sources"
	"github.com/stacklok/country-cache-server/internal/status"
	"github.com/stacklok/country-cache-server/internal/sync/writer"
	"github.com/stacklok/country-cache-server/internal/telemetry"
)

// DefaultBatchSize is the number of fetched countries reconciled and written per chunk
const DefaultBatchSize = 100

// ManagerTracerName is the name used for the refresh manager tracer
const ManagerTracerName = "github.com/stacklok/country-cache-server/sync"

// ErrorKind classifies why a refresh run failed
type ErrorKind string

const (
	// KindUpstreamUnavailable means a fetcher failed and no fallback applied
	KindUpstreamUnavailable ErrorKind = "UpstreamUnavailable"

	// KindPersistence means a batch write or a status write failed
	KindPersistence ErrorKind = "PersistenceError"

	// KindRender means the summary artifact could not be produced; it never fails a run
	KindRender ErrorKind = "RenderError"

	// KindCancelled means the run context was cancelled or timed out
	KindCancelled ErrorKind = "Cancelled"
)

// Result contains the result of a successful refresh run
type Result struct {
	TotalCountries int
	Inserted       int
	Updated        int
	Skipped        int
	RatesSource    status.RatesSource
	RefreshedAt    time.Time
}

// Error represents a structured refresh failure
type Error struct {
	Err     error
	Message string
	Stage   status.Phase
	Kind    ErrorKind
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/stacklok/country-cache-server/internal/sync Manager,ProgressReporter,SummaryPublisher

// Manager runs refresh jobs
type Manager interface {
	// PerformRefresh executes one run end to end. Progress, including the
	// final success phase, is written through reporter before the summary is
	// published. On failure the run is left in its last reported phase and the
	// caller is responsible for recording the failure.
	PerformRefresh(ctx context.Context, run *status.RefreshStatus, reporter ProgressReporter) (*Result, *Error)
}

// ProgressReporter persists a run record between stages
type ProgressReporter interface {
	ReportProgress(ctx context.Context, run *status.RefreshStatus) error
}

// ProgressFunc adapts a function to ProgressReporter
type ProgressFunc func(ctx context.Context, run *status.RefreshStatus) error

// ReportProgress calls f
func (f ProgressFunc) ReportProgress(ctx context.Context, run *status.RefreshStatus) error {
	return f(ctx, run)
}

// SummaryPublisher produces the post-refresh summary artifact
type SummaryPublisher interface {
	Publish(ctx context.Context, refreshedAt time.Time) error
}

// defaultRefreshManager is the default implementation of Manager
type defaultRefreshManager struct {
	countries sources.CountriesFetcher
	rates     sources.RatesFetcher
	writer    writer.CountryWriter
	estimator GDPEstimator
	summary   SummaryPublisher
	batchSize int
	tracer    trace.Tracer
	metrics   *telemetry.RefreshMetrics
}

// Option configures the refresh manager
type Option func(*defaultRefreshManager)

// WithBatchSize sets the reconciliation chunk size
func WithBatchSize(size int) Option {
	return func(m *defaultRefreshManager) {
		if size > 0 {
			m.batchSize = size
		}
	}
}

// WithEstimator sets the GDP multiplier source
func WithEstimator(estimator GDPEstimator) Option {
	return func(m *defaultRefreshManager) {
		m.estimator = estimator
	}
}

// WithSummaryPublisher sets the summary artifact publisher
func WithSummaryPublisher(publisher SummaryPublisher) Option {
	return func(m *defaultRefreshManager) {
		m.summary = publisher
	}
}

// WithTracer sets the tracer for refresh stages
func WithTracer(tracer trace.Tracer) Option {
	return func(m *defaultRefreshManager) {
		m.tracer = tracer
	}
}

// WithRefreshMetrics sets the metrics recorder
func WithRefreshMetrics(metrics *telemetry.RefreshMetrics) Option {
	return func(m *defaultRefreshManager) {
		m.metrics = metrics
	}
}

// NewDefaultRefreshManager creates a new refresh manager
func NewDefaultRefreshManager(
	countries sources.CountriesFetcher,
	rates sources.RatesFetcher,
	w writer.CountryWriter,
	opts ...Option,
) Manager {
	m := &defaultRefreshManager{
		countries: countries,
		rates:     rates,
		writer:    w,
		batchSize: DefaultBatchSize,
		estimator: NewRandomEstimator(1000, 2000, nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PerformRefresh executes fetch, reconcile, persist, and summary for one run
func (m *defaultRefreshManager) PerformRefresh(
	ctx context.Context,
	run *status.RefreshStatus,
	reporter ProgressReporter,
) (*Result, *Error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "refresh.run",
		trace.WithAttributes(otel.AttrRunID.String(run.ID.String())))
	defer span.End()

	refreshedAt := run.StartedAt
	if refreshedAt.IsZero() {
		refreshedAt = time.Now().UTC()
	}
	run.LastRefreshedAt = refreshedAt

	countries, err := m.fetchCountries(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, stageError(run.Phase, err, "Failed to fetch countries")
	}

	run.TotalCountries = len(countries)
	if rerr := m.advance(ctx, reporter, run, status.PhaseFetchedCountries); rerr != nil {
		return nil, rerr
	}

	rates, err := m.fetchRates(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, stageError(run.Phase, err, "Failed to fetch exchange rates")
	}

	run.RatesSource = rates.Source
	if rerr := m.advance(ctx, reporter, run, status.PhaseFetchedRates); rerr != nil {
		return nil, rerr
	}

	if rerr := m.advance(ctx, reporter, run, status.PhaseProcessing); rerr != nil {
		return nil, rerr
	}

	result, rerr := m.process(ctx, countries, rates, refreshedAt)
	if rerr != nil {
		otel.RecordError(span, rerr)
		return nil, rerr
	}
	result.RatesSource = rates.Source

	run.TotalCountries = result.TotalCountries
	run.Inserted = result.Inserted
	run.Updated = result.Updated
	run.Skipped = result.Skipped
	run.Finish(status.PhaseSuccess, "Refresh completed successfully", time.Now().UTC())
	if err := reporter.ReportProgress(ctx, run); err != nil {
		run.Phase = status.PhaseProcessing
		run.Message = ""
		run.FinishedAt = nil
		return nil, &Error{
			Err:     err,
			Message: fmt.Sprintf("Failed to record refresh success: %v", err),
			Stage:   status.PhaseSuccess,
			Kind:    KindPersistence,
		}
	}

	slog.Info("Refresh completed",
		"run_id", run.ID,
		"total_countries", result.TotalCountries,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"rates_source", result.RatesSource)

	m.publishSummary(ctx, refreshedAt)

	return result, nil
}

func (m *defaultRefreshManager) fetchCountries(ctx context.Context) ([]sources.CountryPayload, error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "refresh.fetch_countries")
	defer span.End()

	countries, err := m.countries.FetchCountries(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(countries)))
	return countries, nil
}

func (m *defaultRefreshManager) fetchRates(ctx context.Context) (*sources.RateTable, error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "refresh.fetch_rates")
	defer span.End()

	rates, err := m.rates.FetchRates(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		otel.AttrRatesSource.String(string(rates.Source)),
		otel.AttrResultCount.Int(len(rates.Rates)),
	)
	return rates, nil
}

// process reconciles and persists every chunk. Chunks committed before a failure stay written.
func (m *defaultRefreshManager) process(
	ctx context.Context,
	countries []sources.CountryPayload,
	rates *sources.RateTable,
	refreshedAt time.Time,
) (*Result, *Error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "refresh.process",
		trace.WithAttributes(otel.AttrChunkSize.Int(m.batchSize)))
	defer span.End()

	existing, err := m.writer.LoadExisting(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, persistenceError(err, "Failed to load existing countries")
	}

	result := &Result{RefreshedAt: refreshedAt}
	for i, chunk := range chunks(countries, m.batchSize) {
		if err := ctx.Err(); err != nil {
			return nil, &Error{
				Err:     err,
				Message: fmt.Sprintf("Refresh cancelled before chunk %d: %v", i, err),
				Stage:   status.PhaseProcessing,
				Kind:    KindCancelled,
			}
		}

		res := reconcileChunk(chunk, rates, existing, refreshedAt, m.estimator)
		result.Skipped += res.skipped

		if len(res.toInsert) > 0 {
			if err := m.writer.InsertMany(ctx, res.toInsert); err != nil {
				otel.RecordError(span, err)
				return nil, persistenceError(err, fmt.Sprintf("Failed to insert chunk %d", i))
			}
			for _, c := range res.toInsert {
				existing[c.Key()] = c
			}
			result.Inserted += len(res.toInsert)
		}

		if len(res.toUpdate) > 0 {
			if err := m.writer.UpdateMany(ctx, res.toUpdate, writer.RefreshFields); err != nil {
				otel.RecordError(span, err)
				return nil, persistenceError(err, fmt.Sprintf("Failed to update chunk %d", i))
			}
			result.Updated += len(res.toUpdate)
		}

		slog.Debug("Reconciled chunk",
			"chunk", i,
			"inserted", len(res.toInsert),
			"updated", len(res.toUpdate),
			"skipped", res.skipped)
	}

	result.TotalCountries = len(existing)
	return result, nil
}

// advance moves the run to the next phase and persists it before work continues
func (*defaultRefreshManager) advance(
	ctx context.Context,
	reporter ProgressReporter,
	run *status.RefreshStatus,
	next status.Phase,
) *Error {
	from := run.Phase
	run.Phase = next
	if err := reporter.ReportProgress(ctx, run); err != nil {
		run.Phase = from
		return &Error{
			Err:     err,
			Message: fmt.Sprintf("Failed to record phase %s: %v", next, err),
			Stage:   from,
			Kind:    KindPersistence,
		}
	}
	otel.MarkStage(ctx, string(next))
	slog.Debug("Refresh phase changed", "run_id", run.ID, "phase", next)
	return nil
}

func (m *defaultRefreshManager) publishSummary(ctx context.Context, refreshedAt time.Time) {
	if m.summary == nil {
		return
	}

	ctx, span := otel.StartSpan(ctx, m.tracer, "refresh.summary")
	defer span.End()

	if err := m.summary.Publish(ctx, refreshedAt); err != nil {
		otel.RecordError(span, err)
		m.metrics.RecordSummaryFailure(ctx)
		slog.Error("Failed to generate summary image", "error", err)
	}
}

func stageError(stage status.Phase, err error, message string) *Error {
	kind := KindPersistence
	switch {
	case errors.Is(err, sources.ErrUpstreamUnavailable):
		kind = KindUpstreamUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = KindCancelled
	}
	return &Error{
		Err:     err,
		Message: fmt.Sprintf("%s: %v", message, err),
		Stage:   stage,
		Kind:    kind,
	}
}

func persistenceError(err error, message string) *Error {
	kind := KindPersistence
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindCancelled
	}
	return &Error{
		Err:     err,
		Message: fmt.Sprintf("%s: %v", message, err),
		Stage:   status.PhaseProcessing,
		Kind:    kind,
	}
}
