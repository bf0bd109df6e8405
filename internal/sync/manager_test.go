package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/country-cache-server/internal/service"
	"github.com/stacklok/country-cache-server/internal/sources"
	sourcesmocks "github.com/stacklok/country-cache-server/internal/sources/mocks"
	"github.com/stacklok/country-cache-server/internal/status"
	"github.com/stacklok/country-cache-server/internal/sync/writer"
	writermocks "github.com/stacklok/country-cache-server/internal/sync/writer/mocks"
)

type phaseRecorder struct {
	phases []status.Phase
	totals []int
	failOn status.Phase
}

func (r *phaseRecorder) ReportProgress(_ context.Context, run *status.RefreshStatus) error {
	if r.failOn != "" && run.Phase == r.failOn {
		return errors.New("status store unavailable")
	}
	r.phases = append(r.phases, run.Phase)
	r.totals = append(r.totals, run.TotalCountries)
	return nil
}

type summaryFunc func(ctx context.Context, refreshedAt time.Time) error

func (f summaryFunc) Publish(ctx context.Context, refreshedAt time.Time) error {
	return f(ctx, refreshedAt)
}

func payload(name, code string, population int64) sources.CountryPayload {
	p := sources.CountryPayload{
		Name:       name,
		Capital:    strPtr(name + " City"),
		Region:     strPtr("Middle Earth"),
		Population: int64Ptr(population),
	}
	if code != "" {
		p.Currencies = []sources.CurrencyPayload{{Code: strPtr(code)}}
	}
	return p
}

func rateTable(source status.RatesSource, rates map[string]string) *sources.RateTable {
	table := &sources.RateTable{Rates: map[string]decimal.Decimal{}, Source: source}
	for code, v := range rates {
		table.Rates[code] = decimal.RequireFromString(v)
	}
	return table
}

func newRun() *status.RefreshStatus {
	return &status.RefreshStatus{
		ID:        uuid.New(),
		Phase:     status.PhaseInProgress,
		StartedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPerformRefresh_TotalCountriesFetchedThenStored(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	countries := sourcesmocks.NewMockCountriesFetcher(ctrl)
	rates := sourcesmocks.NewMockRatesFetcher(ctrl)
	w := writermocks.NewMockCountryWriter(ctrl)

	countries.EXPECT().FetchCountries(gomock.Any()).Return([]sources.CountryPayload{
		payload("Numenor", "NMR", 100),
	}, nil)
	rates.EXPECT().FetchRates(gomock.Any()).Return(
		rateTable(status.RatesSourcePrimary, map[string]string{"NMR": "2"}), nil)
	// stored countries missing upstream are kept
	w.EXPECT().LoadExisting(gomock.Any()).Return(map[string]*service.Country{
		"gondor": {ID: 1, Name: "Gondor"},
		"rohan":  {ID: 2, Name: "Rohan"},
	}, nil)
	w.EXPECT().InsertMany(gomock.Any(), gomock.Any()).Return(nil)

	manager := NewDefaultRefreshManager(countries, rates, w, WithEstimator(NewFixedEstimator(1500)))

	run := newRun()
	recorder := &phaseRecorder{}
	result, rerr := manager.PerformRefresh(context.Background(), run, recorder)
	require.Nil(t, rerr)

	assert.Equal(t, []int{1, 1, 1, 3}, recorder.totals)
	assert.Equal(t, 3, result.TotalCountries)
	assert.Equal(t, 3, run.TotalCountries)
}

func TestPerformRefresh_Success(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	countries := sourcesmocks.NewMockCountriesFetcher(ctrl)
	rates := sourcesmocks.NewMockRatesFetcher(ctrl)
	w := writermocks.NewMockCountryWriter(ctrl)

	existingArnor := &service.Country{ID: 7, Name: "Arnor", Population: 1}

	countries.EXPECT().FetchCountries(gomock.Any()).Return([]sources.CountryPayload{
		payload("Numenor", "NMR", 100),
		payload("arnor", "ARN", 50),
		{Name: "  "},
	}, nil)
	rates.EXPECT().FetchRates(gomock.Any()).Return(
		rateTable(status.RatesSourcePrimary, map[string]string{"NMR": "2", "ARN": "0.5"}), nil)
	w.EXPECT().LoadExisting(gomock.Any()).Return(map[string]*service.Country{"arnor": existingArnor}, nil)

	var inserted []*service.Country
	w.EXPECT().InsertMany(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, batch []*service.Country) error {
			inserted = batch
			return nil
		})
	var updated []*service.Country
	w.EXPECT().UpdateMany(gomock.Any(), gomock.Any(), writer.RefreshFields).DoAndReturn(
		func(_ context.Context, batch []*service.Country, _ []string) error {
			updated = batch
			return nil
		})

	published := false
	manager := NewDefaultRefreshManager(countries, rates, w,
		WithEstimator(NewFixedEstimator(1500)),
		WithSummaryPublisher(summaryFunc(func(_ context.Context, _ time.Time) error {
			published = true
			return nil
		})),
	)

	run := newRun()
	recorder := &phaseRecorder{}
	result, rerr := manager.PerformRefresh(context.Background(), run, recorder)
	require.Nil(t, rerr)
	require.NotNil(t, result)

	assert.Equal(t, []status.Phase{
		status.PhaseFetchedCountries,
		status.PhaseFetchedRates,
		status.PhaseProcessing,
		status.PhaseSuccess,
	}, recorder.phases)

	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.TotalCountries)
	assert.Equal(t, status.RatesSourcePrimary, result.RatesSource)
	assert.True(t, published)

	require.Len(t, inserted, 1)
	numenor := inserted[0]
	assert.Equal(t, "Numenor", numenor.Name)
	require.NotNil(t, numenor.EstimatedGDP)
	assert.Equal(t, "75000.00", numenor.EstimatedGDP.StringFixed(2))
	assert.Equal(t, run.StartedAt, numenor.LastRefreshedAt)

	require.Len(t, updated, 1)
	assert.Same(t, existingArnor, updated[0])
	assert.Equal(t, "Arnor", existingArnor.Name, "stored name is kept on update")
	assert.Equal(t, int64(50), existingArnor.Population)
	require.NotNil(t, existingArnor.EstimatedGDP)
	assert.Equal(t, "150000.00", existingArnor.EstimatedGDP.StringFixed(2))

	assert.Equal(t, status.PhaseSuccess, run.Phase)
	assert.NotNil(t, run.FinishedAt)
	assert.Equal(t, status.RatesSourcePrimary, run.RatesSource)
	assert.Equal(t, run.StartedAt, run.LastRefreshedAt)
}

func TestPerformRefresh_Failures(t *testing.T) {
	t.Parallel()

	upstream := &sources.UpstreamError{Source: "countries", Err: errors.New("503")}

	tests := []struct {
		name       string
		setup      func(c *sourcesmocks.MockCountriesFetcher, r *sourcesmocks.MockRatesFetcher, w *writermocks.MockCountryWriter)
		failOn     status.Phase
		wantKind   ErrorKind
		wantStage  status.Phase
		wantPhases []status.Phase
	}{
		{
			name: "countries upstream unavailable",
			setup: func(c *sourcesmocks.MockCountriesFetcher, _ *sourcesmocks.MockRatesFetcher, _ *writermocks.MockCountryWriter) {
				c.EXPECT().FetchCountries(gomock.Any()).Return(nil, upstream)
			},
			wantKind:  KindUpstreamUnavailable,
			wantStage: status.PhaseInProgress,
		},
		{
			name: "rates upstream unavailable",
			setup: func(c *sourcesmocks.MockCountriesFetcher, r *sourcesmocks.MockRatesFetcher, _ *writermocks.MockCountryWriter) {
				c.EXPECT().FetchCountries(gomock.Any()).Return([]sources.CountryPayload{payload("Gondor", "GDR", 1)}, nil)
				r.EXPECT().FetchRates(gomock.Any()).Return(nil, &sources.UpstreamError{Source: "rates", Err: errors.New("timeout")})
			},
			wantKind:   KindUpstreamUnavailable,
			wantStage:  status.PhaseFetchedCountries,
			wantPhases: []status.Phase{status.PhaseFetchedCountries},
		},
		{
			name: "insert fails",
			setup: func(c *sourcesmocks.MockCountriesFetcher, r *sourcesmocks.MockRatesFetcher, w *writermocks.MockCountryWriter) {
				c.EXPECT().FetchCountries(gomock.Any()).Return([]sources.CountryPayload{payload("Gondor", "GDR", 1)}, nil)
				r.EXPECT().FetchRates(gomock.Any()).Return(rateTable(status.RatesSourceFallback, map[string]string{"USD": "1"}), nil)
				w.EXPECT().LoadExisting(gomock.Any()).Return(map[string]*service.Country{}, nil)
				w.EXPECT().InsertMany(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			wantKind:  KindPersistence,
			wantStage: status.PhaseProcessing,
			wantPhases: []status.Phase{
				status.PhaseFetchedCountries, status.PhaseFetchedRates, status.PhaseProcessing,
			},
		},
		{
			name: "load existing fails",
			setup: func(c *sourcesmocks.MockCountriesFetcher, r *sourcesmocks.MockRatesFetcher, w *writermocks.MockCountryWriter) {
				c.EXPECT().FetchCountries(gomock.Any()).Return([]sources.CountryPayload{payload("Gondor", "GDR", 1)}, nil)
				r.EXPECT().FetchRates(gomock.Any()).Return(rateTable(status.RatesSourcePrimary, map[string]string{"GDR": "1"}), nil)
				w.EXPECT().LoadExisting(gomock.Any()).Return(nil, errors.New("connection reset"))
			},
			wantKind:  KindPersistence,
			wantStage: status.PhaseProcessing,
			wantPhases: []status.Phase{
				status.PhaseFetchedCountries, status.PhaseFetchedRates, status.PhaseProcessing,
			},
		},
		{
			name: "progress write fails",
			setup: func(c *sourcesmocks.MockCountriesFetcher, _ *sourcesmocks.MockRatesFetcher, _ *writermocks.MockCountryWriter) {
				c.EXPECT().FetchCountries(gomock.Any()).Return([]sources.CountryPayload{payload("Gondor", "GDR", 1)}, nil)
			},
			failOn:    status.PhaseFetchedCountries,
			wantKind:  KindPersistence,
			wantStage: status.PhaseInProgress,
		},
		{
			name: "success write fails",
			setup: func(c *sourcesmocks.MockCountriesFetcher, r *sourcesmocks.MockRatesFetcher, w *writermocks.MockCountryWriter) {
				c.EXPECT().FetchCountries(gomock.Any()).Return([]sources.CountryPayload{payload("Gondor", "GDR", 1)}, nil)
				r.EXPECT().FetchRates(gomock.Any()).Return(rateTable(status.RatesSourcePrimary, map[string]string{"GDR": "1"}), nil)
				w.EXPECT().LoadExisting(gomock.Any()).Return(map[string]*service.Country{}, nil)
				w.EXPECT().InsertMany(gomock.Any(), gomock.Any()).Return(nil)
			},
			failOn:    status.PhaseSuccess,
			wantKind:  KindPersistence,
			wantStage: status.PhaseSuccess,
			wantPhases: []status.Phase{
				status.PhaseFetchedCountries, status.PhaseFetchedRates, status.PhaseProcessing,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			countries := sourcesmocks.NewMockCountriesFetcher(ctrl)
			rates := sourcesmocks.NewMockRatesFetcher(ctrl)
			w := writermocks.NewMockCountryWriter(ctrl)
			tt.setup(countries, rates, w)

			published := false
			manager := NewDefaultRefreshManager(countries, rates, w,
				WithEstimator(NewFixedEstimator(1000)),
				WithSummaryPublisher(summaryFunc(func(context.Context, time.Time) error {
					published = true
					return nil
				})),
			)

			run := newRun()
			recorder := &phaseRecorder{failOn: tt.failOn}
			result, rerr := manager.PerformRefresh(context.Background(), run, recorder)
			require.Nil(t, result)
			require.NotNil(t, rerr)

			assert.Equal(t, tt.wantKind, rerr.Kind)
			assert.Equal(t, tt.wantStage, rerr.Stage)
			assert.NotEmpty(t, rerr.Message)
			assert.Equal(t, tt.wantPhases, recorder.phases)
			assert.False(t, run.Phase.IsTerminal(), "failure is recorded by the caller")
			assert.Nil(t, run.FinishedAt)
			assert.False(t, published, "summary is only published after success")
		})
	}
}

func TestPerformRefresh_UpstreamErrorUnwraps(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	countries := sourcesmocks.NewMockCountriesFetcher(ctrl)
	cause := errors.New("dial tcp: connection refused")
	countries.EXPECT().FetchCountries(gomock.Any()).
		Return(nil, &sources.UpstreamError{Source: "countries", Err: cause})

	manager := NewDefaultRefreshManager(countries,
		sourcesmocks.NewMockRatesFetcher(ctrl), writermocks.NewMockCountryWriter(ctrl))

	_, rerr := manager.PerformRefresh(context.Background(), newRun(), &phaseRecorder{})
	require.NotNil(t, rerr)
	assert.ErrorIs(t, rerr, sources.ErrUpstreamUnavailable)
	assert.ErrorIs(t, rerr, cause)
	assert.Contains(t, rerr.Error(), "Failed to fetch countries")
}

func TestPerformRefresh_SummaryFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	countries := sourcesmocks.NewMockCountriesFetcher(ctrl)
	rates := sourcesmocks.NewMockRatesFetcher(ctrl)
	w := writermocks.NewMockCountryWriter(ctrl)

	countries.EXPECT().FetchCountries(gomock.Any()).Return([]sources.CountryPayload{payload("Rohan", "RHN", 10)}, nil)
	rates.EXPECT().FetchRates(gomock.Any()).Return(rateTable(status.RatesSourceSecondary, map[string]string{"RHN": "4"}), nil)
	w.EXPECT().LoadExisting(gomock.Any()).Return(map[string]*service.Country{}, nil)
	w.EXPECT().InsertMany(gomock.Any(), gomock.Len(1)).Return(nil)

	run := newRun()
	var gotRefreshedAt time.Time
	manager := NewDefaultRefreshManager(countries, rates, w,
		WithSummaryPublisher(summaryFunc(func(_ context.Context, refreshedAt time.Time) error {
			gotRefreshedAt = refreshedAt
			return errors.New("font missing")
		})),
	)

	result, rerr := manager.PerformRefresh(context.Background(), run, &phaseRecorder{})
	require.Nil(t, rerr)
	require.NotNil(t, result)
	assert.Equal(t, status.PhaseSuccess, run.Phase)
	assert.Equal(t, status.RatesSourceSecondary, result.RatesSource)
	assert.Equal(t, run.StartedAt, gotRefreshedAt)
}

func TestPerformRefresh_DuplicatesAcrossChunks(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	countries := sourcesmocks.NewMockCountriesFetcher(ctrl)
	rates := sourcesmocks.NewMockRatesFetcher(ctrl)
	w := writermocks.NewMockCountryWriter(ctrl)

	countries.EXPECT().FetchCountries(gomock.Any()).Return([]sources.CountryPayload{
		payload("Numenor", "NMR", 100),
		payload("NUMENOR", "NMR", 300),
		payload("Arnor", "", 5),
	}, nil)
	rates.EXPECT().FetchRates(gomock.Any()).Return(rateTable(status.RatesSourcePrimary, map[string]string{"NMR": "2"}), nil)
	w.EXPECT().LoadExisting(gomock.Any()).Return(map[string]*service.Country{}, nil)

	var inserts [][]*service.Country
	var updates [][]*service.Country
	w.EXPECT().InsertMany(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, batch []*service.Country) error {
			inserts = append(inserts, batch)
			return nil
		}).Times(2)
	w.EXPECT().UpdateMany(gomock.Any(), gomock.Any(), writer.RefreshFields).DoAndReturn(
		func(_ context.Context, batch []*service.Country, _ []string) error {
			updates = append(updates, batch)
			return nil
		}).Times(1)

	manager := NewDefaultRefreshManager(countries, rates, w,
		WithBatchSize(1),
		WithEstimator(NewFixedEstimator(1500)),
	)

	result, rerr := manager.PerformRefresh(context.Background(), newRun(), &phaseRecorder{})
	require.Nil(t, rerr)

	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 2, result.TotalCountries)

	require.Len(t, inserts, 2)
	assert.Equal(t, "Numenor", inserts[0][0].Name)
	assert.Equal(t, "Arnor", inserts[1][0].Name)
	assert.Nil(t, inserts[1][0].CurrencyCode)
	assert.Nil(t, inserts[1][0].EstimatedGDP)

	require.Len(t, updates, 1)
	assert.Same(t, inserts[0][0], updates[0][0])
	assert.Equal(t, int64(300), updates[0][0].Population, "last write wins")
	assert.Equal(t, "225000.00", updates[0][0].EstimatedGDP.StringFixed(2))
}

func TestPerformRefresh_CancelledBetweenChunks(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	countries := sourcesmocks.NewMockCountriesFetcher(ctrl)
	rates := sourcesmocks.NewMockRatesFetcher(ctrl)
	w := writermocks.NewMockCountryWriter(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	countries.EXPECT().FetchCountries(gomock.Any()).Return([]sources.CountryPayload{
		payload("Gondor", "", 1),
		payload("Rohan", "", 1),
	}, nil)
	rates.EXPECT().FetchRates(gomock.Any()).Return(rateTable(status.RatesSourceFallback, map[string]string{"USD": "1"}), nil)
	w.EXPECT().LoadExisting(gomock.Any()).Return(map[string]*service.Country{}, nil)
	w.EXPECT().InsertMany(gomock.Any(), gomock.Len(1)).DoAndReturn(
		func(context.Context, []*service.Country) error {
			cancel()
			return nil
		})

	manager := NewDefaultRefreshManager(countries, rates, w, WithBatchSize(1))

	result, rerr := manager.PerformRefresh(ctx, newRun(), &phaseRecorder{})
	require.Nil(t, result)
	require.NotNil(t, rerr)
	assert.Equal(t, KindCancelled, rerr.Kind)
	assert.ErrorIs(t, rerr, context.Canceled)
}

func TestProgressFunc(t *testing.T) {
	t.Parallel()

	var got *status.RefreshStatus
	reporter := ProgressFunc(func(_ context.Context, run *status.RefreshStatus) error {
		got = run
		return nil
	})

	run := newRun()
	require.NoError(t, reporter.ReportProgress(context.Background(), run))
	assert.Same(t, run, got)
}
