package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/country-cache-server/internal/filestore"
	"github.com/stacklok/country-cache-server/internal/service"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestService(t *testing.T) (service.CountryService, *filestore.Store) {
	t.Helper()

	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	require.NoError(t, store.Insert([]*service.Country{
		{
			Name: "Gondor", Region: ptr("Middle-earth"), Population: 1000,
			CurrencyCode: ptr("GCR"), ExchangeRate: dec("2"), EstimatedGDP: dec("750000.00"),
			LastRefreshedAt: older,
		},
		{
			Name: "Rohan", Region: ptr("middle-earth"), Population: 5000,
			CurrencyCode: ptr("RHN"), ExchangeRate: dec("1"), EstimatedGDP: dec("7500000.00"),
			LastRefreshedAt: older,
		},
		{
			Name: "Mordor", Region: ptr("Middle-earth"), Population: 9000,
			CurrencyCode: ptr("gcr"), LastRefreshedAt: newer,
		},
		{
			Name: "Numenor", Region: ptr("Sea"), Population: 200,
			CurrencyCode: ptr("NMN"), ExchangeRate: dec("4"), EstimatedGDP: dec("75000.00"),
			LastRefreshedAt: older,
		},
	}))

	svc, err := New(store)
	require.NoError(t, err)
	return svc, store
}

func names(countries []*service.Country) []string {
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		out = append(out, c.Name)
	}
	return out
}

func TestNew_RequiresStore(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.Error(t, err)
}

func TestListCountries(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		opts    []service.Option[service.ListCountriesOptions]
		want    []string
		wantErr error
	}{
		{
			name: "default order is newest refresh then name",
			want: []string{"Mordor", "Gondor", "Numenor", "Rohan"},
		},
		{
			name: "gdp_desc drops missing gdp",
			opts: []service.Option[service.ListCountriesOptions]{service.WithSort("gdp_desc")},
			want: []string{"Rohan", "Gondor", "Numenor"},
		},
		{
			name: "gdp_asc",
			opts: []service.Option[service.ListCountriesOptions]{service.WithSort("gdp_asc")},
			want: []string{"Numenor", "Gondor", "Rohan"},
		},
		{
			name: "population_asc keeps every row",
			opts: []service.Option[service.ListCountriesOptions]{service.WithSort("population_asc")},
			want: []string{"Numenor", "Gondor", "Rohan", "Mordor"},
		},
		{
			name: "name_asc",
			opts: []service.Option[service.ListCountriesOptions]{service.WithSort("name_asc")},
			want: []string{"Gondor", "Mordor", "Numenor", "Rohan"},
		},
		{
			name: "region and currency filters ignore case",
			opts: []service.Option[service.ListCountriesOptions]{
				service.WithRegion("MIDDLE-EARTH"), service.WithCurrency("gCr"), service.WithSort("name_desc"),
			},
			want: []string{"Mordor", "Gondor"},
		},
		{
			name: "no match",
			opts: []service.Option[service.ListCountriesOptions]{service.WithCurrency("EUR")},
			want: []string{},
		},
		{
			name:    "unknown sort",
			opts:    []service.Option[service.ListCountriesOptions]{service.WithSort("area_desc")},
			wantErr: service.ErrInvalidSort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := svc.ListCountries(context.Background(), tt.opts...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestGetAndDeleteCountry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTestService(t)

	got, err := svc.GetCountry(ctx, "rOhAn")
	require.NoError(t, err)
	assert.Equal(t, "Rohan", got.Name)

	_, err = svc.GetCountry(ctx, "Valinor")
	require.ErrorIs(t, err, service.ErrCountryNotFound)

	deleted, err := svc.DeleteCountry(ctx, "ROHAN")
	require.NoError(t, err)
	assert.Equal(t, "Rohan", deleted.Name)
	assert.Equal(t, 3, store.Count())

	_, err = svc.DeleteCountry(ctx, "Rohan")
	require.ErrorIs(t, err, service.ErrCountryNotFound)

	count, err := svc.CountCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, svc.CheckReadiness(ctx))
}

func TestTopByGDP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)

	top, err := svc.TopByGDP(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rohan", "Gondor", "Numenor"}, names(top))

	top, err = svc.TopByGDP(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rohan"}, names(top))

	top, err = svc.TopByGDP(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, top)
}
