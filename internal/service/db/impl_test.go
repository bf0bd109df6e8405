package database

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/country-cache-server/database"
	"github.com/stacklok/country-cache-server/internal/service"
	"github.com/stacklok/country-cache-server/internal/sync/writer"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// setupTestService creates a service over a migrated database seeded with four countries
func setupTestService(t *testing.T) *dbService {
	t.Helper()

	ctx := context.Background()
	pool, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	w, err := writer.NewDBCountryWriter(pool)
	require.NoError(t, err)
	require.NoError(t, w.InsertMany(ctx, []*service.Country{
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

	svc, err := New(WithConnectionPool(pool))
	require.NoError(t, err)
	return svc.(*dbService)
}

func names(countries []*service.Country) []string {
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		out = append(out, c.Name)
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New()
	require.Error(t, err)

	_, err = New(WithConnectionPool(nil))
	require.Error(t, err)
}

func TestDBService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := setupTestService(t)

	require.NoError(t, svc.CheckReadiness(ctx))

	t.Run("list orders", func(t *testing.T) {
		tests := []struct {
			name string
			opts []service.Option[service.ListCountriesOptions]
			want []string
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
				name: "population_desc keeps every row",
				opts: []service.Option[service.ListCountriesOptions]{service.WithSort("population_desc")},
				want: []string{"Mordor", "Rohan", "Gondor", "Numenor"},
			},
			{
				name: "name_desc",
				opts: []service.Option[service.ListCountriesOptions]{service.WithSort("name_desc")},
				want: []string{"Rohan", "Numenor", "Mordor", "Gondor"},
			},
			{
				name: "region filter ignores case",
				opts: []service.Option[service.ListCountriesOptions]{
					service.WithRegion("MIDDLE-EARTH"), service.WithSort("name_asc"),
				},
				want: []string{"Gondor", "Mordor", "Rohan"},
			},
			{
				name: "currency filter ignores case",
				opts: []service.Option[service.ListCountriesOptions]{
					service.WithCurrency("GcR"), service.WithSort("population_asc"),
				},
				want: []string{"Gondor", "Mordor"},
			},
			{
				name: "no match",
				opts: []service.Option[service.ListCountriesOptions]{service.WithRegion("Valinor")},
				want: []string{},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := svc.ListCountries(ctx, tt.opts...)
				require.NoError(t, err)
				assert.Equal(t, tt.want, names(got))
			})
		}
	})

	t.Run("invalid sort", func(t *testing.T) {
		_, err := svc.ListCountries(ctx, service.WithSort("area_desc"))
		require.ErrorIs(t, err, service.ErrInvalidSort)
	})

	t.Run("get by name", func(t *testing.T) {
		got, err := svc.GetCountry(ctx, "gOnDoR")
		require.NoError(t, err)
		assert.Equal(t, "Gondor", got.Name)
		assert.True(t, dec("750000.00").Equal(*got.EstimatedGDP))
		assert.Nil(t, got.Capital)

		_, err = svc.GetCountry(ctx, "Valinor")
		require.ErrorIs(t, err, service.ErrCountryNotFound)
	})

	t.Run("top by gdp", func(t *testing.T) {
		got, err := svc.TopByGDP(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"Rohan", "Gondor"}, names(got))

		none, err := svc.TopByGDP(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("delete then count", func(t *testing.T) {
		before, err := svc.CountCountries(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), before)

		deleted, err := svc.DeleteCountry(ctx, "NUMENOR")
		require.NoError(t, err)
		assert.Equal(t, "Numenor", deleted.Name)

		_, err = svc.DeleteCountry(ctx, "Numenor")
		require.ErrorIs(t, err, service.ErrCountryNotFound)

		after, err := svc.CountCountries(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), after)
	})
}
