package sync

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/country-cache-server/internal/service"
	"github.com/stacklok/country-cache-server/internal/sources"
	"github.com/stacklok/country-cache-server/internal/status"
)

// barePayload leaves capital, region and flag unset
func barePayload(name, code string, population int64) sources.CountryPayload {
	p := sources.CountryPayload{Name: name, Population: int64Ptr(population)}
	if code != "" {
		p.Currencies = []sources.CurrencyPayload{{Code: strPtr(code)}}
	}
	return p
}

func testRates(pairs ...string) *sources.RateTable {
	rates := map[string]decimal.Decimal{}
	for i := 0; i+1 < len(pairs); i += 2 {
		rates[pairs[i]] = decimal.RequireFromString(pairs[i+1])
	}
	return &sources.RateTable{Rates: rates, Source: status.RatesSourcePrimary}
}

var refreshTime = time.Date(2025, 10, 22, 12, 0, 0, 0, time.UTC)

func TestReconcileChunk_Partitions(t *testing.T) {
	t.Parallel()

	existing := map[string]*service.Country{
		"ghana": {ID: 7, Name: "Ghana", Population: 1},
	}
	chunk := []sources.CountryPayload{
		barePayload("Nigeria", "NGN", 200),
		barePayload("GHANA", "GHS", 30),
		barePayload("   ", "USD", 5),
		barePayload("", "", 0),
		barePayload("Kenya", "KES", 50),
	}

	res := reconcileChunk(chunk, testRates("NGN", "1600", "GHS", "15"), existing, refreshTime, NewFixedEstimator(1500))

	assert.Equal(t, 2, res.skipped)
	require.Len(t, res.toInsert, 2)
	require.Len(t, res.toUpdate, 1)

	names := map[string]bool{}
	for _, c := range res.toInsert {
		names[c.Key()] = true
	}
	for _, c := range res.toUpdate {
		assert.False(t, names[c.Key()], "%s queued for insert and update", c.Name)
	}
	assert.True(t, names["nigeria"])
	assert.True(t, names["kenya"])

	ghana := res.toUpdate[0]
	assert.Same(t, existing["ghana"], ghana, "existing record is mutated in place")
	assert.Equal(t, int64(7), ghana.ID)
	assert.Equal(t, "Ghana", ghana.Name, "stored name is kept on update")
	assert.Equal(t, int64(30), ghana.Population)
	assert.Equal(t, refreshTime, ghana.LastRefreshedAt)
}

func TestReconcileChunk_DerivedFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		item         sources.CountryPayload
		rates        *sources.RateTable
		wantCurrency *string
		wantRate     string
		wantGDP      string
	}{
		{
			name:         "rate found",
			item:         barePayload("Numenor", "NUM", 100),
			rates:        testRates("NUM", "2.0"),
			wantCurrency: strPtr("NUM"),
			wantRate:     "2",
			wantGDP:      "75000",
		},
		{
			name:         "lower case code falls back to upper lookup",
			item:         barePayload("Gondor", "gdr", 10),
			rates:        testRates("GDR", "4"),
			wantCurrency: strPtr("gdr"),
			wantRate:     "4",
			wantGDP:      "3750",
		},
		{
			name:         "missing rate leaves rate and gdp unset",
			item:         barePayload("Rohan", "RHN", 1_000_000),
			rates:        testRates("USD", "1"),
			wantCurrency: strPtr("RHN"),
		},
		{
			name:  "no currency",
			item:  barePayload("Arnor", "", 50),
			rates: testRates("USD", "1"),
		},
		{
			name:         "zero rate keeps rate but not gdp",
			item:         barePayload("Mordor", "MDR", 10),
			rates:        testRates("MDR", "0"),
			wantCurrency: strPtr("MDR"),
			wantRate:     "0",
		},
		{
			name:         "gdp rounded to cents",
			item:         barePayload("Shire", "SHR", 1),
			rates:        testRates("SHR", "0.7"),
			wantCurrency: strPtr("SHR"),
			wantRate:     "0.7",
			wantGDP:      "2142.86",
		},
		{
			name:         "rate rounded to six places",
			item:         barePayload("Dale", "DAL", 0),
			rates:        testRates("DAL", "1.23456789"),
			wantCurrency: strPtr("DAL"),
			wantRate:     "1.234568",
			wantGDP:      "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := reconcileChunk([]sources.CountryPayload{tt.item}, tt.rates,
				map[string]*service.Country{}, refreshTime, NewFixedEstimator(1500))
			require.Len(t, res.toInsert, 1)
			c := res.toInsert[0]

			assert.Equal(t, tt.wantCurrency, c.CurrencyCode)
			if tt.wantRate == "" {
				assert.Nil(t, c.ExchangeRate)
			} else {
				require.NotNil(t, c.ExchangeRate)
				assert.True(t, decimal.RequireFromString(tt.wantRate).Equal(*c.ExchangeRate),
					"rate: want %s got %s", tt.wantRate, c.ExchangeRate)
			}
			if tt.wantGDP == "" {
				assert.Nil(t, c.EstimatedGDP)
			} else {
				require.NotNil(t, c.EstimatedGDP)
				assert.True(t, decimal.RequireFromString(tt.wantGDP).Equal(*c.EstimatedGDP),
					"gdp: want %s got %s", tt.wantGDP, c.EstimatedGDP)
			}
		})
	}
}

func TestReconcileChunk_OptionalStrings(t *testing.T) {
	t.Parallel()

	item := sources.CountryPayload{
		Name:    " Eriador ",
		Capital: strPtr(""),
		Region:  strPtr("Middle-earth"),
		Flag:    nil,
	}
	res := reconcileChunk([]sources.CountryPayload{item}, testRates(), map[string]*service.Country{},
		refreshTime, NewFixedEstimator(1500))
	require.Len(t, res.toInsert, 1)

	c := res.toInsert[0]
	assert.Equal(t, "Eriador", c.Name)
	assert.Nil(t, c.Capital)
	require.NotNil(t, c.Region)
	assert.Equal(t, "Middle-earth", *c.Region)
	assert.Nil(t, c.FlagURL)
	assert.Equal(t, int64(0), c.Population)
}

func TestReconcileChunk_CaseInsensitiveDuplicatesLaterWins(t *testing.T) {
	t.Parallel()

	t.Run("new names", func(t *testing.T) {
		t.Parallel()

		chunk := []sources.CountryPayload{
			barePayload("Numenor", "NUM", 100),
			barePayload("NUMENOR", "NUM", 999),
		}
		res := reconcileChunk(chunk, testRates("NUM", "1"), map[string]*service.Country{},
			refreshTime, NewFixedEstimator(1000))

		require.Len(t, res.toInsert, 1)
		assert.Empty(t, res.toUpdate)
		assert.Equal(t, "NUMENOR", res.toInsert[0].Name)
		assert.Equal(t, int64(999), res.toInsert[0].Population)
	})

	t.Run("existing names", func(t *testing.T) {
		t.Parallel()

		existing := map[string]*service.Country{"numenor": {ID: 1, Name: "Numenor"}}
		chunk := []sources.CountryPayload{
			barePayload("numenor", "NUM", 1),
			barePayload("NuMeNoR", "", 2),
		}
		res := reconcileChunk(chunk, testRates("NUM", "1"), existing, refreshTime, NewFixedEstimator(1000))

		assert.Empty(t, res.toInsert)
		require.Len(t, res.toUpdate, 1)
		assert.Equal(t, int64(2), res.toUpdate[0].Population)
		assert.Nil(t, res.toUpdate[0].CurrencyCode)
		assert.Nil(t, res.toUpdate[0].EstimatedGDP)
	})
}

func TestReconcileChunk_CoversEveryNamedEntry(t *testing.T) {
	t.Parallel()

	existing := map[string]*service.Country{}
	var chunk []sources.CountryPayload
	for i := range 40 {
		name := fmt.Sprintf("Country-%02d", i)
		if i%3 == 0 {
			existing[service.NameKey(name)] = &service.Country{ID: int64(i + 1), Name: name}
		}
		chunk = append(chunk, barePayload(name, "USD", int64(i)))
	}

	res := reconcileChunk(chunk, testRates("USD", "1"), existing, refreshTime, NewFixedEstimator(1000))

	seen := map[string]int{}
	for _, c := range res.toInsert {
		seen[c.Key()]++
	}
	for _, c := range res.toUpdate {
		seen[c.Key()]++
	}
	assert.Len(t, seen, 40)
	for key, n := range seen {
		assert.Equal(t, 1, n, "%s appears in more than one batch", key)
	}
	assert.Len(t, res.toUpdate, 14)
}

func TestChunks(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunks(items, 2))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, chunks(items, 10))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, chunks(items, 0))
	assert.Empty(t, chunks([]int{}, 3))
}
