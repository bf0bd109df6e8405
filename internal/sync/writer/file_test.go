package writer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/country-cache-server/internal/config"
	"github.com/stacklok/country-cache-server/internal/filestore"
	"github.com/stacklok/country-cache-server/internal/service"
)

func strPtr(s string) *string { return &s }

func newFileWriter(t *testing.T) (CountryWriter, *filestore.Store) {
	t.Helper()
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	w, err := NewFileCountryWriter(store)
	require.NoError(t, err)
	return w, store
}

func TestNewFileCountryWriter_NilStore(t *testing.T) {
	t.Parallel()

	_, err := NewFileCountryWriter(nil)
	require.Error(t, err)
}

func TestFileCountryWriter_InsertThenUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w, store := newFileWriter(t)

	refreshed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := decimal.RequireFromString("2")
	numenor := &service.Country{
		Name:            "Numenor",
		Capital:         strPtr("Armenelos"),
		Population:      100,
		CurrencyCode:    strPtr("NUM"),
		ExchangeRate:    &rate,
		LastRefreshedAt: refreshed,
	}
	require.NoError(t, w.InsertMany(ctx, []*service.Country{numenor}))
	require.NotZero(t, numenor.ID)

	existing, err := w.LoadExisting(ctx)
	require.NoError(t, err)
	require.Contains(t, existing, "numenor")

	current := existing["numenor"]
	current.Population = 500
	current.Capital = nil
	current.Name = "NUMENOR"
	current.LastRefreshedAt = refreshed.Add(time.Hour)
	require.NoError(t, w.UpdateMany(ctx, []*service.Country{current},
		[]string{FieldPopulation, FieldCapital, FieldLastRefreshedAt}))

	got, ok := store.Get("numenor")
	require.True(t, ok)
	assert.Equal(t, int64(500), got.Population)
	assert.Nil(t, got.Capital)
	assert.Equal(t, "Numenor", got.Name, "name is not an update field")
	assert.Equal(t, refreshed.Add(time.Hour), got.LastRefreshedAt)
	require.NotNil(t, got.ExchangeRate)
	assert.True(t, got.ExchangeRate.Equal(rate))
}

func TestFileCountryWriter_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w, _ := newFileWriter(t)

	err := w.UpdateMany(ctx, []*service.Country{{ID: 1}}, []string{"name"})
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)

	require.NoError(t, w.InsertMany(ctx, []*service.Country{{Name: "Rohan"}}))
	err = w.InsertMany(ctx, []*service.Country{{Name: "rohan"}})
	require.ErrorIs(t, err, filestore.ErrDuplicateName)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, w.InsertMany(cancelled, []*service.Country{{Name: "Gondor"}}), context.Canceled)
}

func TestFileCountryWriter_UpdateSkipsDeletedCountry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w, store := newFileWriter(t)

	require.NoError(t, w.InsertMany(ctx, []*service.Country{
		{Name: "Gondor", Population: 10},
		{Name: "Rohan", Population: 20},
	}))

	existing, err := w.LoadExisting(ctx)
	require.NoError(t, err)

	// removed through the API while the refresh holds its snapshot
	_, found, err := store.Delete("gondor")
	require.NoError(t, err)
	require.True(t, found)

	gondor, rohan := existing["gondor"], existing["rohan"]
	gondor.Population = 11
	rohan.Population = 21
	require.NoError(t, w.UpdateMany(ctx, []*service.Country{gondor, rohan}, RefreshFields))

	got, ok := store.Get("rohan")
	require.True(t, ok)
	assert.Equal(t, int64(21), got.Population)

	_, ok = store.Get("gondor")
	assert.False(t, ok)
	assert.Equal(t, 1, store.Count())
}

func TestCopyFields(t *testing.T) {
	t.Parallel()

	gdp := decimal.RequireFromString("10.50")
	src := &service.Country{
		Name:         "src",
		Region:       strPtr("Africa"),
		FlagURL:      strPtr("https://flags/x.svg"),
		EstimatedGDP: &gdp,
	}
	dst := &service.Country{Name: "dst", Region: strPtr("Europe")}

	copyFields(dst, src, RefreshFields)
	assert.Equal(t, "dst", dst.Name)
	assert.Equal(t, "Africa", *dst.Region)
	assert.Equal(t, "https://flags/x.svg", *dst.FlagURL)

	*src.Region = "Asia"
	assert.Equal(t, "Africa", *dst.Region, "copied values do not alias the source")
}

func TestNewCountryWriter(t *testing.T) {
	t.Parallel()

	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	w, err := NewCountryWriter(&config.Config{}, store, nil)
	require.NoError(t, err)
	assert.IsType(t, &fileCountryWriter{}, w)

	_, err = NewCountryWriter(&config.Config{Database: &config.DatabaseConfig{}}, store, nil)
	require.Error(t, err, "database storage needs a pool")
}
