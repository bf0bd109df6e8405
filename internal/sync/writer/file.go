package writer

import (
	"context"
	"fmt"

	"github.com/stacklok/country-cache-server/internal/filestore"
	"github.com/stacklok/country-cache-server/internal/service"
)

// fileCountryWriter persists countries through the JSON snapshot store
type fileCountryWriter struct {
	store *filestore.Store
}

// NewFileCountryWriter creates a CountryWriter over a file store
func NewFileCountryWriter(store *filestore.Store) (CountryWriter, error) {
	if store == nil {
		return nil, fmt.Errorf("file store is required")
	}
	return &fileCountryWriter{store: store}, nil
}

func (f *fileCountryWriter) LoadExisting(_ context.Context) (map[string]*service.Country, error) {
	all := f.store.All()
	existing := make(map[string]*service.Country, len(all))
	for _, c := range all {
		existing[c.Key()] = c
	}
	return existing, nil
}

func (f *fileCountryWriter) InsertMany(ctx context.Context, countries []*service.Country) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.store.Insert(countries)
}

func (f *fileCountryWriter) UpdateMany(ctx context.Context, countries []*service.Country, fields []string) error {
	if err := ValidateFields(fields); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	missing, err := f.store.Update(countries, func(dst, src *service.Country) {
		copyFields(dst, src, fields)
	})
	if err != nil {
		return err
	}
	logMissing(missing)
	return nil
}

// copyFields copies the named fields from src to dst
func copyFields(dst, src *service.Country, fields []string) {
	clone := src.Clone()
	for _, field := range fields {
		switch field {
		case FieldCapital:
			dst.Capital = clone.Capital
		case FieldRegion:
			dst.Region = clone.Region
		case FieldPopulation:
			dst.Population = clone.Population
		case FieldCurrencyCode:
			dst.CurrencyCode = clone.CurrencyCode
		case FieldExchangeRate:
			dst.ExchangeRate = clone.ExchangeRate
		case FieldEstimatedGDP:
			dst.EstimatedGDP = clone.EstimatedGDP
		case FieldFlagURL:
			dst.FlagURL = clone.FlagURL
		case FieldLastRefreshedAt:
			dst.LastRefreshedAt = clone.LastRefreshedAt
		}
	}
}
