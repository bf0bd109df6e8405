// Package writer contains the CountryWriter interface and implementations
package writer

import (
	"context"
	"log/slog"

	"github.com/stacklok/country-cache-server/internal/service"
)

//go:generate mockgen -destination=mocks/mock_country_writer.go -package=mocks -source=writer.go CountryWriter

// Column names accepted by UpdateMany
const (
	FieldCapital         = "capital"
	FieldRegion          = "region"
	FieldPopulation      = "population"
	FieldCurrencyCode    = "currency_code"
	FieldExchangeRate    = "exchange_rate"
	FieldEstimatedGDP    = "estimated_gdp"
	FieldFlagURL         = "flag_url"
	FieldLastRefreshedAt = "last_refreshed_at"
)

// RefreshFields is the set of columns a refresh overwrites on existing countries
var RefreshFields = []string{
	FieldCapital,
	FieldRegion,
	FieldPopulation,
	FieldCurrencyCode,
	FieldExchangeRate,
	FieldEstimatedGDP,
	FieldFlagURL,
	FieldLastRefreshedAt,
}

// CountryWriter defines the persistence operations a refresh run needs
type CountryWriter interface {
	// LoadExisting returns every persisted country keyed by service.NameKey
	LoadExisting(ctx context.Context) (map[string]*service.Country, error)

	// InsertMany creates the given countries and assigns their IDs
	InsertMany(ctx context.Context, countries []*service.Country) error

	// UpdateMany writes only the listed fields of the given countries, matched by ID.
	// Countries deleted since LoadExisting are skipped, since concurrent edits are last-writer-wins.
	UpdateMany(ctx context.Context, countries []*service.Country, fields []string) error
}

// ValidateFields rejects column names UpdateMany does not know
func ValidateFields(fields []string) error {
	for _, f := range fields {
		switch f {
		case FieldCapital, FieldRegion, FieldPopulation, FieldCurrencyCode,
			FieldExchangeRate, FieldEstimatedGDP, FieldFlagURL, FieldLastRefreshedAt:
		default:
			return &UnknownFieldError{Field: f}
		}
	}
	return nil
}

// UnknownFieldError is returned for an unsupported UpdateMany field
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return "unknown country field: " + e.Field
}

// logMissing reports countries an update could not find
func logMissing(missing []*service.Country) {
	for _, c := range missing {
		slog.Warn("Country was deleted during refresh, skipping update", "id", c.ID, "name", c.Name)
	}
}
