package db

import (
	"fmt"

	"github.com/stacklok/country-cache-server/internal/db/pgtypes"
	"github.com/stacklok/country-cache-server/internal/db/sqlc"
	"github.com/stacklok/country-cache-server/internal/service"
)

// CountryFromRow converts a country row into the service model
func CountryFromRow(row sqlc.Country) (*service.Country, error) {
	rate, err := pgtypes.DecimalFromNumeric(row.ExchangeRate)
	if err != nil {
		return nil, fmt.Errorf("invalid exchange_rate for %s: %w", row.Name, err)
	}
	gdp, err := pgtypes.DecimalFromNumeric(row.EstimatedGdp)
	if err != nil {
		return nil, fmt.Errorf("invalid estimated_gdp for %s: %w", row.Name, err)
	}

	c := &service.Country{
		ID:           row.ID,
		Name:         row.Name,
		Capital:      row.Capital,
		Region:       row.Region,
		Population:   row.Population,
		CurrencyCode: row.CurrencyCode,
		ExchangeRate: rate,
		EstimatedGDP: gdp,
		FlagURL:      row.FlagUrl,
	}
	if t := pgtypes.TimePtr(row.LastRefreshedAt); t != nil {
		c.LastRefreshedAt = *t
	}
	if t := pgtypes.TimePtr(row.CreatedAt); t != nil {
		c.CreatedAt = *t
	}
	if t := pgtypes.TimePtr(row.UpdatedAt); t != nil {
		c.UpdatedAt = *t
	}
	return c, nil
}

// CountriesFromRows converts a slice of rows, stopping at the first invalid one
func CountriesFromRows(rows []sqlc.Country) ([]*service.Country, error) {
	out := make([]*service.Country, 0, len(rows))
	for _, row := range rows {
		c, err := CountryFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
