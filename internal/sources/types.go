package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stacklok/country-cache-server/internal/status"
)

//go:generate mockgen -destination=mocks/mock_fetchers.go -package=mocks -source=types.go CountriesFetcher,RatesFetcher

// ErrUpstreamUnavailable is wrapped by every fetch failure that leaves a run without data
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// CountriesFetcher retrieves the full country list
type CountriesFetcher interface {
	FetchCountries(ctx context.Context) ([]CountryPayload, error)
}

// RatesFetcher retrieves a currency code to USD rate table
type RatesFetcher interface {
	FetchRates(ctx context.Context) (*RateTable, error)
}

// CountryPayload is one entry of the country registry response
type CountryPayload struct {
	Name       string            `json:"name"`
	Capital    *string           `json:"capital,omitempty"`
	Region     *string           `json:"region,omitempty"`
	Population *int64            `json:"population,omitempty"`
	Flag       *string           `json:"flag,omitempty"`
	Currencies []CurrencyPayload `json:"currencies,omitempty"`
}

// CurrencyPayload describes one currency of a country
type CurrencyPayload struct {
	Code   *string `json:"code,omitempty"`
	Name   *string `json:"name,omitempty"`
	Symbol *string `json:"symbol,omitempty"`
}

// CurrencyCode returns the code of the first listed currency, or nil
func (c *CountryPayload) CurrencyCode() *string {
	if len(c.Currencies) == 0 {
		return nil
	}
	code := c.Currencies[0].Code
	if code == nil || *code == "" {
		return nil
	}
	return code
}

// RateTable is the result of a rates fetch
type RateTable struct {
	Rates  map[string]decimal.Decimal
	Source status.RatesSource
}

// Lookup finds the rate for a code, trying the exact code first and then its upper-cased form
func (t *RateTable) Lookup(code string) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Decimal{}, false
	}
	if r, ok := t.Rates[code]; ok {
		return r, true
	}
	r, ok := t.Rates[upper(code)]
	return r, ok
}

// UpstreamError reports which upstream failed and why
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s source unavailable: %v", e.Source, e.Err)
}

// Unwrap exposes both the cause and ErrUpstreamUnavailable to errors.Is
func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstreamUnavailable, e.Err}
}
