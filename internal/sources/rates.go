package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/stacklok/country-cache-server/internal/httpclient"
	"github.com/stacklok/country-cache-server/internal/status"
)

const ratesSource = "rates"

// RatesProvider is one exchange-rate endpoint in the fallback chain
type RatesProvider struct {
	Name status.RatesSource
	URL  string
}

// ratesFetcher walks the provider chain in order
type ratesFetcher struct {
	client    httpclient.Client
	providers []RatesProvider
	fallback  map[string]decimal.Decimal
}

// NewRatesFetcher creates a rates fetcher over the given providers.
// A nil or empty fallback table turns total provider failure into an error.
func NewRatesFetcher(
	client httpclient.Client,
	providers []RatesProvider,
	fallback map[string]decimal.Decimal,
) RatesFetcher {
	return &ratesFetcher{
		client:    client,
		providers: providers,
		fallback:  fallback,
	}
}

// FetchRates returns the first provider's table that validates, or the fallback table
func (f *ratesFetcher) FetchRates(ctx context.Context) (*RateTable, error) {
	var errs []error
	for _, p := range f.providers {
		rates, err := f.fetchProvider(ctx, p)
		if err == nil {
			if p.Name != status.RatesSourcePrimary {
				slog.Warn("Using secondary exchange rate provider", "provider", p.Name, "url", p.URL)
			}
			return &RateTable{Rates: rates, Source: p.Name}, nil
		}

		slog.Warn("Exchange rate provider failed", "provider", p.Name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))

		if ctx.Err() != nil {
			break
		}
	}

	if len(f.fallback) == 0 {
		return nil, &UpstreamError{Source: ratesSource, Err: errors.Join(errs...)}
	}

	slog.Warn("All exchange rate providers failed, using fallback table", "currencies", len(f.fallback))
	return &RateTable{Rates: maps.Clone(f.fallback), Source: status.RatesSourceFallback}, nil
}

func (f *ratesFetcher) fetchProvider(ctx context.Context, p RatesProvider) (map[string]decimal.Decimal, error) {
	data, err := f.client.Get(ctx, p.URL)
	if err != nil {
		return nil, err
	}

	if err := validatePayload(ratesSchemaName, data); err != nil {
		return nil, err
	}

	return decodeRates(data)
}

// decodeRates reads the rates object using the raw number text so no float rounding is introduced
func decodeRates(data []byte) (map[string]decimal.Decimal, error) {
	result := gjson.GetBytes(data, "rates")
	if !result.IsObject() {
		return nil, fmt.Errorf("rates field is not an object")
	}

	rates := make(map[string]decimal.Decimal)
	var decodeErr error
	result.ForEach(func(key, value gjson.Result) bool {
		rate, err := decimal.NewFromString(value.Raw)
		if err != nil {
			decodeErr = fmt.Errorf("invalid rate for %s: %w", key.String(), err)
			return false
		}
		rates[key.String()] = rate
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("rates table is empty")
	}
	return rates, nil
}

func upper(s string) string {
	return strings.ToUpper(s)
}
