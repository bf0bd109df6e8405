package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stacklok/country-cache-server/internal/httpclient"
)

const countriesSource = "countries"

// countriesFetcher fetches the country registry over HTTP
type countriesFetcher struct {
	client httpclient.Client
	url    string
}

// NewCountriesFetcher creates a fetcher for the country registry at url
func NewCountriesFetcher(client httpclient.Client, url string) CountriesFetcher {
	return &countriesFetcher{
		client: client,
		url:    url,
	}
}

// FetchCountries retrieves and validates the country list. There is no retry.
func (f *countriesFetcher) FetchCountries(ctx context.Context) ([]CountryPayload, error) {
	start := time.Now()

	data, err := f.client.Get(ctx, f.url)
	if err != nil {
		return nil, &UpstreamError{Source: countriesSource, Err: err}
	}

	if err := validatePayload(countriesSchemaName, data); err != nil {
		return nil, &UpstreamError{Source: countriesSource, Err: err}
	}

	var countries []CountryPayload
	if err := json.Unmarshal(data, &countries); err != nil {
		return nil, &UpstreamError{Source: countriesSource, Err: fmt.Errorf("failed to decode countries: %w", err)}
	}

	slog.Debug("Fetched countries",
		"count", len(countries),
		"duration", time.Since(start).String())

	return countries, nil
}
