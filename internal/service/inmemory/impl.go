// Package inmemory provides an in-memory implementation of the CountryService interface
// backed by the JSON country snapshot of file storage mode.
package inmemory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/stacklok/country-cache-server/internal/service"
)

// CountryStore is the subset of the file store read by the service
type CountryStore interface {
	All() []*service.Country
	Count() int
	Get(name string) (*service.Country, bool)
	Delete(name string) (*service.Country, bool, error)
}

// countrySvc implements the CountryService interface over a CountryStore
type countrySvc struct {
	store CountryStore
}

var _ service.CountryService = (*countrySvc)(nil)

// New creates a new in-memory country service over the given store
func New(store CountryStore) (service.CountryService, error) {
	if store == nil {
		return nil, fmt.Errorf("country store is required")
	}
	return &countrySvc{store: store}, nil
}

// CheckReadiness always succeeds; the snapshot is loaded when the store is opened
func (*countrySvc) CheckReadiness(_ context.Context) error {
	return nil
}

// ListCountries filters and sorts the stored countries
func (s *countrySvc) ListCountries(
	_ context.Context,
	opts ...service.Option[service.ListCountriesOptions],
) ([]*service.Country, error) {
	listOpts, err := service.NewListCountriesOptions(opts...)
	if err != nil {
		return nil, err
	}

	all := s.store.All()
	result := make([]*service.Country, 0, len(all))
	for _, c := range all {
		if !matches(c, listOpts) {
			continue
		}
		result = append(result, c)
	}

	slices.SortStableFunc(result, compareFor(listOpts.Sort))
	return result, nil
}

// GetCountry returns a country by case-insensitive name
func (s *countrySvc) GetCountry(_ context.Context, name string) (*service.Country, error) {
	c, ok := s.store.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrCountryNotFound, name)
	}
	return c, nil
}

// DeleteCountry removes a country by case-insensitive name
func (s *countrySvc) DeleteCountry(_ context.Context, name string) (*service.Country, error) {
	c, ok, err := s.store.Delete(name)
	if err != nil {
		return nil, fmt.Errorf("failed to delete country %s: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrCountryNotFound, name)
	}
	return c, nil
}

// CountCountries returns the number of stored countries
func (s *countrySvc) CountCountries(_ context.Context) (int64, error) {
	return int64(s.store.Count()), nil
}

// TopByGDP returns up to limit countries with a known GDP, highest first
func (s *countrySvc) TopByGDP(ctx context.Context, limit int) ([]*service.Country, error) {
	if limit <= 0 {
		return []*service.Country{}, nil
	}
	ranked, err := s.ListCountries(ctx, service.WithSort(string(service.SortGDPDesc)))
	if err != nil {
		return nil, err
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func matches(c *service.Country, opts *service.ListCountriesOptions) bool {
	if opts.Region != nil && !equalFoldPtr(c.Region, *opts.Region) {
		return false
	}
	if opts.Currency != nil && !equalFoldPtr(c.CurrencyCode, *opts.Currency) {
		return false
	}
	if opts.Sort.ExcludesMissingGDP() && c.EstimatedGDP == nil {
		return false
	}
	return true
}

func equalFoldPtr(v *string, want string) bool {
	return v != nil && strings.EqualFold(*v, want)
}

// compareFor returns the ordering used by the database for the same sort order.
// Ties fall through to last refresh time (newest first) and then name.
func compareFor(sort service.SortOrder) func(a, b *service.Country) int {
	return func(a, b *service.Country) int {
		if c := comparePrimary(sort, a, b); c != 0 {
			return c
		}
		if c := b.LastRefreshedAt.Compare(a.LastRefreshedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Key(), b.Key())
	}
}

func comparePrimary(sort service.SortOrder, a, b *service.Country) int {
	switch sort {
	case service.SortGDPDesc:
		return b.EstimatedGDP.Cmp(*a.EstimatedGDP)
	case service.SortGDPAsc:
		return a.EstimatedGDP.Cmp(*b.EstimatedGDP)
	case service.SortPopulationDesc:
		return cmp.Compare(b.Population, a.Population)
	case service.SortPopulationAsc:
		return cmp.Compare(a.Population, b.Population)
	case service.SortNameAsc:
		return cmp.Compare(a.Key(), b.Key())
	case service.SortNameDesc:
		return cmp.Compare(b.Key(), a.Key())
	default:
		return 0
	}
}
