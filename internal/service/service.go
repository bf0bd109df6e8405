// Package service provides the query side of the country cache
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCountryNotFound is returned when no country matches the requested name
	ErrCountryNotFound = errors.New("country not found")
	// ErrInvalidSort is returned for an unknown sort order
	ErrInvalidSort = errors.New("invalid sort order")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go CountryService

// CountryService defines the read and delete operations on cached countries
type CountryService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// ListCountries returns countries matching the filters in the requested order
	ListCountries(ctx context.Context, opts ...Option[ListCountriesOptions]) ([]*Country, error)

	// GetCountry returns the country whose name matches case-insensitively
	GetCountry(ctx context.Context, name string) (*Country, error)

	// DeleteCountry removes the country whose name matches case-insensitively
	// and returns the deleted record
	DeleteCountry(ctx context.Context, name string) (*Country, error)

	// CountCountries returns the number of cached countries
	CountCountries(ctx context.Context) (int64, error)

	// TopByGDP returns up to limit countries with a known estimated GDP, highest first
	TopByGDP(ctx context.Context, limit int) ([]*Country, error)
}

// Option is a function that sets an option for a service operation
type Option[T ListCountriesOptions] func(*T) error

// SortOrder names one of the supported list orderings
type SortOrder string

const (
	// SortDefault orders by last refresh time, newest first, then by name
	SortDefault        SortOrder = ""
	SortGDPDesc        SortOrder = "gdp_desc"
	SortGDPAsc         SortOrder = "gdp_asc"
	SortPopulationDesc SortOrder = "population_desc"
	SortPopulationAsc  SortOrder = "population_asc"
	SortNameAsc        SortOrder = "name_asc"
	SortNameDesc       SortOrder = "name_desc"
)

// ParseSortOrder validates a sort query value
func ParseSortOrder(value string) (SortOrder, error) {
	switch s := SortOrder(value); s {
	case SortDefault, SortGDPDesc, SortGDPAsc, SortPopulationDesc,
		SortPopulationAsc, SortNameAsc, SortNameDesc:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidSort, value)
	}
}

// ExcludesMissingGDP reports whether the order drops rows without an estimated GDP
func (s SortOrder) ExcludesMissingGDP() bool {
	return s == SortGDPDesc || s == SortGDPAsc
}

// ListCountriesOptions is the options for the ListCountries operation
type ListCountriesOptions struct {
	Region   *string
	Currency *string
	Sort     SortOrder
}

// WithRegion filters by region, compared case-insensitively
func WithRegion(region string) Option[ListCountriesOptions] {
	return func(o *ListCountriesOptions) error {
		region = strings.TrimSpace(region)
		if region == "" {
			return fmt.Errorf("invalid region: %q", region)
		}
		o.Region = &region
		return nil
	}
}

// WithCurrency filters by currency code, compared case-insensitively
func WithCurrency(currency string) Option[ListCountriesOptions] {
	return func(o *ListCountriesOptions) error {
		currency = strings.TrimSpace(currency)
		if currency == "" {
			return fmt.Errorf("invalid currency: %q", currency)
		}
		o.Currency = &currency
		return nil
	}
}

// WithSort sets the ordering of the ListCountries result
func WithSort(sort string) Option[ListCountriesOptions] {
	return func(o *ListCountriesOptions) error {
		s, err := ParseSortOrder(sort)
		if err != nil {
			return err
		}
		o.Sort = s
		return nil
	}
}

// NewListCountriesOptions applies opts over the zero options
func NewListCountriesOptions(opts ...Option[ListCountriesOptions]) (*ListCountriesOptions, error) {
	o := &ListCountriesOptions{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}
