// Package database provides a database-backed implementation of the CountryService interface
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/country-cache-server/internal/db"
	"github.com/stacklok/country-cache-server/internal/db/sqlc"
	"github.com/stacklok/country-cache-server/internal/otel"
	"github.com/stacklok/country-cache-server/internal/service"
)

// options holds configuration options for the database service
type options struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// Option is a functional option for configuring the database service
type Option func(*options) error

// WithConnectionPool sets the pgx pool backing the service. The caller is
// responsible for closing the pool when it is done.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for the database service.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// dbService implements the CountryService interface using a database backend
type dbService struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ service.CountryService = (*dbService)(nil)

// New creates a new database-backed country service with the given options
func New(opts ...Option) (service.CountryService, error) {
	o := &options{}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}

	return &dbService{
		pool:   o.pool,
		tracer: o.tracer,
	}, nil
}

// CheckReadiness checks if the service is ready to serve requests
func (s *dbService) CheckReadiness(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// ListCountries returns the countries matching the filters in the requested order
func (s *dbService) ListCountries(
	ctx context.Context,
	opts ...service.Option[service.ListCountriesOptions],
) ([]*service.Country, error) {
	listOpts, err := service.NewListCountriesOptions(opts...)
	if err != nil {
		return nil, err
	}

	ctx, span := s.startSpan(ctx, "dbService.ListCountries",
		trace.WithAttributes(otel.AttrSortOrder.String(string(listOpts.Sort))),
	)
	defer span.End()
	if listOpts.Region != nil {
		span.SetAttributes(otel.AttrRegion.String(*listOpts.Region))
	}
	if listOpts.Currency != nil {
		span.SetAttributes(otel.AttrCurrency.String(*listOpts.Currency))
	}

	rows, err := sqlc.New(s.pool).ListCountries(ctx, sqlc.ListCountriesParams{
		Region:     listOpts.Region,
		Currency:   listOpts.Currency,
		RequireGdp: listOpts.Sort.ExcludesMissingGDP(),
		Sort:       string(listOpts.Sort),
	})
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}

	countries, err := db.CountriesFromRows(rows)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(countries)))
	return countries, nil
}

// GetCountry returns a single country by case-insensitive name
func (s *dbService) GetCountry(ctx context.Context, name string) (*service.Country, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetCountry",
		trace.WithAttributes(otel.AttrCountryName.String(name)),
	)
	defer span.End()

	row, err := sqlc.New(s.pool).GetCountryByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", service.ErrCountryNotFound, name)
		}
		recordError(span, err)
		return nil, fmt.Errorf("failed to get country %s: %w", name, err)
	}

	return db.CountryFromRow(row)
}

// DeleteCountry removes a country by case-insensitive name and returns it
func (s *dbService) DeleteCountry(ctx context.Context, name string) (*service.Country, error) {
	ctx, span := s.startSpan(ctx, "dbService.DeleteCountry",
		trace.WithAttributes(otel.AttrCountryName.String(name)),
	)
	defer span.End()

	row, err := sqlc.New(s.pool).DeleteCountryByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", service.ErrCountryNotFound, name)
		}
		recordError(span, err)
		return nil, fmt.Errorf("failed to delete country %s: %w", name, err)
	}

	return db.CountryFromRow(row)
}

// CountCountries returns the number of stored countries
func (s *dbService) CountCountries(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "dbService.CountCountries")
	defer span.End()

	count, err := sqlc.New(s.pool).CountCountries(ctx)
	if err != nil {
		recordError(span, err)
		return 0, fmt.Errorf("failed to count countries: %w", err)
	}
	return count, nil
}

// TopByGDP returns up to limit countries with a known GDP, highest first
func (s *dbService) TopByGDP(ctx context.Context, limit int) ([]*service.Country, error) {
	ctx, span := s.startSpan(ctx, "dbService.TopByGDP")
	defer span.End()

	if limit <= 0 {
		return []*service.Country{}, nil
	}

	rows, err := sqlc.New(s.pool).TopCountriesByGDP(ctx, int64(limit))
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to load top countries by GDP: %w", err)
	}

	countries, err := db.CountriesFromRows(rows)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(countries)))
	return countries, nil
}
