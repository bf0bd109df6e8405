package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/country-cache-server/database"
	"github.com/stacklok/country-cache-server/internal/config"
	"github.com/stacklok/country-cache-server/internal/db"
	"github.com/stacklok/country-cache-server/internal/service"
	"github.com/stacklok/country-cache-server/internal/service/factory"
	"github.com/stacklok/country-cache-server/internal/sync/state"
	"github.com/stacklok/country-cache-server/internal/sync/writer"
)

// DatabaseFactory creates PostgreSQL-backed storage components
type DatabaseFactory struct {
	config *config.Config
	pool   *pgxpool.Pool
	tracer trace.Tracer

	migrate  bool
	poolOpts []db.PoolOption
}

var _ Factory = (*DatabaseFactory)(nil)

// DatabaseFactoryOption is a functional option for configuring the DatabaseFactory
type DatabaseFactoryOption func(*DatabaseFactory)

// WithTracer sets the OpenTelemetry tracer for the database service.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.tracer = tracer
	}
}

// WithMigrations applies pending schema migrations before the pool is opened
func WithMigrations(enabled bool) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.migrate = enabled
	}
}

// WithPoolOptions forwards options to db.NewPool
func WithPoolOptions(opts ...db.PoolOption) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.poolOpts = append(f.poolOpts, opts...)
	}
}

// WithPool uses an existing pool instead of opening one. The factory takes
// ownership and closes it on Cleanup.
func WithPool(pool *pgxpool.Pool) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.pool = pool
	}
}

// NewDatabaseFactory creates a new database-backed storage factory.
// It opens the connection pool, waiting for the database with backoff.
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for database storage type")
	}

	f := &DatabaseFactory{config: cfg}
	for _, opt := range opts {
		opt(f)
	}

	slog.Info("Creating database-backed storage factory")

	if f.migrate {
		connStr, err := cfg.Database.GetConnectionString()
		if err != nil {
			return nil, fmt.Errorf("failed to build connection string: %w", err)
		}
		if err := database.MigrateUp(connStr); err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	if f.pool == nil {
		pool, err := db.NewPool(ctx, cfg.Database, f.poolOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create database connection pool: %w", err)
		}
		f.pool = pool
	}

	return f, nil
}

// Pool returns the connection pool owned by the factory
func (d *DatabaseFactory) Pool() *pgxpool.Pool {
	return d.pool
}

// CreateStateService creates a state service that keeps runs in the refresh_runs table
// and serializes refreshes with an advisory lock
func (d *DatabaseFactory) CreateStateService(_ context.Context) (state.RefreshStateService, error) {
	slog.Debug("Creating database-backed state service")
	return state.NewStateService(d.config, nil, d.pool)
}

// CreateCountryWriter creates a database-backed country writer
func (d *DatabaseFactory) CreateCountryWriter(_ context.Context) (writer.CountryWriter, error) {
	slog.Debug("Creating database-backed country writer")
	return writer.NewCountryWriter(d.config, nil, d.pool)
}

// CreateCountryService creates a database-backed country service
func (d *DatabaseFactory) CreateCountryService(_ context.Context) (service.CountryService, error) {
	slog.Debug("Creating database-backed country service")
	return factory.NewCountryService(d.config, d.pool, nil, d.tracer)
}

// Cleanup closes the database connection pool
func (d *DatabaseFactory) Cleanup() {
	if d.pool != nil {
		slog.Info("Closing database connection pool")
		d.pool.Close()
	}
}
