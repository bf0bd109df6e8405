// Package factory provides factory functions for creating service implementations.
package factory

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/country-cache-server/internal/config"
	"github.com/stacklok/country-cache-server/internal/service"
	database "github.com/stacklok/country-cache-server/internal/service/db"
	"github.com/stacklok/country-cache-server/internal/service/inmemory"
)

// NewCountryService creates a CountryService based on the configured storage type.
//
// For file-based storage, it returns an in-memory service reading from store.
//
// For database storage, it returns a database-backed service querying PostgreSQL.
// The pool parameter must not be nil when database storage is configured.
func NewCountryService(
	cfg *config.Config,
	pool *pgxpool.Pool,
	store inmemory.CountryStore,
	tracer trace.Tracer,
) (service.CountryService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		if pool == nil {
			return nil, fmt.Errorf("database pool is required when storage type is database")
		}
		slog.Info("Creating database-backed country service")
		return database.New(database.WithConnectionPool(pool), database.WithTracer(tracer))

	case config.StorageTypeFile:
		if store == nil {
			return nil, fmt.Errorf("country store is required when storage type is file")
		}
		slog.Info("Creating in-memory country service")
		return inmemory.New(store)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.GetStorageType())
	}
}
