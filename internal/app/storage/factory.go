// Package storage provides factory functions for creating storage-dependent components.
// It implements the Abstract Factory pattern so the state service, country writer and
// country service are always created over the same backend.
package storage

import (
	"context"
	"fmt"

	"github.com/stacklok/country-cache-server/internal/config"
	"github.com/stacklok/country-cache-server/internal/service"
	"github.com/stacklok/country-cache-server/internal/sync/state"
	"github.com/stacklok/country-cache-server/internal/sync/writer"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates storage-dependent components as a family.
// It also owns the storage resources, such as the database pool.
type Factory interface {
	// CreateStateService creates the refresh run tracker
	CreateStateService(ctx context.Context) (state.RefreshStateService, error)

	// CreateCountryWriter creates the batch writer used by refresh runs
	CreateCountryWriter(ctx context.Context) (writer.CountryWriter, error)

	// CreateCountryService creates the read and delete service behind the API
	CreateCountryService(ctx context.Context) (service.CountryService, error)

	// Cleanup releases any resources held by this factory.
	// Should be called when the application shuts down.
	Cleanup()
}

// NewStorageFactory creates a storage factory based on the configured storage type
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		return NewDatabaseFactory(ctx, cfg, opts...)
	case config.StorageTypeFile:
		return NewFileFactory(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.GetStorageType())
	}
}
