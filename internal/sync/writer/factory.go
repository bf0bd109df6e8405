package writer

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/country-cache-server/internal/config"
	"github.com/stacklok/country-cache-server/internal/filestore"
)

// NewCountryWriter creates a CountryWriter based on the configured storage type.
// File storage needs store; database storage needs pool.
func NewCountryWriter(cfg *config.Config, store *filestore.Store, pool *pgxpool.Pool) (CountryWriter, error) {
	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		return NewDBCountryWriter(pool)
	case config.StorageTypeFile:
		return NewFileCountryWriter(store)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.GetStorageType())
	}
}
