package state

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/country-cache-server/internal/config"
	"github.com/stacklok/country-cache-server/internal/status"
)

// NewStateService creates a RefreshStateService based on the configured storage type.
//
// For file-based storage, it returns a file state service that persists run
// records through statusPersistence; fileOpts apply to it.
//
// For database storage, it returns a database state service that stores run
// records in PostgreSQL. The pool parameter must not be nil in that case.
func NewStateService(
	cfg *config.Config,
	statusPersistence status.StatusPersistence,
	pool *pgxpool.Pool,
	fileOpts ...FileStateOption,
) (RefreshStateService, error) {
	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		if pool == nil {
			return nil, fmt.Errorf("database pool is required when storage type is database")
		}
		return NewDBStateService(pool), nil
	case config.StorageTypeFile:
		if statusPersistence == nil {
			return nil, fmt.Errorf("status persistence is required when storage type is file")
		}
		return NewFileStateService(statusPersistence, fileOpts...), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.GetStorageType())
	}
}
