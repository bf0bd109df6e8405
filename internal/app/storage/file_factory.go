package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stacklok/country-cache-server/internal/config"
	"github.com/stacklok/country-cache-server/internal/filestore"
	"github.com/stacklok/country-cache-server/internal/service"
	"github.com/stacklok/country-cache-server/internal/service/factory"
	"github.com/stacklok/country-cache-server/internal/status"
	"github.com/stacklok/country-cache-server/internal/sync/state"
	"github.com/stacklok/country-cache-server/internal/sync/writer"
)

const (
	// RunsDir is the directory under the base directory holding run records
	RunsDir = "runs"

	// RefreshLockFile is held while a refresh runs against the base directory
	RefreshLockFile = "refresh.lock"
)

// FileFactory creates file-based storage components.
// The country snapshot and the run records live under one base directory.
type FileFactory struct {
	config  *config.Config
	baseDir string

	// shared by the writer and the service so reads see committed batches
	store             *filestore.Store
	statusPersistence status.StatusPersistence
}

var _ Factory = (*FileFactory)(nil)

// NewFileFactory creates a new file-based storage factory and loads the stored snapshot
func NewFileFactory(cfg *config.Config) (*FileFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	baseDir := cfg.GetFileStorageBaseDir()
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", baseDir, err)
	}

	store, err := filestore.New(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open country store: %w", err)
	}

	slog.Info("Creating file-based storage factory", "base_dir", baseDir)

	return &FileFactory{
		config:            cfg,
		baseDir:           baseDir,
		store:             store,
		statusPersistence: status.NewFileStatusPersistence(filepath.Join(baseDir, RunsDir)),
	}, nil
}

// CreateStateService creates a file-based state service
func (f *FileFactory) CreateStateService(_ context.Context) (state.RefreshStateService, error) {
	slog.Debug("Creating file-based state service")
	return state.NewStateService(f.config, f.statusPersistence, nil,
		state.WithLockFile(filepath.Join(f.baseDir, RefreshLockFile)))
}

// CreateCountryWriter creates a writer over the shared country store
func (f *FileFactory) CreateCountryWriter(_ context.Context) (writer.CountryWriter, error) {
	slog.Debug("Creating file-based country writer")
	return writer.NewCountryWriter(f.config, f.store, nil)
}

// CreateCountryService creates an in-memory service reading the shared country store
func (f *FileFactory) CreateCountryService(_ context.Context) (service.CountryService, error) {
	slog.Debug("Creating file-based country service")
	return factory.NewCountryService(f.config, nil, f.store, nil)
}

// Cleanup is a no-op for file storage
func (*FileFactory) Cleanup() {
	slog.Debug("Cleaning up file storage factory (no-op)")
}
