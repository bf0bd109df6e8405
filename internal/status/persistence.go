// Package status provides refresh run records and their file persistence.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mocks/mock_status_persistence.go -package=mocks -source=persistence.go StatusPersistence

const (
	// RunsDirName is the directory under the base path holding one file per run
	RunsDirName = "runs"

	runFileExt = ".json"
)

// ErrStatusNotFound is returned when no record exists for a run id
var ErrStatusNotFound = errors.New("refresh status not found")

// StatusPersistence defines the interface for refresh run persistence
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus writes the record for its run id, replacing any previous version
	SaveStatus(ctx context.Context, status *RefreshStatus) error

	// LoadStatus loads the record of a single run.
	// Returns ErrStatusNotFound if the run is unknown.
	LoadStatus(ctx context.Context, id uuid.UUID) (*RefreshStatus, error)

	// LoadAllStatus loads every run record found on disk
	LoadAllStatus(ctx context.Context) ([]*RefreshStatus, error)
}

type fileStatusPersistence struct {
	runsDir string
}

// NewFileStatusPersistence creates a new file-based status persistence.
// Run records are stored as <basePath>/runs/<id>.json.
func NewFileStatusPersistence(basePath string) StatusPersistence {
	return &fileStatusPersistence{
		runsDir: filepath.Join(basePath, RunsDirName),
	}
}

func (f *fileStatusPersistence) path(id uuid.UUID) string {
	return filepath.Join(f.runsDir, id.String()+runFileExt)
}

// SaveStatus saves the record with a temp-file rename so readers never see a partial file
func (f *fileStatusPersistence) SaveStatus(_ context.Context, status *RefreshStatus) error {
	if status == nil {
		return fmt.Errorf("status cannot be nil")
	}
	if status.ID == uuid.Nil {
		return fmt.Errorf("status must have a run id")
	}

	if err := os.MkdirAll(f.runsDir, 0750); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status for run %s: %w", status.ID, err)
	}

	filePath := f.path(status.ID)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file for run %s: %w", status.ID, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file for run %s: %w", status.ID, err)
	}

	return nil
}

// LoadStatus loads the record of one run
func (f *fileStatusPersistence) LoadStatus(_ context.Context, id uuid.UUID) (*RefreshStatus, error) {
	// #nosec G304 -- path is built from the base directory and a parsed uuid
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("failed to read status file for run %s: %w", id, err)
	}

	var status RefreshStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status for run %s: %w", id, err)
	}

	return &status, nil
}

// LoadAllStatus loads every run record. Unreadable files are skipped.
func (f *fileStatusPersistence) LoadAllStatus(ctx context.Context) ([]*RefreshStatus, error) {
	entries, err := os.ReadDir(f.runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*RefreshStatus{}, nil
		}
		return nil, fmt.Errorf("failed to read status directory: %w", err)
	}

	result := make([]*RefreshStatus, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, runFileExt) {
			continue
		}

		id, err := uuid.Parse(strings.TrimSuffix(name, runFileExt))
		if err != nil {
			continue
		}

		status, err := f.LoadStatus(ctx, id)
		if err != nil {
			continue
		}
		result = append(result, status)
	}

	return result, nil
}
