// Package state contains logic for managing refresh run records which the server persists.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/country-cache-server/internal/status"
)

var (
	// ErrRunNotFound is returned when no record exists for a run id
	ErrRunNotFound = errors.New("refresh run not found")

	// ErrInvalidTransition is returned when an update would move a run backwards or out of a terminal phase
	ErrInvalidTransition = errors.New("invalid refresh phase transition")
)

const (
	// DefaultListLimit is the number of runs returned when no limit is given
	DefaultListLimit = 20

	// MaxListLimit caps the number of runs returned by ListRuns
	MaxListLimit = 100
)

// RefreshStateService tracks refresh runs.
//
//go:generate mockgen -destination=mocks/mock_refresh_state_service.go -package=mocks github.com/stacklok/country-cache-server/internal/sync/state RefreshStateService
type RefreshStateService interface {
	// Initialize loads stored runs and marks runs left unfinished by a
	// previous process as failed. Recovery happens only while the refresh
	// lock is free, and must run before this process creates any run.
	Initialize(ctx context.Context) error

	// CreateRun stores a new run in the in_progress phase
	CreateRun(ctx context.Context, startedAt time.Time) (*status.RefreshStatus, error)

	// UpdateRun persists the run synchronously. It returns ErrInvalidTransition
	// if the stored phase cannot move to the run's phase and ErrRunNotFound for
	// an unknown run.
	UpdateRun(ctx context.Context, run *status.RefreshStatus) error

	// GetRun returns a copy of one run
	GetRun(ctx context.Context, id uuid.UUID) (*status.RefreshStatus, error)

	// ListRuns returns up to limit runs, newest first
	ListRuns(ctx context.Context, limit int) ([]*status.RefreshStatus, error)

	// LastRefreshedAt returns the latest refresh timestamp across all runs, or nil if none ran
	LastRefreshedAt(ctx context.Context) (*time.Time, error)

	// AcquireRefreshLock takes the refresh guard without blocking. When acquired
	// is true the caller must call release once the run is over.
	AcquireRefreshLock(ctx context.Context) (release func(), acquired bool, err error)
}

// NormalizeLimit clamps a requested list size into [1, MaxListLimit]
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func newRun(startedAt time.Time) *status.RefreshStatus {
	startedAt = startedAt.UTC()
	return &status.RefreshStatus{
		ID:              uuid.New(),
		Phase:           status.PhaseInProgress,
		StartedAt:       startedAt,
		LastRefreshedAt: startedAt,
	}
}
