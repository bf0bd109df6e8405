package state

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/stacklok/country-cache-server/internal/status"
)

type fileStateService struct {
	statusPersistence status.StatusPersistence

	mu   sync.RWMutex
	runs map[uuid.UUID]*status.RefreshStatus

	// refreshMu guards refreshes within the process, lock across processes
	refreshMu sync.Mutex
	lock      *flock.Flock
}

// FileStateOption configures a file-based state service
type FileStateOption func(*fileStateService)

// WithLockFile makes AcquireRefreshLock also take an exclusive lock on path,
// so processes sharing one storage directory never refresh concurrently
func WithLockFile(path string) FileStateOption {
	return func(f *fileStateService) {
		if path != "" {
			f.lock = flock.New(path)
		}
	}
}

// NewFileStateService creates a new file-based refresh state service
func NewFileStateService(statusPersistence status.StatusPersistence, opts ...FileStateOption) RefreshStateService {
	f := &fileStateService{
		statusPersistence: statusPersistence,
		runs:              make(map[uuid.UUID]*status.RefreshStatus),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *fileStateService) Initialize(ctx context.Context) error {
	runs, err := f.statusPersistence.LoadAllStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to load refresh runs: %w", err)
	}

	// Unfinished runs only count as interrupted when nobody holds the refresh lock
	release, acquired, err := f.AcquireRefreshLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to take refresh lock: %w", err)
	}
	if acquired {
		defer release()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now().UTC()
	for _, run := range runs {
		if !run.Phase.IsTerminal() {
			if !acquired {
				slog.Info("Refresh lock is held elsewhere, leaving unfinished run as is",
					"run_id", run.ID, "phase", run.Phase)
			} else {
				slog.Warn("Previous refresh was interrupted, marking it failed",
					"run_id", run.ID, "phase", run.Phase)
				run.Finish(status.PhaseFailed, status.InterruptedMessage, now)
				if err := f.statusPersistence.SaveStatus(ctx, run); err != nil {
					slog.Warn("Failed to persist interrupted refresh run", "run_id", run.ID, "error", err)
				}
			}
		}
		f.runs[run.ID] = run
	}

	slog.Info("Loaded refresh runs", "count", len(runs))
	return nil
}

func (f *fileStateService) CreateRun(ctx context.Context, startedAt time.Time) (*status.RefreshStatus, error) {
	run := newRun(startedAt)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.statusPersistence.SaveStatus(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save refresh run: %w", err)
	}
	f.runs[run.ID] = run
	return run.Clone(), nil
}

func (f *fileStateService) UpdateRun(ctx context.Context, run *status.RefreshStatus) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.runs[run.ID]
	if !ok {
		return ErrRunNotFound
	}
	if !status.CanTransition(current.Phase, run.Phase) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Phase, run.Phase)
	}

	next := run.Clone()
	if err := f.statusPersistence.SaveStatus(ctx, next); err != nil {
		return fmt.Errorf("failed to save refresh run %s: %w", run.ID, err)
	}
	f.runs[run.ID] = next
	return nil
}

func (f *fileStateService) GetRun(_ context.Context, id uuid.UUID) (*status.RefreshStatus, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	run, ok := f.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run.Clone(), nil
}

func (f *fileStateService) ListRuns(_ context.Context, limit int) ([]*status.RefreshStatus, error) {
	f.mu.RLock()
	result := make([]*status.RefreshStatus, 0, len(f.runs))
	for _, run := range f.runs {
		result = append(result, run.Clone())
	}
	f.mu.RUnlock()

	slices.SortFunc(result, func(a, b *status.RefreshStatus) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	if limit = NormalizeLimit(limit); len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fileStateService) LastRefreshedAt(_ context.Context) (*time.Time, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var latest *time.Time
	for _, run := range f.runs {
		if run.LastRefreshedAt.IsZero() {
			continue
		}
		if latest == nil || run.LastRefreshedAt.After(*latest) {
			t := run.LastRefreshedAt
			latest = &t
		}
	}
	return latest, nil
}

func (f *fileStateService) AcquireRefreshLock(_ context.Context) (func(), bool, error) {
	if !f.refreshMu.TryLock() {
		return nil, false, nil
	}
	if f.lock != nil {
		locked, err := f.lock.TryLock()
		if err != nil || !locked {
			f.refreshMu.Unlock()
			if err != nil {
				return nil, false, fmt.Errorf("failed to lock %s: %w", f.lock.Path(), err)
			}
			return nil, false, nil
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if f.lock != nil {
				if err := f.lock.Unlock(); err != nil {
					slog.Warn("Failed to release refresh lock file", "path", f.lock.Path(), "error", err)
				}
			}
			f.refreshMu.Unlock()
		})
	}, true, nil
}
