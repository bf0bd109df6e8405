package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/country-cache-server/internal/db/pgtypes"
	"github.com/stacklok/country-cache-server/internal/db/sqlc"
	"github.com/stacklok/country-cache-server/internal/status"
)

// RefreshLockKey is the pg advisory lock key guarding refresh runs across processes
const RefreshLockKey int64 = 0x636f756e747279

type dbStateService struct {
	pool *pgxpool.Pool
}

// NewDBStateService creates a new database-backed refresh state service
func NewDBStateService(pool *pgxpool.Pool) RefreshStateService {
	return &dbStateService{
		pool: pool,
	}
}

func (d *dbStateService) Initialize(ctx context.Context) error {
	// Unfinished runs only count as interrupted when nobody holds the refresh lock
	release, acquired, err := d.AcquireRefreshLock(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		slog.Info("Refresh lock is held elsewhere, skipping interrupted run recovery")
		return nil
	}
	defer release()

	message := status.InterruptedMessage
	affected, err := sqlc.New(d.pool).FailInterruptedRuns(ctx, sqlc.FailInterruptedRunsParams{
		Message:    &message,
		FinishedAt: pgtypes.Timestamptz(time.Now().UTC()),
	})
	if err != nil {
		return fmt.Errorf("failed to recover interrupted runs: %w", err)
	}
	if affected > 0 {
		slog.Warn("Marked interrupted refresh runs as failed", "count", affected)
	}
	return nil
}

func (d *dbStateService) CreateRun(ctx context.Context, startedAt time.Time) (*status.RefreshStatus, error) {
	run := newRun(startedAt)
	if err := sqlc.New(d.pool).UpsertRefreshRun(ctx, toUpsertParams(run)); err != nil {
		return nil, fmt.Errorf("failed to insert refresh run: %w", err)
	}
	return run, nil
}

func (d *dbStateService) UpdateRun(ctx context.Context, run *status.RefreshStatus) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Warn("Failed to roll back transaction", "error", err)
		}
	}()

	queries := sqlc.New(d.pool).WithTx(tx)
	current, err := queries.GetRefreshRun(ctx, pgtypes.UUID(run.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRunNotFound
		}
		return fmt.Errorf("failed to load refresh run %s: %w", run.ID, err)
	}

	from := status.Phase(current.Phase)
	if !status.CanTransition(from, run.Phase) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, run.Phase)
	}

	if err := queries.UpsertRefreshRun(ctx, toUpsertParams(run)); err != nil {
		return fmt.Errorf("failed to update refresh run %s: %w", run.ID, err)
	}
	return tx.Commit(ctx)
}

func (d *dbStateService) GetRun(ctx context.Context, id uuid.UUID) (*status.RefreshStatus, error) {
	row, err := sqlc.New(d.pool).GetRefreshRun(ctx, pgtypes.UUID(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to load refresh run %s: %w", id, err)
	}
	return fromRow(row), nil
}

func (d *dbStateService) ListRuns(ctx context.Context, limit int) ([]*status.RefreshStatus, error) {
	rows, err := sqlc.New(d.pool).ListRefreshRuns(ctx, int64(NormalizeLimit(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh runs: %w", err)
	}

	result := make([]*status.RefreshStatus, 0, len(rows))
	for _, row := range rows {
		result = append(result, fromRow(row))
	}
	return result, nil
}

func (d *dbStateService) LastRefreshedAt(ctx context.Context) (*time.Time, error) {
	ts, err := sqlc.New(d.pool).GetLastRefreshedAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read last refresh time: %w", err)
	}
	return pgtypes.TimePtr(ts), nil
}

// AcquireRefreshLock takes a session-level advisory lock on a dedicated connection.
// The connection is held until release is called.
func (d *dbStateService) AcquireRefreshLock(ctx context.Context) (func(), bool, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection for refresh lock: %w", err)
	}

	queries := sqlc.New(conn)
	acquired, err := queries.TryAdvisoryLock(ctx, RefreshLockKey)
	if err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("failed to take refresh lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// the run context may already be cancelled
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := queries.AdvisoryUnlock(unlockCtx, RefreshLockKey); err != nil {
				slog.Warn("Failed to release refresh lock, dropping connection", "error", err)
				_ = conn.Conn().Close(unlockCtx)
			}
			conn.Release()
		})
	}
	return release, true, nil
}

func toUpsertParams(run *status.RefreshStatus) sqlc.UpsertRefreshRunParams {
	return sqlc.UpsertRefreshRunParams{
		ID:              pgtypes.UUID(run.ID),
		Phase:           string(run.Phase),
		Message:         pgtypes.StringPtr(run.Message),
		TotalCountries:  int32(run.TotalCountries), //nolint:gosec // country counts are small
		StartedAt:       pgtypes.Timestamptz(run.StartedAt),
		LastRefreshedAt: pgtypes.Timestamptz(run.LastRefreshedAt),
		FinishedAt:      pgtypes.TimestamptzPtr(run.FinishedAt),
		RatesSource:     pgtypes.StringPtr(string(run.RatesSource)),
		Inserted:        int32(run.Inserted), //nolint:gosec
		Updated:         int32(run.Updated),  //nolint:gosec
		Skipped:         int32(run.Skipped),  //nolint:gosec
	}
}

func fromRow(row sqlc.RefreshRun) *status.RefreshStatus {
	run := &status.RefreshStatus{
		ID:             uuid.UUID(row.ID.Bytes),
		Phase:          status.Phase(row.Phase),
		Message:        pgtypes.StringValue(row.Message),
		TotalCountries: int(row.TotalCountries),
		FinishedAt:     pgtypes.TimePtr(row.FinishedAt),
		RatesSource:    status.RatesSource(pgtypes.StringValue(row.RatesSource)),
		Inserted:       int(row.Inserted),
		Updated:        int(row.Updated),
		Skipped:        int(row.Skipped),
	}
	if t := pgtypes.TimePtr(row.StartedAt); t != nil {
		run.StartedAt = *t
	}
	if t := pgtypes.TimePtr(row.LastRefreshedAt); t != nil {
		run.LastRefreshedAt = *t
	}
	return run
}
