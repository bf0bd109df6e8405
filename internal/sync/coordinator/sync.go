package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/stacklok/country-cache-server/internal/status"
	pkgsync "github.com/stacklok/country-cache-server/internal/sync"
)

const (
	unexpectedFailureMessage = "Unexpected failure during refresh"
	shutdownMessage          = "refresh cancelled by shutdown"
)

// worker executes queued jobs until ctx is cancelled
func (c *defaultCoordinator) worker(ctx context.Context, id int) {
	slog.Debug("Refresh worker started", "worker", id)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-c.jobs:
			c.execute(ctx, j)
		}
	}
}

// schedule triggers a refresh every interval; a busy gate skips the tick
func (c *defaultCoordinator) schedule(ctx context.Context) {
	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run, err := c.Trigger(ctx)
			switch {
			case errors.Is(err, ErrRefreshInProgress):
				slog.Debug("Scheduled refresh skipped, a run is already active")
			case err != nil:
				slog.Error("Scheduled refresh failed to start", "error", err)
			default:
				slog.Info("Scheduled refresh started", "run_id", run.ID)
			}
		}
	}
}

// execute performs one run and makes sure it ends in a terminal phase
func (c *defaultCoordinator) execute(ctx context.Context, j job) {
	run := j.run
	startTime := time.Now()

	// The deferred write records a failure if the run did not reach a terminal
	// phase on its own. It uses a context that survives shutdown.
	failure := unexpectedFailureMessage
	defer func() {
		if !run.Phase.IsTerminal() {
			c.failRun(context.WithoutCancel(ctx), run, failure)
		}
		c.clearActive(run.ID)
		j.release()
	}()

	runCtx, cancel := context.WithTimeout(ctx, c.config.RunTimeout)
	defer cancel()

	slog.Info("Starting refresh", "run_id", run.ID)

	reporter := pkgsync.ProgressFunc(func(ctx context.Context, r *status.RefreshStatus) error {
		return c.stateSvc.UpdateRun(ctx, r)
	})
	result, rerr := c.manager.PerformRefresh(runCtx, run, reporter)
	duration := time.Since(startTime)

	if rerr != nil {
		failure = rerr.Message
		slog.Error("Refresh failed",
			"run_id", run.ID,
			"stage", rerr.Stage,
			"kind", rerr.Kind,
			"error", rerr.Message)
		c.refreshMetrics.RecordRefreshDuration(ctx, duration, false)
		c.refreshMetrics.RecordRun(ctx, string(status.PhaseFailed))
		return
	}

	c.refreshMetrics.RecordRefreshDuration(ctx, duration, true)
	c.refreshMetrics.RecordRun(ctx, string(status.PhaseSuccess))
	c.recordCountryTotal(ctx)

	slog.Info("Refresh finished",
		"run_id", run.ID,
		"duration", duration,
		"total_countries", result.TotalCountries)
}

func (c *defaultCoordinator) recordCountryTotal(ctx context.Context) {
	if c.countryMetrics == nil || c.counter == nil {
		return
	}
	total, err := c.counter.CountCountries(ctx)
	if err != nil {
		slog.Warn("Failed to count countries for metrics", "error", err)
		return
	}
	c.countryMetrics.RecordCountriesTotal(ctx, total)
}

// failRun moves run to failed and persists it; errors are logged only
func (c *defaultCoordinator) failRun(ctx context.Context, run *status.RefreshStatus, message string) {
	run.Finish(status.PhaseFailed, message, c.now())
	if err := c.stateSvc.UpdateRun(ctx, run); err != nil {
		slog.Error("Error updating refresh status",
			"run_id", run.ID,
			"error", err)
	}
}

// drainQueue fails jobs that never reached a worker
func (c *defaultCoordinator) drainQueue(ctx context.Context) {
	for {
		select {
		case j := <-c.jobs:
			slog.Warn("Dropping queued refresh on shutdown", "run_id", j.run.ID)
			c.failRun(ctx, j.run, shutdownMessage)
			c.clearActive(j.run.ID)
			j.release()
		default:
			return
		}
	}
}
