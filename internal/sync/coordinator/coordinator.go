package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/country-cache-server/internal/status"
	pkgsync "github.com/stacklok/country-cache-server/internal/sync"
	"github.com/stacklok/country-cache-server/internal/sync/state"
	"github.com/stacklok/country-cache-server/internal/telemetry"
)

var (
	// ErrRefreshInProgress is returned by Trigger while another run is queued or executing
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrQueueFull is returned when the job queue has no free slot
	ErrQueueFull = errors.New("refresh queue is full")
)

// InProgressError reports the run that blocked a trigger.
// RunID is uuid.Nil when the holder is another process whose run could not be identified.
type InProgressError struct {
	RunID uuid.UUID
}

func (e *InProgressError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRefreshInProgress, e.RunID)
}

func (*InProgressError) Unwrap() error {
	return ErrRefreshInProgress
}

// Coordinator accepts refresh triggers and executes them on a bounded worker pool
//
//go:generate mockgen -destination=mocks/mock_coordinator.go -package=mocks github.com/stacklok/country-cache-server/internal/sync/coordinator Coordinator
type Coordinator interface {
	// Start runs the workers and the optional schedule.
	// Blocks until the context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop cancels running work and waits for the workers to return
	Stop() error

	// Trigger records a new run and queues it. It returns immediately with the
	// run record, or with an *InProgressError if a run is already active.
	Trigger(ctx context.Context) (*status.RefreshStatus, error)

	// QueueDepth returns the number of jobs waiting for a worker
	QueueDepth() int
}

// CountryCounter reports the number of stored countries after a run
type CountryCounter interface {
	CountCountries(ctx context.Context) (int64, error)
}

type job struct {
	run     *status.RefreshStatus
	release func()
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	manager  pkgsync.Manager
	stateSvc state.RefreshStateService
	config   Config
	now      func() time.Time

	jobs chan job

	// gateMu guards active, the run currently queued or executing
	gateMu gosync.Mutex
	active *uuid.UUID

	// initMu guards initialized, set once interrupted runs are recovered
	initMu      gosync.Mutex
	initialized bool

	lifeMu     gosync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}

	// Metrics
	refreshMetrics *telemetry.RefreshMetrics
	countryMetrics *telemetry.CountryMetrics
	counter        CountryCounter
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithRefreshMetrics sets the refresh metrics for the coordinator
func WithRefreshMetrics(metrics *telemetry.RefreshMetrics) Option {
	return func(c *defaultCoordinator) {
		c.refreshMetrics = metrics
	}
}

// WithCountryMetrics records the stored country count after each successful run
func WithCountryMetrics(metrics *telemetry.CountryMetrics, counter CountryCounter) Option {
	return func(c *defaultCoordinator) {
		c.countryMetrics = metrics
		c.counter = counter
	}
}

// WithClock overrides the time source used for run timestamps
func WithClock(now func() time.Time) Option {
	return func(c *defaultCoordinator) {
		c.now = now
	}
}

// New creates a new coordinator with injected dependencies
func New(
	manager pkgsync.Manager,
	stateSvc state.RefreshStateService,
	cfg Config,
	opts ...Option,
) Coordinator {
	cfg = cfg.withDefaults()
	c := &defaultCoordinator{
		manager:  manager,
		stateSvc: stateSvc,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
		jobs:     make(chan job, cfg.QueueSize),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins executing queued refresh jobs
func (c *defaultCoordinator) Start(ctx context.Context) error {
	c.lifeMu.Lock()
	if c.cancelFunc != nil {
		c.lifeMu.Unlock()
		return fmt.Errorf("coordinator already started")
	}
	coordCtx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel
	c.lifeMu.Unlock()

	defer func() {
		cancel()
		c.drainQueue(context.WithoutCancel(ctx))
		close(c.done)
		slog.Info("Refresh coordinator shutting down")
	}()

	if err := c.ensureInitialized(coordCtx); err != nil {
		return err
	}

	unregister, err := c.refreshMetrics.ObserveQueueDepth(c.QueueDepth)
	if err != nil {
		slog.Warn("Failed to register queue depth gauge", "error", err)
	} else {
		defer func() { _ = unregister() }()
	}

	slog.Info("Starting refresh coordinator",
		"workers", c.config.Workers,
		"queue_size", c.config.QueueSize,
		"interval", c.config.Interval,
		"run_timeout", c.config.RunTimeout)

	g, gctx := errgroup.WithContext(coordCtx)
	for i := range c.config.Workers {
		g.Go(func() error {
			c.worker(gctx, i)
			return nil
		})
	}
	if c.config.Interval > 0 {
		g.Go(func() error {
			c.schedule(gctx)
			return nil
		})
	}

	return g.Wait()
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.lifeMu.Lock()
	cancel := c.cancelFunc
	c.lifeMu.Unlock()

	if cancel == nil {
		return nil
	}
	slog.Info("Stopping refresh coordinator")
	cancel()
	<-c.done
	return nil
}

// QueueDepth returns the number of jobs waiting for a worker
func (c *defaultCoordinator) QueueDepth() int {
	return len(c.jobs)
}

// Trigger creates a run record and enqueues it.
//
// The in-process gate and the state service lock are both taken before the run
// is recorded, so at most one run is ever queued or executing.
func (c *defaultCoordinator) Trigger(ctx context.Context) (*status.RefreshStatus, error) {
	c.gateMu.Lock()
	defer c.gateMu.Unlock()

	if c.active != nil {
		return nil, &InProgressError{RunID: *c.active}
	}

	// a trigger may arrive before Start; recovery must never see runs created here
	if err := c.ensureInitialized(ctx); err != nil {
		return nil, err
	}

	release, acquired, err := c.stateSvc.AcquireRefreshLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire refresh lock: %w", err)
	}
	if !acquired {
		return nil, &InProgressError{RunID: c.activeElsewhere(ctx)}
	}

	run, err := c.stateSvc.CreateRun(ctx, c.now())
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to create refresh run: %w", err)
	}

	select {
	case c.jobs <- job{run: run, release: release}:
	default:
		c.failRun(context.WithoutCancel(ctx), run, ErrQueueFull.Error())
		release()
		return nil, ErrQueueFull
	}

	id := run.ID
	c.active = &id
	slog.Info("Refresh queued", "run_id", run.ID, "queue_depth", c.QueueDepth())
	return run.Clone(), nil
}

// ensureInitialized recovers interrupted runs exactly once, before the first run is created
func (c *defaultCoordinator) ensureInitialized(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.initialized {
		return nil
	}
	if err := c.stateSvc.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize refresh state: %w", err)
	}
	c.initialized = true
	return nil
}

// activeElsewhere looks up the newest unfinished run, which belongs to the lock holder
func (c *defaultCoordinator) activeElsewhere(ctx context.Context) uuid.UUID {
	runs, err := c.stateSvc.ListRuns(ctx, 1)
	if err != nil || len(runs) == 0 || runs[0].Phase.IsTerminal() {
		return uuid.Nil
	}
	return runs[0].ID
}

func (c *defaultCoordinator) clearActive(id uuid.UUID) {
	c.gateMu.Lock()
	defer c.gateMu.Unlock()
	if c.active != nil && *c.active == id {
		c.active = nil
	}
}
