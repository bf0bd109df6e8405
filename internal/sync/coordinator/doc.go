// Package coordinator schedules and executes refresh runs.
//
// It sits on top of sync.Manager and handles:
//
//   - accepting manual triggers and rejecting overlapping ones
//   - a bounded job queue consumed by a fixed worker pool
//   - an optional periodic trigger
//   - run timeouts and graceful shutdown
//
// # Single flight
//
// Trigger holds an in-process gate while it takes the state service's refresh
// lock, creates the run record and enqueues the job. Until that run reaches a
// terminal phase every further Trigger returns an *InProgressError carrying
// the active run id. With database storage the lock is a PostgreSQL advisory
// lock, so replicas sharing a database exclude each other as well.
//
// # Usage Example
//
//	coord := coordinator.New(manager, stateSvc, coordinator.NewConfig(&cfg.Refresh))
//	go func() { _ = coord.Start(ctx) }()
//
//	run, err := coord.Trigger(ctx)
//
//	// on shutdown
//	_ = coord.Stop()
//
// Jobs still queued at shutdown are marked failed.
package coordinator
