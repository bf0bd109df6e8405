// Package sync implements one country refresh run.
//
// A run fetches the country registry and an exchange-rate table, reconciles the
// fetched entries against the stored countries in fixed-size chunks, and writes
// each chunk through a writer.CountryWriter before moving on.
//
// # Phases
//
// The Manager reports progress through a ProgressReporter after every stage:
//
//	in_progress -> fetched_countries -> fetched_rates -> processing -> success
//
// A failed stage returns an *Error and leaves the run in its last reported
// phase. Recording the failed phase is left to the caller, which is the
// coordinator in normal operation. Chunks committed before a failure stay
// written.
//
// # Reconciliation
//
// Countries are matched by their trimmed, lower-cased name. A known name is
// updated in place and keeps its stored spelling; an unknown name is inserted.
// When a name repeats within one fetch, the last entry wins.
//
// Estimated GDP is population * multiplier / rate, rounded to two places, and is
// left empty when the currency has no positive rate. The multiplier comes from
// a GDPEstimator, either drawn at random per country or fixed by configuration.
//
// # Summary
//
// After success is recorded the optional SummaryPublisher renders the summary
// artifact. A publishing error is logged and counted but never fails the run.
//
// The sync/coordinator subpackage schedules runs and guards against overlapping
// ones; sync/state persists run records; sync/writer persists countries.
package sync
