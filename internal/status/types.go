package status

import (
	"time"

	"github.com/google/uuid"
)

// Phase represents the current phase of a refresh run
type Phase string

const (
	// PhaseInProgress means the run was accepted and has not fetched anything yet
	PhaseInProgress Phase = "in_progress"

	// PhaseFetchedCountries means the country registry answered
	PhaseFetchedCountries Phase = "fetched_countries"

	// PhaseFetchedRates means a rate table is available (possibly the fallback)
	PhaseFetchedRates Phase = "fetched_rates"

	// PhaseProcessing means reconciliation and persistence are running
	PhaseProcessing Phase = "processing"

	// PhaseSuccess means the run completed
	PhaseSuccess Phase = "success"

	// PhaseFailed means the run aborted
	PhaseFailed Phase = "failed"
)

// RatesSource reports which provider supplied the exchange rates of a run
type RatesSource string

const (
	RatesSourcePrimary   RatesSource = "primary"
	RatesSourceSecondary RatesSource = "secondary"
	RatesSourceFallback  RatesSource = "fallback"
)

// InterruptedMessage is recorded on runs that were left unfinished by a previous process
const InterruptedMessage = "refresh interrupted"

// RefreshStatus is the record of one refresh run
type RefreshStatus struct {
	// ID identifies the run
	ID uuid.UUID `json:"id"`

	// Phase is the current phase of the run
	Phase Phase `json:"phase"`

	// Message carries the failure reason or a short progress note
	Message string `json:"message,omitempty"`

	// TotalCountries is the number of countries fetched upstream while the run is
	// in progress, and the number of stored countries once it succeeds
	TotalCountries int `json:"total_countries"`

	// StartedAt is when the run was accepted
	StartedAt time.Time `json:"started_at"`

	// LastRefreshedAt is the timestamp stamped onto every country written by this run
	LastRefreshedAt time.Time `json:"last_refreshed_at"`

	// FinishedAt is set once the run reaches a terminal phase
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	RatesSource RatesSource `json:"rates_source,omitempty"`
	Inserted    int         `json:"inserted"`
	Updated     int         `json:"updated"`
	Skipped     int         `json:"skipped"`
}

// IsTerminal reports whether the phase can no longer change
func (p Phase) IsTerminal() bool {
	return p == PhaseSuccess || p == PhaseFailed
}

// Valid reports whether p is a known phase
func (p Phase) Valid() bool {
	_, ok := phaseOrder[p]
	return ok || p == PhaseFailed
}

var phaseOrder = map[Phase]int{
	PhaseInProgress:       0,
	PhaseFetchedCountries: 1,
	PhaseFetchedRates:     2,
	PhaseProcessing:       3,
	PhaseSuccess:          4,
}

// CanTransition reports whether a run may move from one phase to another.
// Phases only move forward one step at a time; any non-terminal phase may fail.
// Staying in the same non-terminal phase is allowed so progress can be recorded.
func CanTransition(from, to Phase) bool {
	if from.IsTerminal() {
		return false
	}
	if to == PhaseFailed {
		return true
	}
	if from == to {
		return true
	}
	fromIdx, ok := phaseOrder[from]
	if !ok {
		return false
	}
	toIdx, ok := phaseOrder[to]
	if !ok {
		return false
	}
	return toIdx == fromIdx+1
}

// Finish moves the run into a terminal phase and stamps FinishedAt
func (s *RefreshStatus) Finish(phase Phase, message string, at time.Time) {
	s.Phase = phase
	s.Message = message
	s.FinishedAt = &at
}

// Clone returns a deep copy of the record
func (s *RefreshStatus) Clone() *RefreshStatus {
	if s == nil {
		return nil
	}
	c := *s
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
