package model

import "time"

// RunState is a step of the run state machine.
type RunState string

// Run states in the order a successful run visits them.
const (
	StateIdle            RunState = "idle"
	StateLoadIdentifiers RunState = "load_identifiers"
	StateFetching        RunState = "fetching"
	StateAggregating     RunState = "aggregating"
	StateReporting       RunState = "reporting"
	StateCleanup         RunState = "cleanup"
	StateDone            RunState = "done"
	StateFailed          RunState = "failed"
)

// ErrorKind classifies a recorded failure.
type ErrorKind string

// Failure kinds.
const (
	KindLookupFailure     ErrorKind = "lookup_failure"
	KindSourceUnavailable ErrorKind = "source_unavailable"
)

// Failure records one problem seen during a run.
type Failure struct {
	Identifier Identifier `json:"identifier,omitempty"`
	Kind       ErrorKind  `json:"kind"`
	Message    string     `json:"message"`
}

// RunOutcome is the summary of one run handed to reporters.
type RunOutcome struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// States lists every state the run entered, in order.
	States []RunState `json:"states"`

	Identifiers int          `json:"identifiers"`
	Successes   int          `json:"successes"`
	NotFound    []Identifier `json:"not_found"`
	Failures    []Failure    `json:"failures"`
	AlertGroups []AlertGroup `json:"alert_groups"`
}

// State returns the last state the run entered.
func (o *RunOutcome) State() RunState {
	if o == nil || len(o.States) == 0 {
		return StateIdle
	}
	return o.States[len(o.States)-1]
}

// Enter appends s to the visited states.
func (o *RunOutcome) Enter(s RunState) {
	o.States = append(o.States, s)
}

// Visited reports whether the run entered state s.
func (o *RunOutcome) Visited(s RunState) bool {
	if o == nil {
		return false
	}
	for _, v := range o.States {
		if v == s {
			return true
		}
	}
	return false
}

// Failed reports whether the run could not load its identifiers.
func (o *RunOutcome) Failed() bool { return o.Visited(StateFailed) }

// Reported reports whether the outcome was handed to reporters.
func (o *RunOutcome) Reported() bool { return o.Visited(StateReporting) }

// NothingToReport is true for a run that finished without any alert group.
func (o *RunOutcome) NothingToReport() bool {
	return o != nil && !o.Failed() && len(o.AlertGroups) == 0
}

// AlertCount returns the number of alert entries across all groups.
func (o *RunOutcome) AlertCount() int {
	n := 0
	for _, g := range o.AlertGroups {
		n += len(g.Entries)
	}
	return n
}

// Duration returns how long the run took.
func (o *RunOutcome) Duration() time.Duration {
	if o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}
