package domain

import "time"

// RunKind identifies what a history entry records.
type RunKind string

const (
	// RunFullSync is a full-sync cycle.
	RunFullSync RunKind = "full_sync"
	// RunDrain is a pass over the offline queue.
	RunDrain RunKind = "drain"
)

// RunOutcome is how a run ended.
type RunOutcome string

const (
	RunSuccess RunOutcome = "success"
	RunError   RunOutcome = "error"
	RunSkipped RunOutcome = "skipped"
)

// SyncRun represents the outcome of a cycle or drain execution.
type SyncRun struct {
	// Kind identifies which operation was run.
	Kind RunKind `json:"kind" yaml:"kind"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// EndedAt is when the run completed.
	EndedAt time.Time `json:"ended_at" yaml:"ended_at"`

	// Outcome is how the run ended.
	Outcome RunOutcome `json:"outcome" yaml:"outcome"`

	// Error contains the error message if the run failed or was skipped.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// ItemsProcessed is a count of items handled (records fetched or actions replayed).
	ItemsProcessed int `json:"items_processed" yaml:"items_processed"`
}

// Duration returns how long the run took.
func (r *SyncRun) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
