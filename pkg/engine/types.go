package engine

import (
	"context"
	"time"
)

// Default tuning parameters for the engine. The poll interval and timeout
// mirror the cadence the tool has always used: check existence ten times a
// second, give up on a single entry after ten minutes.
const (
	// DefaultSuffix is the naming convention that identifies a placeholder
	// entry on disk.
	DefaultSuffix = ".cloudf"

	// DefaultPollInterval is how often a waiter re-checks existence.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultRetryInterval is how often a waiter re-triggers materialization
	// while the entry still exists.
	DefaultRetryInterval = 2 * time.Second

	// DefaultTimeout is the total wait budget for a single entry.
	DefaultTimeout = 10 * time.Minute
)

// Entry is a placeholder entry discovered by a scan.
type Entry struct {
	// Path is the absolute path of the placeholder on disk.
	Path string `json:"path"`

	// Cycle is the scan cycle number that discovered this entry.
	// Cycle numbers are monotonically increasing and start at 1.
	Cycle int `json:"cycle"`
}

// TaskStatus is the execution status of an expansion task.
type TaskStatus string

const (
	// StatusPending indicates the task has not reached a terminal state.
	StatusPending TaskStatus = "pending"

	// StatusSucceeded indicates the entry's path stopped existing strictly
	// before the task's deadline.
	StatusSucceeded TaskStatus = "succeeded"

	// StatusTimedOut indicates the entry still existed when the wait budget
	// ran out. Timed-out entries are re-discovered and retried from scratch
	// by the next cycle's scan.
	StatusTimedOut TaskStatus = "timed_out"
)

// IsTerminal reports whether the status is a terminal state.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusTimedOut
}

// TaskResult is the terminal outcome of waiting on a single entry.
type TaskResult struct {
	// Entry is the placeholder entry this task waited on.
	Entry Entry `json:"entry"`

	// Status is the terminal status of the task.
	Status TaskStatus `json:"status"`

	// StartedAt is when the wait began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the task waited before reaching a terminal state.
	Duration time.Duration `json:"duration"`

	// Attempts is the number of materialization triggers issued.
	Attempts int `json:"attempts"`
}

// CycleReport summarizes one scan-dispatch-barrier cycle.
type CycleReport struct {
	// Cycle is the cycle number, starting at 1.
	Cycle int `json:"cycle"`

	// Scanned is the number of placeholder entries the scan found.
	Scanned int `json:"scanned"`

	// Excluded is the number of scanned entries skipped by the exclusion
	// pattern.
	Excluded int `json:"excluded"`

	// Results holds the terminal outcome of every dispatched entry, in no
	// particular order.
	Results []TaskResult `json:"results,omitempty"`
}

// Dispatched returns the number of entries dispatched in this cycle.
func (r CycleReport) Dispatched() int {
	return len(r.Results)
}

// RunReport is the aggregate outcome of a convergence run.
type RunReport struct {
	// ID is the unique identifier for this run.
	ID string `json:"id"`

	// Root is the absolute root directory the run converged over.
	Root string `json:"root"`

	// Cycles is the number of scan cycles performed, including the final
	// zero-dispatch cycle when the run converged.
	Cycles int `json:"cycles"`

	// Succeeded is the total number of entries that materialized.
	Succeeded int `json:"succeeded"`

	// TimedOut is the total number of per-entry timeouts across all cycles.
	// A single stuck entry times out once per cycle, so this can exceed the
	// number of distinct entries.
	TimedOut int `json:"timed_out"`

	// Converged reports whether the run reached a zero-dispatch cycle.
	Converged bool `json:"converged"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}

// Materializer is the capability that asks the underlying platform to begin
// replacing a placeholder with its real content. Implementations must be
// asynchronous (fire-and-forget), idempotent, and must treat a path that no
// longer exists as a no-op rather than an error.
type Materializer interface {
	Trigger(ctx context.Context, path string) error
}

// EntryWaiter waits on a single entry until it reaches a terminal state.
// Waiter is the production implementation.
type EntryWaiter interface {
	Wait(ctx context.Context, entry Entry) TaskResult
}
