package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// WaiterConfig tunes the per-entry wait/retry state machine.
type WaiterConfig struct {
	// PollInterval is how often existence is re-checked. Zero selects
	// DefaultPollInterval.
	PollInterval time.Duration

	// RetryInterval is how often the Materializer is re-invoked while the
	// entry still exists. Zero selects DefaultRetryInterval. Values below
	// PollInterval are clamped to PollInterval.
	RetryInterval time.Duration

	// Timeout is the total wait budget for one entry. Zero selects
	// DefaultTimeout.
	Timeout time.Duration
}

func (c WaiterConfig) withDefaults() WaiterConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.RetryInterval < c.PollInterval {
		c.RetryInterval = c.PollInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Waiter owns the wait/retry state machine for a single entry: trigger
// materialization, poll for the path to disappear, re-trigger periodically,
// and terminate as Succeeded or TimedOut within the configured budget.
//
// Materialization requests are not guaranteed to be observed by the platform
// on the first attempt, and no success signal exists beyond the path itself
// disappearing, so periodic re-triggering is the only recovery mechanism.
//
// First-tick policy: the Materializer is invoked once on entry to the
// waiting state, and again only once a full RetryInterval has elapsed since
// the previous trigger. The first poll tick never re-triggers.
type Waiter struct {
	cfg     WaiterConfig
	mat     Materializer
	watcher *VanishWatcher
}

// NewWaiter creates a waiter that triggers materialization through mat.
func NewWaiter(cfg WaiterConfig, mat Materializer) *Waiter {
	return &Waiter{
		cfg: cfg.withDefaults(),
		mat: mat,
	}
}

// WithWatcher attaches a VanishWatcher so the waiter can re-check existence
// as soon as a removal event arrives instead of waiting for the next poll
// tick. Polling remains the source of truth; the watcher only wakes the
// waiter early.
func (w *Waiter) WithWatcher(vw *VanishWatcher) *Waiter {
	w.watcher = vw
	return w
}

// Wait blocks until the entry reaches a terminal state and returns its
// result. Cancelling the context ends the wait early; the entry is reported
// as TimedOut and will be retried by a later cycle if the run continues.
func (w *Waiter) Wait(ctx context.Context, entry Entry) TaskResult {
	res := TaskResult{
		Entry:     entry,
		Status:    StatusPending,
		StartedAt: time.Now(),
	}
	deadline := res.StartedAt.Add(w.cfg.Timeout)

	var vanish <-chan struct{}
	if w.watcher != nil {
		if ch, cancel := w.watcher.Subscribe(entry.Path); ch != nil {
			vanish = ch
			defer cancel()
		}
	}

	// The entry may have materialized between the scan and this task
	// starting. Triggering a path that is already gone would violate the
	// Materializer idempotence contract for no benefit.
	if !pathExists(entry.Path) {
		return res.finish(StatusSucceeded)
	}

	w.trigger(ctx, entry.Path, &res)
	lastTrigger := time.Now()

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return res.finish(StatusTimedOut)
		case <-vanish:
		case <-ticker.C:
		}

		if !pathExists(entry.Path) {
			return res.finish(StatusSucceeded)
		}

		now := time.Now()
		if !now.Before(deadline) {
			return res.finish(StatusTimedOut)
		}

		if now.Sub(lastTrigger) >= w.cfg.RetryInterval {
			w.trigger(ctx, entry.Path, &res)
			lastTrigger = now
		}
	}
}

// trigger invokes the Materializer once. A trigger that fails because the
// path vanished between the existence check and the call is a transient
// race, not a fault: the next existence check resolves the task as
// Succeeded. Other trigger errors are logged and left to the next poll tick.
func (w *Waiter) trigger(ctx context.Context, path string, res *TaskResult) {
	res.Attempts++
	if err := w.mat.Trigger(ctx, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Debug().Err(err).Str("path", path).Int("attempt", res.Attempts).
			Msg("materialization trigger failed")
	}
}

func (r TaskResult) finish(status TaskStatus) TaskResult {
	r.Status = status
	r.Duration = time.Since(r.StartedAt)
	return r
}

// pathExists reports whether any filesystem object still exists at path.
// Only a definite not-exist counts as materialized; transient stat errors
// keep the waiter waiting.
func pathExists(path string) bool {
	_, err := os.Lstat(path)
	if err == nil {
		return true
	}
	return !errors.Is(err, fs.ErrNotExist)
}
