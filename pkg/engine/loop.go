package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LoopConfig tunes the convergence loop.
type LoopConfig struct {
	// Reporter receives progress callbacks. Nil selects NopReporter.
	Reporter Reporter

	// MaxCycles bounds the number of scan cycles. Zero means unbounded, the
	// default: the loop normally stops only on a zero-dispatch cycle, so an
	// entry that can never materialize and is not excluded keeps the run
	// cycling until the operator intervenes. A run halted by MaxCycles
	// reports Converged=false.
	MaxCycles int
}

// Loop orchestrates convergence cycles: scan the tree, filter out excluded
// entries, dispatch the rest through the pool, wait for the cycle barrier,
// and repeat until a cycle dispatches zero tasks.
type Loop struct {
	scanner  *Scanner
	filter   *Filter
	pool     *Pool
	reporter Reporter
	cfg      LoopConfig
}

// NewLoop wires a convergence loop from its parts.
func NewLoop(scanner *Scanner, filter *Filter, pool *Pool, cfg LoopConfig) *Loop {
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Loop{
		scanner:  scanner,
		filter:   filter,
		pool:     pool,
		reporter: reporter,
		cfg:      cfg,
	}
}

// Run executes cycles until convergence, cancellation, or the MaxCycles
// bound. It always returns a report covering the cycles that did run; the
// error is non-nil only for cancellation. Per-entry timeouts never abort
// the run.
func (l *Loop) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		ID:        uuid.New().String(),
		Root:      l.scanner.Root(),
		StartedAt: time.Now(),
	}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
		l.reporter.RunCompleted(*report)
	}()

	l.reporter.RunStarted(*report)
	log.Info().Str("run_id", report.ID).Str("root", report.Root).
		Int("workers", l.pool.Workers()).Msg("starting convergence run")

	for cycle := 1; ; cycle++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if l.cfg.MaxCycles > 0 && cycle > l.cfg.MaxCycles {
			log.Warn().Int("max_cycles", l.cfg.MaxCycles).Msg("cycle bound reached before convergence")
			return report, nil
		}

		report.Cycles = cycle
		l.reporter.CycleStarted(cycle)

		entries, err := l.scanner.Scan(ctx, cycle)
		if err != nil {
			return report, err
		}

		cr := CycleReport{
			Cycle:   cycle,
			Scanned: len(entries),
		}

		dispatch := make([]Entry, 0, len(entries))
		for _, entry := range entries {
			if l.filter.Excluded(entry.Path) {
				cr.Excluded++
				l.reporter.EntryExcluded(entry)
				continue
			}
			dispatch = append(dispatch, entry)
			l.reporter.EntryDispatched(entry)
		}

		if len(dispatch) == 0 {
			// Fixpoint: a full scan found nothing left to do.
			report.Converged = true
			l.reporter.CycleCompleted(cr)
			log.Info().Int("cycles", cycle).Int("succeeded", report.Succeeded).
				Int("timed_out", report.TimedOut).Msg("converged")
			return report, nil
		}

		cr.Results = l.pool.Run(ctx, dispatch)
		for _, result := range cr.Results {
			switch result.Status {
			case StatusSucceeded:
				report.Succeeded++
			case StatusTimedOut:
				report.TimedOut++
			}
			l.reporter.EntryDone(result)
		}
		l.reporter.CycleCompleted(cr)

		log.Info().Int("cycle", cycle).Int("dispatched", cr.Dispatched()).
			Int("excluded", cr.Excluded).Int("timed_out", report.TimedOut).
			Msg("cycle completed")
	}
}
