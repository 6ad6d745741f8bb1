// Package engine implements the fixpoint convergence engine at the core of
// hydrate: repeatedly scan a directory tree for placeholder entries, trigger
// materialization for each one through a pluggable Materializer, and wait
// (bounded by a timeout) for the placeholder to disappear from disk.
//
// Materializing one placeholder can reveal new placeholders nested beneath
// it, so a single pass is never enough. The engine iterates full
// scan-dispatch-barrier cycles until a cycle dispatches zero tasks, which is
// the fixpoint.
//
// # Components
//
// The engine is composed of five parts, wired together by the Loop:
//
//  1. Scanner - walks the tree and produces the placeholder entries
//     currently present, freshly computed every cycle.
//  2. Filter - a compiled exclusion pattern applied to absolute paths;
//     matching entries are permanently skipped.
//  3. Waiter - the per-entry wait/retry state machine: poll for existence,
//     periodically re-trigger materialization, give up at the timeout.
//  4. Pool - runs waiters concurrently up to a worker limit and collects
//     every terminal result before returning (barrier semantics).
//  5. Loop - orchestrates cycles and decides convergence.
//
// # Usage
//
//	scanner, err := engine.NewScanner(root, engine.DefaultSuffix)
//	if err != nil {
//	    return err
//	}
//	filter, err := engine.NewFilter(excludePattern)
//	if err != nil {
//	    return err
//	}
//	waiter := engine.NewWaiter(engine.WaiterConfig{}, mat)
//	pool := engine.NewPool(0, waiter) // 0 = one worker per CPU
//	loop := engine.NewLoop(scanner, filter, pool, engine.LoopConfig{})
//
//	report, err := loop.Run(ctx)
//
// Per-entry timeouts are reportable outcomes, never fatal: a timed-out entry
// is still on disk, so the next cycle's scan re-discovers it and it is
// retried from scratch. Only startup configuration errors (missing root
// directory, unparsable exclusion pattern) abort a run.
package engine
