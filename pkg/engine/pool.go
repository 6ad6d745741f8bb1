package engine

import (
	"context"
	"runtime"
	"sync"
)

// Pool executes one waiter per entry for a cycle's dispatch set, running at
// most a configured number of waits concurrently and queuing the remainder.
// Workers are interchangeable and stateless between tasks.
type Pool struct {
	workers int
	waiter  EntryWaiter
}

// NewPool creates a pool backed by the given waiter. A non-positive worker
// count defaults to the number of available processing units.
func NewPool(workers int, waiter EntryWaiter) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		workers: workers,
		waiter:  waiter,
	}
}

// Workers returns the effective concurrency limit.
func (p *Pool) Workers() int {
	return p.workers
}

// Run waits on every entry in the batch and returns a terminal result for
// each one. It returns only once the whole batch is terminal (barrier
// semantics): cycle N+1's scan must observe a filesystem state consistent
// with cycle N's completed work. Result order is unspecified.
func (p *Pool) Run(ctx context.Context, entries []Entry) []TaskResult {
	if len(entries) == 0 {
		return nil
	}

	workers := p.workers
	if len(entries) < workers {
		workers = len(entries)
	}

	queue := make(chan Entry, len(entries))
	for _, e := range entries {
		queue <- e
	}
	close(queue)

	results := make(chan TaskResult, len(entries))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range queue {
				// Wait is cancellation-aware and always returns a terminal
				// result, so the barrier holds even on a cancelled context.
				results <- p.waiter.Wait(ctx, entry)
			}
		}()
	}

	wg.Wait()
	close(results)

	collected := make([]TaskResult, 0, len(entries))
	for r := range results {
		collected = append(collected, r)
	}
	return collected
}
