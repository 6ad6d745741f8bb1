package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/piwi3910/hydrate/pkg/engine"
)

// Reporter adapts a Telemetry instance to the engine.Reporter interface so
// one wiring point feeds metrics, events, and spans. The engine invokes
// callbacks sequentially from the loop goroutine, so no locking is needed.
type Reporter struct {
	tel *Telemetry
	ctx context.Context

	runCtx     context.Context
	runSpan    trace.Span
	cycleCtx   context.Context
	cycleSpan  trace.Span
	cycleStart time.Time
}

// NewReporter creates a telemetry-backed engine reporter. The context is the
// parent for the run's trace spans.
func NewReporter(ctx context.Context, tel *Telemetry) *Reporter {
	return &Reporter{
		tel: tel,
		ctx: ctx,
	}
}

// RunStarted implements engine.Reporter. The run span is opened here so it
// carries the run's ID and root from the start.
func (r *Reporter) RunStarted(report engine.RunReport) {
	r.runCtx, r.runSpan = r.tel.Tracer.StartRunSpan(r.ctx, report.ID, report.Root)

	r.tel.Events.Publish(r.runCtx, Event{
		Type:    EventTypeRunStarted,
		RunID:   report.ID,
		Message: fmt.Sprintf("convergence run started over %s", report.Root),
		Level:   EventLevelInfo,
	})
}

// CycleStarted implements engine.Reporter.
func (r *Reporter) CycleStarted(cycle int) {
	parent := r.runCtx
	if parent == nil {
		parent = r.ctx
	}
	r.cycleCtx, r.cycleSpan = r.tel.Tracer.StartCycleSpan(parent, cycle)
	r.cycleStart = time.Now()

	r.tel.Events.Publish(r.cycleCtx, Event{
		Type:    EventTypeCycleStarted,
		Cycle:   cycle,
		Message: fmt.Sprintf("traversal cycle %d started", cycle),
		Level:   EventLevelInfo,
	})
}

// EntryDispatched implements engine.Reporter.
func (r *Reporter) EntryDispatched(entry engine.Entry) {
	r.tel.Metrics.RecordDispatch()
	r.tel.Events.Publish(r.cycleCtx, Event{
		Type:    EventTypeEntryDispatched,
		Cycle:   entry.Cycle,
		Path:    entry.Path,
		Message: "placeholder dispatched for materialization",
		Level:   EventLevelInfo,
	})
}

// EntryExcluded implements engine.Reporter.
func (r *Reporter) EntryExcluded(entry engine.Entry) {
	r.tel.Events.Publish(r.cycleCtx, Event{
		Type:    EventTypeEntryExcluded,
		Cycle:   entry.Cycle,
		Path:    entry.Path,
		Message: "placeholder excluded by pattern",
		Level:   EventLevelInfo,
	})
}

// EntryDone implements engine.Reporter.
func (r *Reporter) EntryDone(result engine.TaskResult) {
	r.tel.Metrics.RecordOutcome(string(result.Status), result.Duration, result.Attempts)

	eventType := EventTypeEntrySucceeded
	level := EventLevelInfo
	if result.Status == engine.StatusTimedOut {
		eventType = EventTypeEntryTimedOut
		level = EventLevelWarning
	}
	r.tel.Events.Publish(r.cycleCtx, Event{
		Type:    eventType,
		Cycle:   result.Entry.Cycle,
		Path:    result.Entry.Path,
		Message: fmt.Sprintf("wait finished after %s (%d triggers)", result.Duration, result.Attempts),
		Level:   level,
	})
}

// CycleCompleted implements engine.Reporter.
func (r *Reporter) CycleCompleted(report engine.CycleReport) {
	r.tel.Metrics.RecordCycle(report.Scanned, report.Excluded, time.Since(r.cycleStart))

	if r.cycleSpan != nil {
		r.cycleSpan.SetAttributes(
			AttrDispatched.Int(report.Dispatched()),
			AttrExcluded.Int(report.Excluded),
		)
		RecordSuccess(r.cycleSpan)
		r.cycleSpan.End()
		r.cycleSpan = nil
	}

	r.tel.Events.Publish(r.runCtx, Event{
		Type:    EventTypeCycleCompleted,
		Cycle:   report.Cycle,
		Message: fmt.Sprintf("cycle %d: %d dispatched, %d excluded", report.Cycle, report.Dispatched(), report.Excluded),
		Level:   EventLevelInfo,
	})
}

// RunCompleted implements engine.Reporter.
func (r *Reporter) RunCompleted(report engine.RunReport) {
	if r.runSpan != nil {
		RecordSuccess(r.runSpan)
		r.runSpan.End()
		r.runSpan = nil
	}

	level := EventLevelInfo
	if !report.Converged {
		level = EventLevelWarning
	}
	r.tel.Events.Publish(r.ctx, Event{
		Type:  EventTypeRunCompleted,
		RunID: report.ID,
		Message: fmt.Sprintf("run finished: %d cycles, %d succeeded, %d timed out, converged=%t",
			report.Cycles, report.Succeeded, report.TimedOut, report.Converged),
		Level: level,
	})
}
