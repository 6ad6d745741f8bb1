package engine

// Reporter receives progress callbacks from a running convergence loop.
// Callbacks are invoked from the loop goroutine, never concurrently, and
// carry no contract beyond accurately reflecting outcomes: reporting is an
// output-only concern.
type Reporter interface {
	// RunStarted is invoked exactly once, before the first cycle, with the
	// run's identity (ID, root, start time) filled in.
	RunStarted(report RunReport)

	// CycleStarted is invoked before the cycle's scan begins.
	CycleStarted(cycle int)

	// EntryDispatched is invoked for each entry added to the cycle's
	// dispatch set, before the pool runs.
	EntryDispatched(entry Entry)

	// EntryExcluded is invoked for each scanned entry skipped by the
	// exclusion pattern.
	EntryExcluded(entry Entry)

	// EntryDone is invoked for each terminal task result as the cycle's
	// outcomes are folded in.
	EntryDone(result TaskResult)

	// CycleCompleted is invoked once the cycle's barrier has been crossed.
	CycleCompleted(report CycleReport)

	// RunCompleted is invoked exactly once, after the loop stops for any
	// reason.
	RunCompleted(report RunReport)
}

// NopReporter is a Reporter that ignores all callbacks.
type NopReporter struct{}

func (NopReporter) RunStarted(RunReport)       {}
func (NopReporter) CycleStarted(int)           {}
func (NopReporter) EntryDispatched(Entry)      {}
func (NopReporter) EntryExcluded(Entry)        {}
func (NopReporter) EntryDone(TaskResult)       {}
func (NopReporter) CycleCompleted(CycleReport) {}
func (NopReporter) RunCompleted(RunReport)     {}

// MultiReporter fans callbacks out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) RunStarted(report RunReport) {
	for _, r := range m {
		r.RunStarted(report)
	}
}

func (m MultiReporter) CycleStarted(cycle int) {
	for _, r := range m {
		r.CycleStarted(cycle)
	}
}

func (m MultiReporter) EntryDispatched(entry Entry) {
	for _, r := range m {
		r.EntryDispatched(entry)
	}
}

func (m MultiReporter) EntryExcluded(entry Entry) {
	for _, r := range m {
		r.EntryExcluded(entry)
	}
}

func (m MultiReporter) EntryDone(result TaskResult) {
	for _, r := range m {
		r.EntryDone(result)
	}
}

func (m MultiReporter) CycleCompleted(report CycleReport) {
	for _, r := range m {
		r.CycleCompleted(report)
	}
}

func (m MultiReporter) RunCompleted(report RunReport) {
	for _, r := range m {
		r.RunCompleted(report)
	}
}
