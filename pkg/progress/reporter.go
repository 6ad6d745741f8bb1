package progress

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/piwi3910/hydrate/pkg/engine"
)

// ConsoleReporter implements engine.Reporter for interactive use: one bar
// per cycle over its dispatch set, status lines for exclusions and timeouts,
// and a final run summary. Callbacks arrive sequentially from the loop
// goroutine.
type ConsoleReporter struct {
	log zerolog.Logger
	bar *Bar
}

// NewConsoleReporter creates a console reporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		log: log.With().Str("component", "progress").Logger(),
	}
}

// RunStarted implements engine.Reporter.
func (c *ConsoleReporter) RunStarted(report engine.RunReport) {
	c.log.Info().Str("root", report.Root).Msg("expanding placeholders")
}

// CycleStarted implements engine.Reporter.
func (c *ConsoleReporter) CycleStarted(cycle int) {
	c.log.Info().Int("cycle", cycle).Msg("traversing")
	c.bar = NewBar(0, fmt.Sprintf("cycle %d", cycle))
}

// EntryDispatched implements engine.Reporter.
func (c *ConsoleReporter) EntryDispatched(entry engine.Entry) {
	c.log.Debug().Str("path", entry.Path).Msg("expand")
	c.bar.SetTotal(c.bar.GetMax() + 1)
}

// EntryExcluded implements engine.Reporter.
func (c *ConsoleReporter) EntryExcluded(entry engine.Entry) {
	c.log.Info().Str("path", entry.Path).Msg("excluded")
}

// EntryDone implements engine.Reporter.
func (c *ConsoleReporter) EntryDone(result engine.TaskResult) {
	c.bar.Increment()
	if result.Status == engine.StatusTimedOut {
		c.log.Warn().Str("path", result.Entry.Path).
			Dur("waited", result.Duration).Int("triggers", result.Attempts).
			Msg("timed out, will retry next cycle")
	}
}

// CycleCompleted implements engine.Reporter.
func (c *ConsoleReporter) CycleCompleted(report engine.CycleReport) {
	if c.bar != nil {
		_ = c.bar.Finish()
		c.bar = nil
	}

	succeeded := 0
	timedOut := 0
	for _, r := range report.Results {
		switch r.Status {
		case engine.StatusSucceeded:
			succeeded++
		case engine.StatusTimedOut:
			timedOut++
		}
	}
	c.log.Info().Int("cycle", report.Cycle).
		Int("dispatched", report.Dispatched()).
		Int("succeeded", succeeded).
		Int("timed_out", timedOut).
		Int("excluded", report.Excluded).
		Msg("cycle finished")
}

// RunCompleted implements engine.Reporter.
func (c *ConsoleReporter) RunCompleted(report engine.RunReport) {
	evt := c.log.Info()
	if !report.Converged {
		evt = c.log.Warn()
	}
	evt.Int("cycles", report.Cycles).
		Int("succeeded", report.Succeeded).
		Int("timed_out", report.TimedOut).
		Bool("converged", report.Converged).
		Dur("elapsed", report.Duration).
		Msg("run finished")
}
