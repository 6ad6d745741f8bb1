// Package progress renders per-cycle operator output: a progress bar over
// the cycle's dispatch set plus per-entry status lines. Everything here is
// output-only; no run behavior depends on it.
package progress

import (
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

var (
	width            = 50
	optionSetWidth   = progressbar.OptionSetWidth(width)
	optionShowCount  = progressbar.OptionShowCount()
	optionShowIts    = progressbar.OptionShowIts()
	optionClearOnEnd = progressbar.OptionClearOnFinish()
	optionSetTheme   = progressbar.OptionSetTheme(progressbar.Theme{
		Saucer:        "=",
		SaucerHead:    ">",
		SaucerPadding: " ",
		BarStart:      "[",
		BarEnd:        "]",
	})
)

// Bar wraps progressbar.ProgressBar with the hydrate option set.
type Bar struct {
	progressbar.ProgressBar
}

// NewBar creates a progress bar like this:
// [cycle 3] 66% [================>        ] (2/3, 1 it/s)
func NewBar(total int, describe string) *Bar {
	return &Bar{
		*progressbar.NewOptions(total,
			optionSetWidth,
			optionSetTheme,
			optionShowCount,
			optionShowIts,
			optionClearOnEnd,
			progressbar.OptionSetDescription(describe),
		),
	}
}

// Increment adds 1 to the progress bar.
func (b *Bar) Increment() {
	if err := b.Add(1); err != nil {
		log.Debug().Err(err).Msg("failed to increment progress bar")
	}
}

// SetTotal grows the bar's maximum. The dispatch set is announced entry by
// entry before the pool runs, so the total only ever grows.
func (b *Bar) SetTotal(num int) {
	if num > b.GetMax() {
		b.ChangeMax(num)
	}
}
