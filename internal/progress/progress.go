// Package progress renders the fixed-width progress bar spec.md §6 names as
// the "progress collaborator": Set(total) establishes the denominator, Put
// renders the bar for the current numerator. The teacher never pulls in a
// progress or logging library (pkg/search/worker.go drives its own ticker
// straight to fmt.Printf), so this follows the same idiom instead of
// introducing one.
package progress

import (
	"fmt"
	"io"
)

const barWidth = 40

// Bar renders a fixed-width '#'/'-' progress bar to an io.Writer.
type Bar struct {
	w     io.Writer
	total int64
}

// New builds a Bar writing to w. Put is a no-op until Set has been called
// with total > 0.
func New(w io.Writer) *Bar {
	return &Bar{w: w}
}

// Set establishes the denominator for subsequent Put calls.
func (b *Bar) Set(total int64) {
	b.total = total
}

// Put renders the bar for current against the total given to Set. It
// terminates the line with a carriage return while current<total, and a
// newline once current>=total, so the bar overwrites itself in place on a
// terminal and leaves a clean final line when done.
func (b *Bar) Put(current int64) {
	if b.total <= 0 {
		return
	}
	if current > b.total {
		current = b.total
	}
	frac := float64(current) / float64(b.total)
	filled := int(frac * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	bar := make([]byte, barWidth)
	for i := range bar {
		if i < filled {
			bar[i] = '#'
		} else {
			bar[i] = '-'
		}
	}

	end := "\r"
	if current >= b.total {
		end = "\n"
	}
	fmt.Fprintf(b.w, "[%s] %5.1f%%%s", bar, frac*100, end)
}
