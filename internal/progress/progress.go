// Package progress renders the tiled save of an image as a terminal progress bar.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kiesman99/splitsave/pkg/tile"
)

// Bar draws one line per tile candidate, redrawn in place as tiles are
// written. It implements tiler.Observer.
type Bar struct {
	w        io.Writer
	label    string
	barWidth int
	now      func() time.Time

	mu     sync.Mutex
	start  time.Time
	steps  int
	saved  int
	active bool
}

// New returns a Bar writing to w
func New(w io.Writer, label string) *Bar {
	return &Bar{
		w:        w,
		label:    label,
		barWidth: 30,
		now:      time.Now,
	}
}

func (b *Bar) CandidateStarted(steps int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.start = b.now()
	b.steps = steps
	b.saved = 0
	b.active = true
	b.draw()
}

func (b *Bar) TileSaved(_ tile.Region, steps int, _ string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.saved++
	b.draw()
	if b.saved == steps {
		fmt.Fprint(b.w, "\n")
		b.active = false
	}
}

func (b *Bar) CandidateAbandoned(steps int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active {
		fmt.Fprint(b.w, "\n")
		b.active = false
	}
	fmt.Fprintf(b.w, "%s: %d tiles abandoned: %v\n", b.label, steps, err)
}

func (b *Bar) draw() {
	var frac float64
	if b.steps > 0 {
		frac = float64(b.saved) / float64(b.steps)
	}
	if frac > 1 {
		frac = 1
	}

	filled := int(float64(b.barWidth) * frac)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", b.barWidth-filled)

	fmt.Fprintf(b.w, "\r%s [%s] %3.0f%%  %d/%d tiles  %s\033[K",
		b.label, bar, frac*100, b.saved, b.steps, formatDuration(b.now().Sub(b.start)))
}

// formatDuration formats a duration concisely (e.g. "1m23s", "45s", "0s").
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%02ds", m, s)
}
