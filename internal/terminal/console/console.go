// Package console renders the display and buzzer as text, for development
// machines and terminals driven over a serial console.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rollcall-dev/rollcall/internal/terminal"
)

// Display prints each screen as a two-line box.
type Display struct {
	mu    sync.Mutex
	w     io.Writer
	width int
	clock string
}

func NewDisplay(w io.Writer, width int) *Display {
	if width <= 0 {
		width = 16
	}
	return &Display{w: w, width: width}
}

func (d *Display) Show(line1, line2 string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	bar := strings.Repeat("-", d.width)
	fmt.Fprintf(d.w, "+%s+ %s\n|%-*s|\n|%-*s|\n+%s+\n", bar, d.clock, d.width, line1, d.width, line2, bar)
}

func (d *Display) SetClock(hhmm string) {
	d.mu.Lock()
	d.clock = hhmm
	d.mu.Unlock()
}

// Buzzer writes a terminal bell per tone, or a description when verbose.
type Buzzer struct {
	w       io.Writer
	verbose bool
}

func NewBuzzer(w io.Writer, verbose bool) *Buzzer {
	return &Buzzer{w: w, verbose: verbose}
}

func (b *Buzzer) Play(tones []terminal.Tone) {
	if !b.verbose {
		for _, t := range tones {
			if t.FreqHz > 0 {
				_, _ = io.WriteString(b.w, "\a")
			}
		}
		return
	}
	parts := make([]string, 0, len(tones))
	for _, t := range tones {
		if t.FreqHz == 0 {
			parts = append(parts, fmt.Sprintf("rest/%dms", t.Dur.Milliseconds()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%dHz/%dms", t.FreqHz, t.Dur.Milliseconds()))
	}
	fmt.Fprintf(b.w, "beep %s\n", strings.Join(parts, " "))
}
