package terminal

import (
	"context"
	"io"
	"log"
	"sync"
	"time"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

// noSleep records requested sleeps without waiting.
type noSleep struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (n *noSleep) sleep(ctx context.Context, d time.Duration) error {
	n.mu.Lock()
	n.slept = append(n.slept, d)
	n.mu.Unlock()
	return ctx.Err()
}

type screen struct{ line1, line2 string }

type fakeDisplay struct {
	screens []screen
	clocks  []string
}

func (d *fakeDisplay) Show(l1, l2 string) {
	d.screens = append(d.screens, screen{l1, l2})
}

func (d *fakeDisplay) SetClock(hhmm string) {
	d.clocks = append(d.clocks, hhmm)
}

func (d *fakeDisplay) last() screen {
	return d.screens[len(d.screens)-1]
}

type fakeBuzzer struct{ played [][]Tone }

func (b *fakeBuzzer) Play(t []Tone) { b.played = append(b.played, t) }

type linkState bool

func (l linkState) EnsureConnected(context.Context) bool { return bool(l) }
