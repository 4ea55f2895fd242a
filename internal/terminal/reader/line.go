// Package reader turns a card reader's byte stream into taps.
package reader

import (
	"bufio"
	"io"
	"log"
	"sync"
	"time"

	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
	"github.com/rollcall-dev/rollcall/internal/terminal"
)

// LineReader reads one card id per line, as keyboard-wedge and most serial
// RFID readers emit them ("04:A3:2B:1C", "04a32b1c", "04-A3-2B-1C").
type LineReader struct {
	taps   chan terminal.Tap
	logger *log.Logger
	now    func() time.Time

	mu     sync.Mutex
	halted bool
}

// NewLineReader starts reading src in the background.  The Taps channel
// closes when src reaches EOF or fails.
func NewLineReader(src io.Reader, logger *log.Logger) *LineReader {
	r := &LineReader{
		taps:   make(chan terminal.Tap, 8),
		logger: logger,
		now:    time.Now,
	}
	go r.read(src)
	return r
}

func (r *LineReader) Taps() <-chan terminal.Tap { return r.taps }

// Halt drops buffered taps and ignores new reads until Rearm.
func (r *LineReader) Halt() {
	r.mu.Lock()
	r.halted = true
	r.mu.Unlock()
	for {
		select {
		case <-r.taps:
		default:
			return
		}
	}
}

func (r *LineReader) Rearm() {
	r.mu.Lock()
	r.halted = false
	r.mu.Unlock()
}

func (r *LineReader) read(src io.Reader) {
	defer close(r.taps)

	sc := bufio.NewScanner(src)
	for sc.Scan() {
		raw := sc.Text()
		uid, err := types.NormalizeUID(raw)
		if err != nil {
			if len(raw) > 0 {
				r.logger.Printf("reader: ignoring %q: %v", raw, err)
			}
			continue
		}
		r.deliver(terminal.Tap{UID: uid, At: r.now()})
	}
	if err := sc.Err(); err != nil {
		r.logger.Printf("reader: %v", err)
	}
}

// deliver hands tap to the loop unless halted.  The lock is held across
// the send so Halt cannot miss a tap that is about to be queued.
func (r *LineReader) deliver(tap terminal.Tap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.halted {
		return
	}
	select {
	case r.taps <- tap:
	default:
		r.logger.Printf("reader: dropping tap uid=%s, loop busy", tap.UID)
	}
}
