package reader

import (
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall-dev/rollcall/internal/terminal"
)

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func collect(t *testing.T, r *LineReader) []string {
	t.Helper()
	var out []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case tap, ok := <-r.Taps():
			if !ok {
				return out
			}
			out = append(out, tap.UID)
		case <-timeout:
			t.Fatal("reader did not close")
		}
	}
}

func TestLineReader_Normalizes(t *testing.T) {
	r := NewLineReader(strings.NewReader("04:a3:2b:1c\n\nnot a card\n04-A3-2B-1C\r\nab12\n"), quiet())
	assert.Equal(t, []string{"04A32B1C", "04A32B1C", "AB12"}, collect(t, r))
}

func TestLineReader_HaltDropsUntilRearm(t *testing.T) {
	r := &LineReader{taps: make(chan terminal.Tap, 8), logger: quiet(), now: time.Now}

	r.deliver(terminal.Tap{UID: "AAAA"})
	r.deliver(terminal.Tap{UID: "AAAA"}) // buffered before the halt
	r.Halt()
	r.deliver(terminal.Tap{UID: "AAAA"}) // same card still on the reader
	r.Rearm()
	r.deliver(terminal.Tap{UID: "BBBB"})
	close(r.taps)

	assert.Equal(t, []string{"BBBB"}, collect(t, r))
}

func TestLineReader_StampsTaps(t *testing.T) {
	r := NewLineReader(strings.NewReader("AB12\n"), quiet())
	select {
	case tap := <-r.Taps():
		require.Equal(t, "AB12", tap.UID)
		assert.False(t, tap.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no tap")
	}
}
