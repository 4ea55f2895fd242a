package terminal

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rollcall-dev/rollcall/internal/config"
	"github.com/rollcall-dev/rollcall/internal/metrics"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

// Tap is one card read.
type Tap struct {
	UID string
	At  time.Time
}

// CardReader delivers taps.  Halt stops delivery of the current card until
// Rearm, dropping anything already buffered.
type CardReader interface {
	Taps() <-chan Tap
	Halt()
	Rearm()
}

// Session owns the roster and every component of the scan pipeline.  All
// of its methods run on the control loop.
type Session struct {
	Roster    *Roster
	Network   *SessionManager
	Prober    *Prober
	Submitter *Submitter
	Clock     *Clock
	Presenter *Presenter
	Reader    CardReader
	Metrics   *metrics.Terminal
	Logger    *log.Logger
	Debounce  time.Duration

	limited bool
	sleep   sleepFunc
}

// Limited reports whether boot could not reach the remote store.  Scanning
// still works in limited mode.
func (s *Session) Limited() bool { return s.limited }

// Boot joins a network, probes the store and loads the roster.  None of
// these failures stop the terminal.
func (s *Session) Boot(ctx context.Context) {
	s.Presenter.Status("Starting", "")

	connected := s.Network.Connect(ctx)
	if !connected {
		s.Logger.Printf("boot: %v", ErrNetworkUnavailable)
	}

	ready := connected && s.Prober.Probe(ctx)
	s.limited = !ready
	if ready {
		s.Presenter.Status("Ready", "")
	} else {
		s.Presenter.Status("Limited mode", "Server unreachable")
	}

	if connected && s.Roster.Load(ctx) {
		s.Presenter.Status("Roster loaded", fmt.Sprintf("%d people", s.Roster.Len()))
	} else {
		s.Presenter.Status("Roster", "no saved records")
	}
	s.Metrics.RosterSize(s.Roster.Len())
}

// HandleTap runs one tap through the pipeline and returns its Outcome.
func (s *Session) HandleTap(ctx context.Context, raw string) Outcome {
	defer s.settle(ctx)

	uid, err := types.NormalizeUID(raw)
	if err != nil {
		o := failed(&ProtocolError{Reason: "Bad card read"})
		s.Presenter.Present(o, "")
		return o
	}

	cached, found := s.Roster.Find(uid)
	s.Presenter.Scanning(cached.FirstName)

	at := s.Clock.Timestamp(ctx)
	o := s.Submitter.Submit(ctx, uid, at)
	s.Metrics.Outcome(o.Kind.String(), o.Elapsed)
	s.Logger.Printf("scan uid=%s outcome=%s attempts=%d dur=%s", uid, o.Kind, o.Attempts, o.Elapsed.Round(time.Millisecond))

	first, last := ResolveNames(o, cached, found)
	if o.Success() && o.Kind != Unregistered && first != "" {
		s.Roster.Upsert(uid, first, last)
		s.Metrics.RosterSize(s.Roster.Len())
	}

	s.Presenter.Present(o, s.detail(o, uid, first, last))
	return o
}

func (s *Session) detail(o Outcome, uid, first, last string) string {
	switch {
	case o.Kind == Failed:
		return o.Reason()
	case o.Kind == Unregistered:
		return uid
	case o.FullName != "":
		return o.FullName
	default:
		return types.FullName(first, last)
	}
}

// settle halts the card, waits out the debounce and returns to idle.
func (s *Session) settle(ctx context.Context) {
	s.Reader.Halt()
	sleep := s.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	_ = sleep(ctx, s.Debounce)
	s.Reader.Rearm()
	s.Presenter.Idle()
}

// Run is the control loop.  It returns when ctx is cancelled or the reader
// closes.  Network list reloads arriving on updates are applied between
// taps.
func (s *Session) Run(ctx context.Context, updates <-chan config.Networks) error {
	s.Presenter.Idle()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	taps := s.Reader.Taps()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tap, ok := <-taps:
			if !ok {
				return nil
			}
			s.HandleTap(ctx, tap.UID)
		case n := <-updates:
			s.Network.SetNetworks(n)
		case <-ticker.C:
			s.Presenter.Tick()
		}
	}
}
