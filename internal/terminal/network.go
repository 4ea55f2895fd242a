package terminal

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/rollcall-dev/rollcall/internal/config"
	"github.com/rollcall-dev/rollcall/internal/metrics"
)

// AccessPoint is one network seen in a radio scan.  Signal is whatever the
// driver reports; higher is stronger.
type AccessPoint struct {
	SSID   string
	Signal int
}

// Radio is the platform's wireless link.
type Radio interface {
	Scan(ctx context.Context) ([]AccessPoint, error)
	Join(ctx context.Context, ssid, password string) error
	Connected(ctx context.Context) (bool, error)
}

type NetworkConfig struct {
	Polls     int           // status polls per candidate
	PollDelay time.Duration // delay between polls
}

// SessionManager keeps the terminal on one of the configured networks.
type SessionManager struct {
	radio     Radio
	networks  config.Networks
	polls     int
	pollDelay time.Duration
	presenter *Presenter
	metrics   *metrics.Terminal
	logger    *log.Logger
	sleep     sleepFunc
}

func NewSessionManager(radio Radio, networks config.Networks, cfg NetworkConfig, presenter *Presenter, m *metrics.Terminal, logger *log.Logger) *SessionManager {
	polls := cfg.Polls
	if polls < 1 {
		polls = 20
	}
	return &SessionManager{
		radio:     radio,
		networks:  networks,
		polls:     polls,
		pollDelay: cfg.PollDelay,
		presenter: presenter,
		metrics:   m,
		logger:    logger,
		sleep:     sleepCtx,
	}
}

// SetNetworks replaces the candidate list.  Called by the control loop at
// idle when the networks file changes.
func (m *SessionManager) SetNetworks(n config.Networks) {
	m.networks = n
	m.logger.Printf("network candidates updated count=%d", len(n.Networks))
}

// Connect tries each candidate in OrderCandidates order and returns true on
// the first that comes up.
func (m *SessionManager) Connect(ctx context.Context) bool {
	visible, err := m.radio.Scan(ctx)
	if err != nil {
		m.logger.Printf("wifi scan failed, using declaration order: %v", err)
	}

	for _, ssid := range OrderCandidates(m.networks.Networks, visible) {
		if ctx.Err() != nil {
			return false
		}
		m.presenter.Status("Connecting", ssid)
		if m.tryJoin(ctx, ssid) {
			m.logger.Printf("wifi connected ssid=%s", ssid)
			m.metrics.LinkUp(true)
			return true
		}
		m.logger.Printf("wifi join gave up ssid=%s", ssid)
	}

	m.metrics.LinkUp(false)
	return false
}

func (m *SessionManager) tryJoin(ctx context.Context, ssid string) bool {
	if err := m.radio.Join(ctx, ssid, m.networks.Password); err != nil {
		m.logger.Printf("wifi join ssid=%s: %v", ssid, err)
	}
	for poll := 1; poll <= m.polls; poll++ {
		up, err := m.radio.Connected(ctx)
		if err == nil && up {
			return true
		}
		m.presenter.Tick()
		if poll < m.polls {
			if m.sleep(ctx, m.pollDelay) != nil {
				return false
			}
		}
	}
	return false
}

// EnsureConnected returns true when the link is already up, otherwise it
// runs Connect.
func (m *SessionManager) EnsureConnected(ctx context.Context) bool {
	up, err := m.radio.Connected(ctx)
	if err == nil && up {
		return true
	}
	return m.Connect(ctx)
}

// OrderCandidates puts visible candidates first, strongest signal first,
// then the remaining candidates in declaration order.  Networks that are
// visible but not configured are ignored.
func OrderCandidates(candidates []string, visible []AccessPoint) []string {
	best := make(map[string]int, len(visible))
	for _, ap := range visible {
		if s, ok := best[ap.SSID]; !ok || ap.Signal > s {
			best[ap.SSID] = ap.Signal
		}
	}

	type ranked struct {
		ssid   string
		signal int
		index  int
	}
	var seen, unseen []ranked
	dup := make(map[string]struct{}, len(candidates))
	for i, c := range candidates {
		if _, ok := dup[c]; ok {
			continue
		}
		dup[c] = struct{}{}
		if s, ok := best[c]; ok {
			seen = append(seen, ranked{c, s, i})
		} else {
			unseen = append(unseen, ranked{c, 0, i})
		}
	}
	sort.SliceStable(seen, func(i, j int) bool { return seen[i].signal > seen[j].signal })

	out := make([]string, 0, len(seen)+len(unseen))
	for _, r := range seen {
		out = append(out, r.ssid)
	}
	for _, r := range unseen {
		out = append(out, r.ssid)
	}
	return out
}
