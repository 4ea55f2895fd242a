package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTerminal_Collectors(t *testing.T) {
	m := NewTerminal(prometheus.NewRegistry())

	m.Outcome("checkin", 300*time.Millisecond)
	m.Outcome("checkin", time.Second)
	m.Attempt()
	m.RosterSize(7)
	m.LinkUp(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("checkin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.rosterSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.linkUp))
}

func TestServer_Collectors(t *testing.T) {
	m := NewServer(prometheus.NewRegistry())

	m.Decision("checkout")
	m.RegistryCache(true)
	m.RegistryCache(false)
	m.HTTPRequest("POST", "200")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("checkout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registryCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registryCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "200")))
}

func TestNilReceivers(t *testing.T) {
	var s *Server
	var tm *Terminal
	assert.NotPanics(t, func() {
		s.Decision("x")
		s.HTTPRequest("GET", "200")
		s.RegistryCache(true)
		tm.Outcome("x", 0)
		tm.Attempt()
		tm.RosterSize(1)
		tm.LinkUp(false)
	})
}
