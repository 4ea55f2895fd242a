package terminal

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollcall-dev/rollcall/internal/config"
	"github.com/rollcall-dev/rollcall/internal/httpapi"
	"github.com/rollcall-dev/rollcall/internal/rollcall/cache"
	"github.com/rollcall-dev/rollcall/internal/rollcall/service"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store/memory"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

type fakeReader struct {
	taps   chan Tap
	halts  int
	rearms int
}

func newFakeReader() *fakeReader       { return &fakeReader{taps: make(chan Tap, 4)} }
func (r *fakeReader) Taps() <-chan Tap { return r.taps }
func (r *fakeReader) Halt()            { r.halts++ }
func (r *fakeReader) Rearm()           { r.rearms++ }

// newStoreServer runs the real HTTP API over in-memory stores.
func newStoreServer(t *testing.T, people ...types.Person) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	ps := memory.NewPersonStore(people)
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger: logger,
		AttendanceService: service.NewAttendanceService(service.AttendanceDeps{
			People: ps, Attendance: memory.NewAttendanceStore(), Events: memory.NewScanEventStore(), Logger: logger,
		}),
		RosterService: service.NewRosterService(service.RosterDeps{People: ps, Cache: cache.NewMemoryCache(), Logger: logger}),
		HealthService: service.NewHealthService(0, ps),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

type sessionFixture struct {
	*Session
	display *fakeDisplay
	buzzer  *fakeBuzzer
	reader  *fakeReader
	sleeps  *noSleep
}

func newSession(t *testing.T, endpoint string, radio Radio) *sessionFixture {
	t.Helper()
	logger := quietLogger()
	client := http.DefaultClient
	d, b := &fakeDisplay{}, &fakeBuzzer{}
	p := NewPresenter(d, b, 16)
	ns := &noSleep{}

	net := NewSessionManager(radio, config.Networks{Networks: []string{"Lab"}}, NetworkConfig{Polls: 1}, p, nil, logger)
	net.sleep = ns.sleep
	sub := NewSubmitter(client, endpoint, net, SubmitConfig{MaxAttempts: 3}, nil, logger)
	sub.sleep = ns.sleep
	clock := NewClock(1_700_000_000, time.Second, logger)
	reader := newFakeReader()

	s := &Session{
		Roster:    NewRoster(client, endpoint, time.Second, logger),
		Network:   net,
		Prober:    NewProber(client, endpoint, time.Second, logger),
		Submitter: sub,
		Clock:     clock,
		Presenter: p,
		Reader:    reader,
		Logger:    logger,
		Debounce:  1200 * time.Millisecond,
		sleep:     ns.sleep,
	}
	return &sessionFixture{Session: s, display: d, buzzer: b, reader: reader, sleeps: ns}
}

func TestBoot_Ready(t *testing.T) {
	ts := newStoreServer(t, types.Person{UID: "04A32B1C", FirstName: "Ada", LastName: "Lovelace"})
	f := newSession(t, ts.URL+httpapi.DefaultEndpointPath, &fakeRadio{connected: true})

	f.Boot(context.Background())

	assert.False(t, f.Limited())
	assert.Equal(t, 1, f.Roster.Len())
	assert.Contains(t, f.display.screens, screen{"Ready", ""})
}

func TestBoot_LimitedModeWithoutNetwork(t *testing.T) {
	f := newSession(t, "http://127.0.0.1:1/exec", &fakeRadio{goodSSID: "elsewhere"})

	f.Boot(context.Background())

	assert.True(t, f.Limited())
	assert.Equal(t, 0, f.Roster.Len())
	assert.Equal(t, screen{"Roster", "no saved records"}, f.display.last())
}

func TestHandleTap_CheckInThenCheckOut(t *testing.T) {
	ts := newStoreServer(t, types.Person{UID: "04A32B1C", FirstName: "Ada", LastName: "Lovelace"})
	f := newSession(t, ts.URL+httpapi.DefaultEndpointPath, &fakeRadio{connected: true})

	o := f.HandleTap(context.Background(), "04:a3:2b:1c")
	require.Equal(t, CheckIn, o.Kind)
	assert.Contains(t, f.display.screens, screen{"Checked in", "Ada Lovelace"})

	e, ok := f.Roster.Find("04A32B1C")
	require.True(t, ok, "reply upserts the roster")
	assert.Equal(t, "Lovelace", e.LastName)

	assert.Equal(t, CheckOut, f.HandleTap(context.Background(), "04A32B1C").Kind)
	assert.Equal(t, AlreadyCheckedOut, f.HandleTap(context.Background(), "04A32B1C").Kind)

	assert.Equal(t, 3, f.reader.halts)
	assert.Equal(t, 3, f.reader.rearms)
	assert.Equal(t, screen{"Tap your card", ""}, f.display.last())
}

func TestHandleTap_UnregisteredNotCached(t *testing.T) {
	ts := newStoreServer(t)
	f := newSession(t, ts.URL+httpapi.DefaultEndpointPath, &fakeRadio{connected: true})

	o := f.HandleTap(context.Background(), "CAFEBABE")
	assert.Equal(t, Unregistered, o.Kind)
	assert.Equal(t, 0, f.Roster.Len())
	assert.Contains(t, f.display.screens, screen{"Not registered", "CAFEBABE"})
}

func TestHandleTap_FailureStillSettles(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()
	f := newSession(t, ts.URL, &fakeRadio{connected: true})

	o := f.HandleTap(context.Background(), "AB12")
	assert.Equal(t, Failed, o.Kind)
	assert.Equal(t, 3, o.Attempts)
	assert.Contains(t, f.display.screens, screen{"Error", "HTTP 500"})
	assert.Equal(t, 1, f.reader.halts)
	assert.Contains(t, f.sleeps.slept, 1200*time.Millisecond, "debounce applied")
	assert.Equal(t, screen{"Tap your card", ""}, f.display.last())
}

func TestHandleTap_BadRead(t *testing.T) {
	f := newSession(t, "http://127.0.0.1:1/exec", &fakeRadio{connected: true})
	o := f.HandleTap(context.Background(), "??")
	assert.Equal(t, Failed, o.Kind)
	assert.Equal(t, "Bad card read", o.Reason())
	assert.Equal(t, 1, f.reader.halts)
}

func TestRegisterThenReload_SingleEntry(t *testing.T) {
	ts := newStoreServer(t, types.Person{UID: "DEADBEEF", FirstName: "Grace"})
	endpoint := ts.URL + httpapi.DefaultEndpointPath
	f := newSession(t, endpoint, &fakeRadio{connected: true})

	for range 2 {
		o := f.Submitter.Register(context.Background(), "de:ad:be:ef", "Grace", "Hopper")
		require.True(t, o.Success(), o.Reason())
	}
	require.True(t, f.Roster.Load(context.Background()))

	e, ok := f.Roster.Find("DEADBEEF")
	require.True(t, ok)
	assert.Equal(t, RosterEntry{UID: "DEADBEEF", FirstName: "Grace", LastName: "Hopper"}, e)
	assert.Equal(t, 1, f.Roster.Len())

	resp, err := http.Get(endpoint + "?registry=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 1, strings.Count(string(body), "DEADBEEF"))
}

func TestRun_ProcessesTapsAndNetworkUpdates(t *testing.T) {
	ts := newStoreServer(t, types.Person{UID: "AB12", FirstName: "John"})
	f := newSession(t, ts.URL+httpapi.DefaultEndpointPath, &fakeRadio{connected: true})

	updates := make(chan config.Networks, 1)
	updates <- config.Networks{Networks: []string{"Office"}}
	f.reader.taps <- Tap{UID: "AB12", At: time.Now()}
	close(f.reader.taps)

	err := f.Run(context.Background(), updates)
	require.NoError(t, err)

	_, ok := f.Roster.Find("AB12")
	assert.True(t, ok)
}
