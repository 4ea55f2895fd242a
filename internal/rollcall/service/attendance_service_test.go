package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rollcall-dev/rollcall/internal/rollcall/service"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store/memory"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []types.AttendanceEvent
}

func (p *recordingPublisher) PublishAttendance(_ context.Context, ev types.AttendanceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type fixture struct {
	svc        *service.AttendanceService
	attendance *memory.AttendanceStore
	events     *memory.ScanEventStore
	pub        *recordingPublisher
	now        time.Time
}

// newFixture builds an AttendanceService over in-memory stores with a fixed
// clock at 2026-03-02 09:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		attendance: memory.NewAttendanceStore(),
		events:     memory.NewScanEventStore(),
		pub:        &recordingPublisher{},
		now:        time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	people := memory.NewPersonStore([]types.Person{
		{UID: "04A32B1C", FirstName: "Ada", LastName: "Lovelace"},
		{UID: "AB12", FirstName: "John"},
	})
	f.svc = service.NewAttendanceService(service.AttendanceDeps{
		People:     people,
		Attendance: f.attendance,
		Events:     f.events,
		Publisher:  f.pub,
		Logger:     silentLogger(),
		Now:        func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) scan(t *testing.T, uid string) types.EndpointReply {
	t.Helper()
	reply, err := f.svc.Scan(context.Background(), types.EndpointRequest{UID: uid, Action: types.ActionScan})
	if err != nil {
		t.Fatalf("Scan(%s): %v", uid, err)
	}
	return reply
}

// ── Decision sequence ────────────────────────────────────────────────────────

func TestScan_TogglesThroughTheDay(t *testing.T) {
	f := newFixture(t)

	want := []string{types.ReplyCheckIn, types.ReplyCheckOut, types.ReplyAlreadyCheckedOut, types.ReplyAlreadyCheckedOut}
	for i, w := range want {
		f.now = f.now.Add(time.Hour)
		got := f.scan(t, "04A32B1C")
		if got.Action != w {
			t.Fatalf("scan %d: expected action=%s, got %s", i+1, w, got.Action)
		}
		if got.Status != types.StatusOK {
			t.Errorf("scan %d: expected status=ok, got %s", i+1, got.Status)
		}
	}

	rows, _ := f.attendance.ListByDate(context.Background(), "2026-03-02")
	if len(rows) != 1 {
		t.Fatalf("expected 1 attendance row, got %d", len(rows))
	}
	if rows[0].CheckOut == nil || !rows[0].CheckOut.After(rows[0].CheckIn) {
		t.Errorf("expected closed row with checkOut after checkIn, got %+v", rows[0])
	}
}

func TestScan_NewDayStartsNewSession(t *testing.T) {
	f := newFixture(t)
	f.scan(t, "04A32B1C")
	f.scan(t, "04A32B1C")

	f.now = f.now.Add(24 * time.Hour)
	if got := f.scan(t, "04A32B1C"); got.Action != types.ReplyCheckIn {
		t.Errorf("expected checkin on a new day, got %s", got.Action)
	}
}

func TestScan_UnknownUID(t *testing.T) {
	f := newFixture(t)
	got := f.scan(t, "CAFEBABE")
	if got.Action != types.ReplyUnregistered {
		t.Fatalf("expected unregistered, got %s", got.Action)
	}
	if got.FullName != "" {
		t.Errorf("expected no name for unknown uid, got %q", got.FullName)
	}
	rows, _ := f.attendance.ListByDate(context.Background(), "2026-03-02")
	if len(rows) != 0 {
		t.Errorf("expected no attendance rows, got %d", len(rows))
	}
}

func TestScan_NormalizesUID(t *testing.T) {
	f := newFixture(t)
	got := f.scan(t, "04:a3:2b:1c")
	if got.Action != types.ReplyCheckIn || got.FullName != "Ada Lovelace" {
		t.Errorf("expected checkin for Ada Lovelace, got %+v", got)
	}
}

func TestScan_InvalidUID(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Scan(context.Background(), types.EndpointRequest{UID: "zz!"})
	if !errors.Is(err, types.ErrInvalidUID) {
		t.Fatalf("expected ErrInvalidUID, got %v", err)
	}
}

func TestScan_SingleNamePerson(t *testing.T) {
	f := newFixture(t)
	got := f.scan(t, "AB12")
	if got.FullName != "John" || got.LastName != "" {
		t.Errorf("expected FullName=John with empty last name, got %+v", got)
	}
}

// ── Timestamps ───────────────────────────────────────────────────────────────

func TestScan_UsesDeviceTimestampWithinSkew(t *testing.T) {
	f := newFixture(t)
	device := f.now.Add(-2 * time.Hour)

	_, err := f.svc.Scan(context.Background(), types.EndpointRequest{
		UID:       "04A32B1C",
		Timestamp: device.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	row, err := f.attendance.FindDay(context.Background(), "04A32B1C", "2026-03-02")
	if err != nil {
		t.Fatalf("FindDay: %v", err)
	}
	if !row.CheckIn.Equal(device) {
		t.Errorf("expected checkIn=%s, got %s", device, row.CheckIn)
	}
}

func TestScan_IgnoresWildDeviceTimestamp(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Scan(context.Background(), types.EndpointRequest{
		UID:       "04A32B1C",
		Timestamp: "1970-01-01T00:00:10Z",
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if reply.DateKey != "2026-03-02" {
		t.Errorf("expected server date key, got %s", reply.DateKey)
	}
}

// ── Side effects ─────────────────────────────────────────────────────────────

func TestScan_RecordsAuditAndPublishes(t *testing.T) {
	f := newFixture(t)
	f.scan(t, "04A32B1C")
	f.scan(t, "CAFEBABE")

	evs := f.events.Events()
	if len(evs) != 2 {
		t.Fatalf("expected 2 scan events, got %d", len(evs))
	}
	if evs[0].Action != types.ReplyCheckIn || evs[1].Action != types.ReplyUnregistered {
		t.Errorf("unexpected event actions: %s, %s", evs[0].Action, evs[1].Action)
	}
	if len(f.pub.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(f.pub.events))
	}
	if f.pub.events[0].UID != "04A32B1C" {
		t.Errorf("expected uid=04A32B1C, got %s", f.pub.events[0].UID)
	}
}

func TestScan_ConcurrentFirstScansYieldOneRow(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Scan(context.Background(), types.EndpointRequest{UID: "04A32B1C"})
		}()
	}
	wg.Wait()

	rows, _ := f.attendance.ListByDate(context.Background(), "2026-03-02")
	if len(rows) != 1 {
		t.Errorf("expected exactly 1 row, got %d", len(rows))
	}
}

// ── Dashboard edits ──────────────────────────────────────────────────────────

func TestEdit_RejectsCheckOutBeforeCheckIn(t *testing.T) {
	f := newFixture(t)
	f.scan(t, "04A32B1C")
	row, _ := f.attendance.FindDay(context.Background(), "04A32B1C", "2026-03-02")

	early := row.CheckIn.Add(-time.Minute)
	_, err := f.svc.Edit(context.Background(), row.ID, types.AttendancePatch{CheckOut: &early})
	if !errors.Is(err, service.ErrCheckOutBeforeCheckIn) {
		t.Fatalf("expected ErrCheckOutBeforeCheckIn, got %v", err)
	}
}

func TestEdit_ClearCheckOutReopensSession(t *testing.T) {
	f := newFixture(t)
	f.scan(t, "04A32B1C")
	f.scan(t, "04A32B1C")
	row, _ := f.attendance.FindDay(context.Background(), "04A32B1C", "2026-03-02")

	got, err := f.svc.Edit(context.Background(), row.ID, types.AttendancePatch{ClearCheckOut: true})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !got.Open() {
		t.Error("expected row to be open after clearing checkOut")
	}
	if got.Source != "dashboard" {
		t.Errorf("expected source=dashboard, got %s", got.Source)
	}
	if reply := f.scan(t, "04A32B1C"); reply.Action != types.ReplyCheckOut {
		t.Errorf("expected checkout after reopen, got %s", reply.Action)
	}
}

func TestEdit_UnknownID(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Edit(context.Background(), "nope", types.AttendancePatch{ClearCheckOut: true})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListDay_DefaultsToToday(t *testing.T) {
	f := newFixture(t)
	f.scan(t, "04A32B1C")

	rows, key, err := f.svc.ListDay(context.Background(), "")
	if err != nil {
		t.Fatalf("ListDay: %v", err)
	}
	if key != "2026-03-02" || len(rows) != 1 {
		t.Errorf("expected 1 row on 2026-03-02, got %d on %s", len(rows), key)
	}

	if _, _, err := f.svc.ListDay(context.Background(), "03/02/2026"); !errors.Is(err, service.ErrInvalidDateKey) {
		t.Errorf("expected ErrInvalidDateKey, got %v", err)
	}
}
