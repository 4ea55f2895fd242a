package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rollcall-dev/rollcall/internal/metrics"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

// maxDeviceSkew bounds how far a device timestamp may drift from server
// time before the server's own clock is used instead.
const maxDeviceSkew = 12 * time.Hour

type AttendanceDeps struct {
	People     store.PersonStore
	Attendance store.AttendanceStore
	Events     store.ScanEventStore
	Publisher  EventPublisher
	Metrics    *metrics.Server
	Logger     *log.Logger
	Location   *time.Location // DateKey zone; UTC when nil
	Now        func() time.Time
}

type AttendanceService struct {
	people     store.PersonStore
	attendance store.AttendanceStore
	events     store.ScanEventStore
	publisher  EventPublisher
	metrics    *metrics.Server
	logger     *log.Logger
	loc        *time.Location
	now        func() time.Time
}

func NewAttendanceService(d AttendanceDeps) *AttendanceService {
	s := &AttendanceService{
		people:     d.People,
		attendance: d.Attendance,
		events:     d.Events,
		publisher:  d.Publisher,
		metrics:    d.Metrics,
		logger:     d.Logger,
		loc:        d.Location,
		now:        d.Now,
	}
	if s.publisher == nil {
		s.publisher = NopPublisher{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Scan toggles the day's attendance row for req.UID:
// unknown → unregistered, no row → checkin, open → checkout,
// closed → alreadyCheckedOut.
func (s *AttendanceService) Scan(ctx context.Context, req types.EndpointRequest) (types.EndpointReply, error) {
	received := s.now().UTC()

	uid, err := types.NormalizeUID(req.UID)
	if err != nil {
		return types.EndpointReply{}, err
	}

	requestedAt := parseOptionalTimestamp(req.Timestamp)
	at := received
	if requestedAt != nil && absDuration(requestedAt.Sub(received)) <= maxDeviceSkew {
		at = *requestedAt
	}
	dateKey := at.In(s.loc).Format(types.DateKeyLayout)

	reply, err := s.decide(ctx, uid, dateKey, at)
	if err != nil {
		s.recordEvent(ctx, uid, received, requestedAt, "error", dateKey)
		return types.EndpointReply{}, err
	}
	reply.DateKey = dateKey
	reply.ServerTime = received.Format(time.RFC3339Nano)

	s.recordEvent(ctx, uid, received, requestedAt, reply.Action, dateKey)
	s.metrics.Decision(reply.Action)
	if err := s.publisher.PublishAttendance(ctx, types.AttendanceEvent{
		UID:       uid,
		Action:    reply.Action,
		DateKey:   dateKey,
		At:        at,
		FirstName: reply.FirstName,
		LastName:  reply.LastName,
	}); err != nil {
		s.logf("publish attendance uid=%s: %v", uid, err)
	}

	return reply, nil
}

func (s *AttendanceService) decide(ctx context.Context, uid, dateKey string, at time.Time) (types.EndpointReply, error) {
	person, err := s.people.GetPerson(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return types.EndpointReply{Status: types.StatusOK, Action: types.ReplyUnregistered}, nil
	}
	if err != nil {
		return types.EndpointReply{}, err
	}

	reply := types.EndpointReply{
		Status:    types.StatusOK,
		FirstName: person.FirstName,
		LastName:  person.LastName,
		FullName:  types.FullName(person.FirstName, person.LastName),
	}

	row, err := s.attendance.FindDay(ctx, uid, dateKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		err = s.attendance.InsertCheckIn(ctx, types.AttendanceRecord{
			ID:      uuid.NewString(),
			UID:     uid,
			DateKey: dateKey,
			CheckIn: at,
			Source:  "scan",
		})
		if err != nil && !errors.Is(err, store.ErrDuplicate) {
			return types.EndpointReply{}, err
		}
		// A duplicate means a concurrent scan checked in first; same answer.
		reply.Action = types.ReplyCheckIn
	case err != nil:
		return types.EndpointReply{}, err
	case row.Open():
		if !at.After(row.CheckIn) {
			at = row.CheckIn
		}
		err = s.attendance.CloseSession(ctx, row.ID, at)
		if errors.Is(err, store.ErrNotFound) {
			reply.Action = types.ReplyAlreadyCheckedOut
			break
		}
		if err != nil {
			return types.EndpointReply{}, err
		}
		reply.Action = types.ReplyCheckOut
	default:
		reply.Action = types.ReplyAlreadyCheckedOut
	}
	return reply, nil
}

// recordEvent appends to the audit log.  Errors are logged, not returned:
// a failed audit write must not change the terminal's answer.
func (s *AttendanceService) recordEvent(ctx context.Context, uid string, received time.Time, requestedAt *time.Time, action, dateKey string) {
	if s.events == nil {
		return
	}
	err := s.events.RecordEvent(ctx, store.ScanEventRecord{
		UID:         uid,
		ReceivedAt:  received,
		RequestedAt: requestedAt,
		Action:      action,
		DateKey:     dateKey,
	})
	if err != nil {
		s.logf("record scan event uid=%s: %v", uid, err)
	}
}

// ListDay returns the attendance rows for dateKey (YYYY-MM-DD), or for
// today in the service's zone when dateKey is empty.
func (s *AttendanceService) ListDay(ctx context.Context, dateKey string) ([]types.AttendanceRecord, string, error) {
	dateKey = strings.TrimSpace(dateKey)
	if dateKey == "" {
		dateKey = s.now().In(s.loc).Format(types.DateKeyLayout)
	}
	if _, err := time.Parse(types.DateKeyLayout, dateKey); err != nil {
		return nil, "", ErrInvalidDateKey
	}
	rows, err := s.attendance.ListByDate(ctx, dateKey)
	return rows, dateKey, err
}

// Edit applies a dashboard patch to one attendance row.
func (s *AttendanceService) Edit(ctx context.Context, id string, patch types.AttendancePatch) (types.AttendanceRecord, error) {
	rec, err := s.attendance.Get(ctx, id)
	if err != nil {
		return types.AttendanceRecord{}, err
	}
	if patch.CheckIn != nil {
		rec.CheckIn = patch.CheckIn.UTC()
	}
	switch {
	case patch.ClearCheckOut:
		rec.CheckOut = nil
	case patch.CheckOut != nil:
		co := patch.CheckOut.UTC()
		rec.CheckOut = &co
	}
	if rec.CheckOut != nil && rec.CheckOut.Before(rec.CheckIn) {
		return types.AttendanceRecord{}, ErrCheckOutBeforeCheckIn
	}
	rec.Source = "dashboard"
	if err := s.attendance.Update(ctx, rec); err != nil {
		return types.AttendanceRecord{}, err
	}
	return s.attendance.Get(ctx, id)
}

func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	return s.attendance.Delete(ctx, id)
}

func (s *AttendanceService) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// parseOptionalTimestamp parses a device-reported timestamp.  Returns nil if
// the string is empty or unparseable.
func parseOptionalTimestamp(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05.000Z"} {
		if t, err := time.Parse(layout, v); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
