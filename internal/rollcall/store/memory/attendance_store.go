package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

type AttendanceStore struct {
	mu   sync.RWMutex
	rows map[string]types.AttendanceRecord // by id
}

func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{rows: make(map[string]types.AttendanceRecord)}
}

func (s *AttendanceStore) FindDay(_ context.Context, uid, dateKey string) (types.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rows {
		if r.UID == uid && r.DateKey == dateKey {
			return r, nil
		}
	}
	return types.AttendanceRecord{}, store.ErrNotFound
}

func (s *AttendanceStore) InsertCheckIn(_ context.Context, rec types.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.UID == rec.UID && r.DateKey == rec.DateKey {
			return store.ErrDuplicate
		}
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	s.rows[rec.ID] = rec
	return nil
}

func (s *AttendanceStore) CloseSession(_ context.Context, id string, checkOut time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok || !r.Open() {
		return store.ErrNotFound
	}
	co := checkOut.UTC()
	r.CheckOut = &co
	r.UpdatedAt = time.Now().UTC()
	s.rows[id] = r
	return nil
}

func (s *AttendanceStore) Get(_ context.Context, id string) (types.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[id]
	if !ok {
		return types.AttendanceRecord{}, store.ErrNotFound
	}
	return r, nil
}

func (s *AttendanceStore) ListByDate(_ context.Context, dateKey string) ([]types.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.AttendanceRecord, 0)
	for _, r := range s.rows {
		if r.DateKey == dateKey {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}

func (s *AttendanceStore) Update(_ context.Context, rec types.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rec.ID]; !ok {
		return store.ErrNotFound
	}
	rec.UpdatedAt = time.Now().UTC()
	s.rows[rec.ID] = rec
	return nil
}

func (s *AttendanceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}
