package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

type PersonStore struct {
	mu     sync.RWMutex
	people map[string]types.Person
}

// NewPersonStore returns a roster pre-populated with seed (may be nil).
func NewPersonStore(seed []types.Person) *PersonStore {
	s := &PersonStore{people: make(map[string]types.Person, len(seed))}
	for _, p := range seed {
		_ = s.UpsertPerson(context.Background(), p)
	}
	return s
}

func (s *PersonStore) UpsertPerson(_ context.Context, p types.Person) error {
	now := time.Now().UTC()
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.people[p.UID]
	if !ok {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		s.people[p.UID] = p
		return nil
	}
	cur.FirstName = p.FirstName
	if p.LastName != "" {
		cur.LastName = p.LastName
	}
	cur.UpdatedAt = now
	s.people[p.UID] = cur
	return nil
}

func (s *PersonStore) SetPerson(_ context.Context, p types.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.people[p.UID]
	if !ok {
		return store.ErrNotFound
	}
	cur.FirstName = strings.TrimSpace(p.FirstName)
	cur.LastName = strings.TrimSpace(p.LastName)
	cur.UpdatedAt = time.Now().UTC()
	s.people[p.UID] = cur
	return nil
}

func (s *PersonStore) GetPerson(_ context.Context, uid string) (types.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[uid]
	if !ok {
		return types.Person{}, store.ErrNotFound
	}
	return p, nil
}

func (s *PersonStore) ListPeople(_ context.Context) ([]types.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Person, 0, len(s.people))
	for _, p := range s.people {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (s *PersonStore) DeletePerson(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[uid]; !ok {
		return store.ErrNotFound
	}
	delete(s.people, uid)
	return nil
}

// Ping always succeeds; the roster lives in process memory.
func (s *PersonStore) Ping(context.Context) error { return nil }
