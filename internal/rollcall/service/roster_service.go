package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"log"
	"strings"
	"time"

	"github.com/rollcall-dev/rollcall/internal/metrics"
	"github.com/rollcall-dev/rollcall/internal/rollcall/cache"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

const (
	registryCacheKey = "registry:csv"
	// RegistryHeader is the first line of the roster feed.
	RegistryHeader = "uid,firstName,lastName"
)

// RosterService owns the people table and the rendered registry feed.
type RosterService struct {
	people   store.PersonStore
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.Server
	logger   *log.Logger
	now      func() time.Time
}

type RosterDeps struct {
	People   store.PersonStore
	Cache    cache.Cache // nil disables caching
	CacheTTL time.Duration
	Metrics  *metrics.Server
	Logger   *log.Logger
}

func NewRosterService(d RosterDeps) *RosterService {
	ttl := d.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RosterService{
		people:   d.People,
		cache:    d.Cache,
		cacheTTL: ttl,
		metrics:  d.Metrics,
		logger:   d.Logger,
		now:      time.Now,
	}
}

// Register inserts or updates the person behind req.UID.  Registering the
// same uid twice never produces a second row, and an empty last name keeps
// whatever was stored.
func (s *RosterService) Register(ctx context.Context, req types.EndpointRequest) (types.EndpointReply, error) {
	uid, err := types.NormalizeUID(req.UID)
	if err != nil {
		return types.EndpointReply{}, err
	}
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" {
		return types.EndpointReply{}, ErrMissingFirstName
	}

	if err := s.people.UpsertPerson(ctx, types.Person{UID: uid, FirstName: first, LastName: last}); err != nil {
		return types.EndpointReply{}, err
	}
	s.invalidate(ctx)

	p, err := s.people.GetPerson(ctx, uid)
	if err != nil {
		return types.EndpointReply{}, err
	}
	s.metrics.Decision(types.ReplyRegistered)
	return types.EndpointReply{
		Status:     types.StatusOK,
		Action:     types.ReplyRegistered,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		FullName:   types.FullName(p.FirstName, p.LastName),
		ServerTime: s.now().UTC().Format(time.RFC3339Nano),
	}, nil
}

func (s *RosterService) List(ctx context.Context) ([]types.Person, error) {
	return s.people.ListPeople(ctx)
}

func (s *RosterService) Get(ctx context.Context, uid string) (types.Person, error) {
	uid, err := types.NormalizeUID(uid)
	if err != nil {
		return types.Person{}, err
	}
	return s.people.GetPerson(ctx, uid)
}

// Update is the dashboard edit: both names are written as given, so an
// empty last name clears the stored one.  Scans and Register never erase.
func (s *RosterService) Update(ctx context.Context, uid string, u types.PersonUpdate) (types.Person, error) {
	uid, err := types.NormalizeUID(uid)
	if err != nil {
		return types.Person{}, err
	}
	first := strings.TrimSpace(u.FirstName)
	if first == "" {
		return types.Person{}, ErrMissingFirstName
	}
	if err := s.people.SetPerson(ctx, types.Person{UID: uid, FirstName: first, LastName: strings.TrimSpace(u.LastName)}); err != nil {
		return types.Person{}, err
	}
	s.invalidate(ctx)
	return s.people.GetPerson(ctx, uid)
}

func (s *RosterService) Delete(ctx context.Context, uid string) error {
	uid, err := types.NormalizeUID(uid)
	if err != nil {
		return err
	}
	if err := s.people.DeletePerson(ctx, uid); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// RegistryFeed renders the roster as CSV with the RegistryHeader line.
func (s *RosterService) RegistryFeed(ctx context.Context) ([]byte, error) {
	if s.cache == nil {
		return s.renderFeed(ctx)
	}
	body, hit, err := cache.GetOrSet(ctx, s.cache, registryCacheKey, s.cacheTTL, func() ([]byte, error) {
		return s.renderFeed(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RegistryCache(hit)
	return body, nil
}

func (s *RosterService) renderFeed(ctx context.Context) ([]byte, error) {
	people, err := s.people.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(strings.Split(RegistryHeader, ","))
	for _, p := range people {
		_ = w.Write([]string{p.UID, p.FirstName, p.LastName})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *RosterService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, registryCacheKey); err != nil && s.logger != nil {
		s.logger.Printf("registry cache invalidate: %v", err)
	}
}
