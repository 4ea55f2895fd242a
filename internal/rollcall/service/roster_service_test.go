package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rollcall-dev/rollcall/internal/rollcall/cache"
	"github.com/rollcall-dev/rollcall/internal/rollcall/service"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store/memory"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

func newTestRoster() *service.RosterService {
	return service.NewRosterService(service.RosterDeps{
		People: memory.NewPersonStore(nil),
		Cache:  cache.NewMemoryCache(),
		Logger: silentLogger(),
	})
}

func register(t *testing.T, svc *service.RosterService, uid, first, last string) types.EndpointReply {
	t.Helper()
	reply, err := svc.Register(context.Background(), types.EndpointRequest{
		UID: uid, Action: types.ActionRegister, FirstName: first, LastName: last,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", uid, err)
	}
	return reply
}

// ═══════════════════════════════════════════════════════════════════════════
// Register
// ═══════════════════════════════════════════════════════════════════════════

func TestRegister_Reply(t *testing.T) {
	svc := newTestRoster()
	got := register(t, svc, "de:ad:be:ef", " Grace ", "Hopper")
	if got.Action != types.ReplyRegistered {
		t.Errorf("expected action=registered, got %s", got.Action)
	}
	if got.FullName != "Grace Hopper" {
		t.Errorf("expected FullName=Grace Hopper, got %q", got.FullName)
	}
}

func TestRegister_TwiceKeepsOneRow(t *testing.T) {
	svc := newTestRoster()
	register(t, svc, "DEADBEEF", "Grace", "Hopper")
	register(t, svc, "DEADBEEF", "Grace", "Hopper")

	people, _ := svc.List(context.Background())
	if len(people) != 1 {
		t.Fatalf("expected 1 person, got %d", len(people))
	}
}

func TestRegister_EmptyLastNameKeepsStored(t *testing.T) {
	svc := newTestRoster()
	register(t, svc, "DEADBEEF", "Grace", "Hopper")
	got := register(t, svc, "DEADBEEF", "Amazing Grace", "")

	if got.LastName != "Hopper" {
		t.Errorf("expected last name kept, got %q", got.LastName)
	}
	if got.FirstName != "Amazing Grace" {
		t.Errorf("expected first name updated, got %q", got.FirstName)
	}
}

func TestRegister_MissingFirstName(t *testing.T) {
	svc := newTestRoster()
	_, err := svc.Register(context.Background(), types.EndpointRequest{UID: "AB12", LastName: "X"})
	if !errors.Is(err, service.ErrMissingFirstName) {
		t.Fatalf("expected ErrMissingFirstName, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Registry feed
// ═══════════════════════════════════════════════════════════════════════════

func TestRegistryFeed_HeaderAndRows(t *testing.T) {
	svc := newTestRoster()
	register(t, svc, "DEADBEEF", "Grace", "Hopper")
	register(t, svc, "AB12", "John", "")

	body, err := svc.RegistryFeed(context.Background())
	if err != nil {
		t.Fatalf("RegistryFeed: %v", err)
	}
	want := "uid,firstName,lastName\nAB12,John,\nDEADBEEF,Grace,Hopper\n"
	if string(body) != want {
		t.Errorf("feed mismatch:\n got %q\nwant %q", body, want)
	}
}

func TestRegistryFeed_InvalidatedOnRegister(t *testing.T) {
	svc := newTestRoster()
	register(t, svc, "DEADBEEF", "Grace", "Hopper")
	if _, err := svc.RegistryFeed(context.Background()); err != nil {
		t.Fatalf("RegistryFeed: %v", err)
	}

	register(t, svc, "04A32B1C", "Ada", "Lovelace")
	body, _ := svc.RegistryFeed(context.Background())
	if !strings.Contains(string(body), "04A32B1C,Ada,Lovelace") {
		t.Errorf("expected new registration in feed, got %q", body)
	}
}

func TestDelete_RemovesFromFeed(t *testing.T) {
	svc := newTestRoster()
	register(t, svc, "DEADBEEF", "Grace", "Hopper")
	_, _ = svc.RegistryFeed(context.Background())

	if err := svc.Delete(context.Background(), "deadbeef"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	body, _ := svc.RegistryFeed(context.Background())
	if string(body) != service.RegistryHeader+"\n" {
		t.Errorf("expected header only, got %q", body)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Update (dashboard edit)
// ═══════════════════════════════════════════════════════════════════════════

func TestUpdate_EmptyLastNameClearsStored(t *testing.T) {
	svc := newTestRoster()
	register(t, svc, "DEADBEEF", "Grace", "Hopper")

	p, err := svc.Update(context.Background(), "deadbeef", types.PersonUpdate{FirstName: "Grace"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.LastName != "" {
		t.Errorf("expected last name cleared, got %q", p.LastName)
	}
	body, _ := svc.RegistryFeed(context.Background())
	if !strings.Contains(string(body), "DEADBEEF,Grace,\n") {
		t.Errorf("feed should carry the cleared name, got %q", body)
	}
}

func TestUpdate_MissingPerson_NotFound(t *testing.T) {
	svc := newTestRoster()
	_, err := svc.Update(context.Background(), "AB12", types.PersonUpdate{FirstName: "John"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
