package store

import (
	"context"

	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

// PersonStore is the roster held by the remote store.  UIDs are unique.
type PersonStore interface {
	// UpsertPerson inserts p or updates the existing row.  An empty
	// LastName never erases a stored one.
	UpsertPerson(ctx context.Context, p types.Person) error
	// SetPerson overwrites both names of an existing person, empty values
	// included.  Returns ErrNotFound if uid is not on the roster.
	SetPerson(ctx context.Context, p types.Person) error
	GetPerson(ctx context.Context, uid string) (types.Person, error)
	// ListPeople returns all people ordered by uid.
	ListPeople(ctx context.Context) ([]types.Person, error)
	DeletePerson(ctx context.Context, uid string) error
}
