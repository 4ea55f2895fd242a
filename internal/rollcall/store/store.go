package store

import (
	"context"
	"errors"
	"time"

	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a second attendance row is inserted for
	// the same uid and day.
	ErrDuplicate = errors.New("duplicate attendance row")
)

// AttendanceStore holds one row per (uid, date key).
type AttendanceStore interface {
	// FindDay returns the row for uid on dateKey, or ErrNotFound.
	FindDay(ctx context.Context, uid, dateKey string) (types.AttendanceRecord, error)
	// InsertCheckIn creates the day's row.  Returns ErrDuplicate if one exists.
	InsertCheckIn(ctx context.Context, rec types.AttendanceRecord) error
	// CloseSession sets check_out on an open row.  Returns ErrNotFound if no
	// open row with that id exists.
	CloseSession(ctx context.Context, id string, checkOut time.Time) error

	Get(ctx context.Context, id string) (types.AttendanceRecord, error)
	ListByDate(ctx context.Context, dateKey string) ([]types.AttendanceRecord, error)
	Update(ctx context.Context, rec types.AttendanceRecord) error
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by stores that can report backend liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
