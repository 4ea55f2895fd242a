package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DevPerson is one roster row inserted by SeedDev.
type DevPerson struct {
	UID       string
	FirstName string
	LastName  string
}

// DefaultDevRoster is what `rollcall-server seed` loads when no file is given.
var DefaultDevRoster = []DevPerson{
	{UID: "04A32B1C", FirstName: "Ada", LastName: "Lovelace"},
	{UID: "DEADBEEF", FirstName: "Grace", LastName: "Hopper"},
	{UID: "AB12", FirstName: "John"},
}

// SeedDev inserts people that are not already on the roster.  Existing rows
// are left alone so a dev database survives restarts with edits intact.
func SeedDev(ctx context.Context, db *sql.DB, driver string, people []DevPerson) (int, error) {
	insert := "INSERT OR IGNORE"
	if driver == DriverMySQL {
		insert = "INSERT IGNORE"
	}
	q := insert + ` INTO people(uid, first_name, last_name, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?);`

	now := time.Now().UTC().UnixMilli()
	added := 0
	for _, p := range people {
		res, err := db.ExecContext(ctx, q, p.UID, p.FirstName, p.LastName, now, now)
		if err != nil {
			return added, fmt.Errorf("seed person %s: %w", p.UID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}
