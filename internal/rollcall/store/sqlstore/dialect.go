package sqlstore

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	dbpkg "github.com/rollcall-dev/rollcall/internal/db"
)

// dialect holds the few statements that differ between SQLite and MySQL.
// Placeholders are '?' on both.
type dialect struct {
	upsertPerson string
}

func dialectFor(driver string) dialect {
	if driver == dbpkg.DriverMySQL {
		return dialect{
			upsertPerson: `
INSERT INTO people(uid, first_name, last_name, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  first_name    = VALUES(first_name),
  last_name     = IF(VALUES(last_name) = '', last_name, VALUES(last_name)),
  updated_at_ms = VALUES(updated_at_ms);`,
		}
	}
	return dialect{
		upsertPerson: `
INSERT INTO people(uid, first_name, last_name, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(uid) DO UPDATE SET
  first_name    = excluded.first_name,
  last_name     = CASE WHEN excluded.last_name = '' THEN people.last_name ELSE excluded.last_name END,
  updated_at_ms = excluded.updated_at_ms;`,
	}
}

// isUniqueViolation matches both drivers' duplicate-key errors without
// importing driver-specific error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMsToTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := msToTime(v.Int64)
	return &t
}

func timeToNullMs(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().UnixMilli()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
