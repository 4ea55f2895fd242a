package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/rollcall-dev/rollcall/internal/db"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

type PersonStore struct {
	db      *sql.DB
	writer  *dbpkg.Worker
	dialect dialect
}

func NewPersonStore(db *sql.DB, writer *dbpkg.Worker, driver string) *PersonStore {
	return &PersonStore{db: db, writer: writer, dialect: dialectFor(driver)}
}

func (s *PersonStore) UpsertPerson(ctx context.Context, p types.Person) error {
	uid := strings.TrimSpace(p.UID)
	if uid == "" {
		return types.ErrInvalidUID
	}
	ms := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.dialect.upsertPerson,
			uid, strings.TrimSpace(p.FirstName), strings.TrimSpace(p.LastName), ms, ms,
		); err != nil {
			return fmt.Errorf("UpsertPerson: %w", err)
		}
		return nil
	})
}

func (s *PersonStore) SetPerson(ctx context.Context, p types.Person) error {
	ms := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// MySQL reports zero affected rows for an unchanged row, so check
		// existence separately.
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM people WHERE uid = ?;`, p.UID).Scan(&one)
		if isNoRows(err) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("SetPerson lookup: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE people
SET first_name = ?, last_name = ?, updated_at_ms = ?
WHERE uid = ?;
`, strings.TrimSpace(p.FirstName), strings.TrimSpace(p.LastName), ms, p.UID); err != nil {
			return fmt.Errorf("SetPerson: %w", err)
		}
		return nil
	})
}

func (s *PersonStore) GetPerson(ctx context.Context, uid string) (types.Person, error) {
	var (
		p                  types.Person
		createdMs, updated int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT uid, first_name, last_name, created_at_ms, updated_at_ms
FROM people
WHERE uid = ?;
`, uid).Scan(&p.UID, &p.FirstName, &p.LastName, &createdMs, &updated)
	if isNoRows(err) {
		return types.Person{}, store.ErrNotFound
	}
	if err != nil {
		return types.Person{}, fmt.Errorf("GetPerson query: %w", err)
	}
	p.CreatedAt = msToTime(createdMs)
	p.UpdatedAt = msToTime(updated)
	return p, nil
}

func (s *PersonStore) ListPeople(ctx context.Context) ([]types.Person, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT uid, first_name, last_name, created_at_ms, updated_at_ms
FROM people
ORDER BY uid;
`)
	if err != nil {
		return nil, fmt.Errorf("ListPeople query: %w", err)
	}
	defer rows.Close()

	out := make([]types.Person, 0)
	for rows.Next() {
		var (
			p                  types.Person
			createdMs, updated int64
		)
		if err := rows.Scan(&p.UID, &p.FirstName, &p.LastName, &createdMs, &updated); err != nil {
			return nil, fmt.Errorf("ListPeople scan: %w", err)
		}
		p.CreatedAt = msToTime(createdMs)
		p.UpdatedAt = msToTime(updated)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PersonStore) DeletePerson(ctx context.Context, uid string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM people WHERE uid = ?;`, uid)
		if err != nil {
			return fmt.Errorf("DeletePerson: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// Ping reports whether the database answers.
func (s *PersonStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
