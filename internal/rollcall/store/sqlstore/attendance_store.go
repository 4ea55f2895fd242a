package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/rollcall-dev/rollcall/internal/db"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

type AttendanceStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAttendanceStore(db *sql.DB, writer *dbpkg.Worker) *AttendanceStore {
	return &AttendanceStore{db: db, writer: writer}
}

const attendanceColumns = `a.id, a.uid, a.date_key, a.check_in_ms, a.check_out_ms, a.source, a.updated_at_ms,
       COALESCE(p.first_name, ''), COALESCE(p.last_name, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendance(r rowScanner) (types.AttendanceRecord, error) {
	var (
		rec       types.AttendanceRecord
		checkInMs int64
		checkOut  sql.NullInt64
		updatedMs int64
	)
	if err := r.Scan(&rec.ID, &rec.UID, &rec.DateKey, &checkInMs, &checkOut, &rec.Source, &updatedMs,
		&rec.FirstName, &rec.LastName); err != nil {
		return types.AttendanceRecord{}, err
	}
	rec.CheckIn = msToTime(checkInMs)
	rec.CheckOut = nullMsToTime(checkOut)
	rec.UpdatedAt = msToTime(updatedMs)
	return rec, nil
}

func (s *AttendanceStore) FindDay(ctx context.Context, uid, dateKey string) (types.AttendanceRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+attendanceColumns+`
FROM attendance a LEFT JOIN people p ON p.uid = a.uid
WHERE a.uid = ? AND a.date_key = ?;
`, uid, dateKey)
	rec, err := scanAttendance(row)
	if isNoRows(err) {
		return types.AttendanceRecord{}, store.ErrNotFound
	}
	if err != nil {
		return types.AttendanceRecord{}, fmt.Errorf("FindDay query: %w", err)
	}
	return rec, nil
}

func (s *AttendanceStore) InsertCheckIn(ctx context.Context, rec types.AttendanceRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	if rec.Source == "" {
		rec.Source = "scan"
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO attendance(id, uid, date_key, check_in_ms, check_out_ms, source, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?);
`, rec.ID, rec.UID, rec.DateKey, rec.CheckIn.UTC().UnixMilli(), timeToNullMs(rec.CheckOut),
			rec.Source, rec.UpdatedAt.UTC().UnixMilli())
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		if err != nil {
			return fmt.Errorf("InsertCheckIn: %w", err)
		}
		return nil
	})
}

func (s *AttendanceStore) CloseSession(ctx context.Context, id string, checkOut time.Time) error {
	now := time.Now().UTC().UnixMilli()
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Guarded on check_out_ms IS NULL so two racing scans cannot both close.
		res, err := tx.ExecContext(ctx, `
UPDATE attendance
SET check_out_ms = ?,
    updated_at_ms = ?
WHERE id = ? AND check_out_ms IS NULL;
`, checkOut.UTC().UnixMilli(), now, id)
		if err != nil {
			return fmt.Errorf("CloseSession: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *AttendanceStore) Get(ctx context.Context, id string) (types.AttendanceRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+attendanceColumns+`
FROM attendance a LEFT JOIN people p ON p.uid = a.uid
WHERE a.id = ?;
`, id)
	rec, err := scanAttendance(row)
	if isNoRows(err) {
		return types.AttendanceRecord{}, store.ErrNotFound
	}
	if err != nil {
		return types.AttendanceRecord{}, fmt.Errorf("Get attendance: %w", err)
	}
	return rec, nil
}

func (s *AttendanceStore) ListByDate(ctx context.Context, dateKey string) ([]types.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+attendanceColumns+`
FROM attendance a LEFT JOIN people p ON p.uid = a.uid
WHERE a.date_key = ?
ORDER BY a.check_in_ms;
`, dateKey)
	if err != nil {
		return nil, fmt.Errorf("ListByDate query: %w", err)
	}
	defer rows.Close()

	out := make([]types.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByDate scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *AttendanceStore) Update(ctx context.Context, rec types.AttendanceRecord) error {
	now := time.Now().UTC().UnixMilli()
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE attendance
SET check_in_ms = ?,
    check_out_ms = ?,
    source = ?,
    updated_at_ms = ?
WHERE id = ?;
`, rec.CheckIn.UTC().UnixMilli(), timeToNullMs(rec.CheckOut), rec.Source, now, rec.ID)
		if err != nil {
			return fmt.Errorf("Update attendance: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *AttendanceStore) Delete(ctx context.Context, id string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE id = ?;`, id)
		if err != nil {
			return fmt.Errorf("Delete attendance: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}
