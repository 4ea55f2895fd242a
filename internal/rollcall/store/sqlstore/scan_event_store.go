package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/rollcall-dev/rollcall/internal/db"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
)

type ScanEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewScanEventStore(db *sql.DB, writer *dbpkg.Worker) *ScanEventStore {
	return &ScanEventStore{db: db, writer: writer}
}

func (s *ScanEventStore) RecordEvent(ctx context.Context, rec store.ScanEventRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scan_events(uid, received_at_ms, requested_at_ms, action, date_key)
VALUES (?, ?, ?, ?, ?);
`, rec.UID, rec.ReceivedAt.UTC().UnixMilli(), timeToNullMs(rec.RequestedAt), rec.Action, rec.DateKey,
		); err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}
		return nil
	})
}

// PruneOlderThan deletes scan events received before cutoff and returns the
// number of rows removed.  Uses idx_scan_events_time.
func (s *ScanEventStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM scan_events
WHERE received_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
