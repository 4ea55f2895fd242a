package sqlstore_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store/sqlstore"
)

func TestScanEventStore_RecordEvent_Columns(t *testing.T) {
	conn := openTestDB(t)
	es := sqlstore.NewScanEventStore(conn, newTestWriter(t, conn))

	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	reqAt := now.Add(-300 * time.Millisecond)

	err := es.RecordEvent(context.Background(), store.ScanEventRecord{
		UID:         "AB12",
		ReceivedAt:  now,
		RequestedAt: &reqAt,
		Action:      "checkin",
		DateKey:     "2026-02-15",
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}

	var (
		action      string
		receivedMs  int64
		requestedMs sql.NullInt64
	)
	err = conn.QueryRowContext(context.Background(), `
SELECT action, received_at_ms, requested_at_ms FROM scan_events WHERE uid = ?`, "AB12",
	).Scan(&action, &receivedMs, &requestedMs)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if action != "checkin" {
		t.Errorf("expected action=checkin, got %q", action)
	}
	if receivedMs != now.UnixMilli() {
		t.Errorf("expected received_at_ms=%d, got %d", now.UnixMilli(), receivedMs)
	}
	if !requestedMs.Valid || requestedMs.Int64 != reqAt.UnixMilli() {
		t.Errorf("expected requested_at_ms=%d, got %v", reqAt.UnixMilli(), requestedMs)
	}
}

func TestScanEventStore_PruneOlderThan(t *testing.T) {
	conn := openTestDB(t)
	es := sqlstore.NewScanEventStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	now := time.Now().UTC()
	_ = es.RecordEvent(ctx, store.ScanEventRecord{UID: "OLD", ReceivedAt: now.AddDate(0, 0, -40), Action: "checkin"})
	_ = es.RecordEvent(ctx, store.ScanEventRecord{UID: "NEW", ReceivedAt: now.AddDate(0, 0, -1), Action: "checkin"})

	deleted, err := es.PruneOlderThan(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("PruneOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned, got %d", deleted)
	}

	var count int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM scan_events`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 surviving row, got %d", count)
	}
}
