package store

import (
	"context"
	"time"
)

// ScanEventRecord captures one POSTed scan for the audit log, whatever the
// decision was.
type ScanEventRecord struct {
	UID         string
	ReceivedAt  time.Time
	RequestedAt *time.Time // device-reported timestamp, if it parsed
	Action      string     // reply action, or "error"
	DateKey     string
}

// ScanEventStore persists scans as an append-only audit log.
type ScanEventStore interface {
	RecordEvent(ctx context.Context, rec ScanEventRecord) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
