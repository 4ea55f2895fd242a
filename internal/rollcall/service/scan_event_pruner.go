package service

import (
	"context"
	"log"
	"time"

	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
)

// ScanEventPruner periodically deletes scan audit rows older than the
// retention period.  It runs on its own goroutine and exits when its context
// is cancelled or Stop is called.  Attendance rows are never touched; only
// the append-only scan_events log is trimmed.
//
// A retention of 0 disables pruning.
type ScanEventPruner struct {
	store     store.ScanEventStore
	retention time.Duration
	interval  time.Duration
	logger    *log.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// PrunerConfig holds the parameters for NewScanEventPruner.
type PrunerConfig struct {
	// RetentionDays is how many days of scan history to keep.
	// 0 means keep everything and the loop never starts.
	RetentionDays int

	// IntervalHours is the gap between prune passes.  Defaults to 6.
	IntervalHours int
}

// NewScanEventPruner builds a pruner without starting it; call Start to run
// the loop.
func NewScanEventPruner(s store.ScanEventStore, cfg PrunerConfig, logger *log.Logger) *ScanEventPruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &ScanEventPruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start launches the background loop.  The first pass runs immediately so a
// server restarted after a long outage clears its backlog, then passes
// repeat every interval.  The loop exits when ctx is cancelled or Stop is
// called.  With retention 0 Start only logs that pruning is disabled.
func (p *ScanEventPruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		p.logger.Printf("scan event pruner disabled (retention=0)")
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	go p.loop(ctx)

	p.logger.Printf("scan event pruner started retention=%dd interval=%dh",
		int(p.retention.Hours()/24), int(p.interval.Hours()))
}

// Stop cancels the loop and blocks until the pass in flight, if any, has
// returned.  It must only be called after Start.
func (p *ScanEventPruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *ScanEventPruner) loop(ctx context.Context) {
	defer close(p.done)

	p.PruneOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PruneOnce(ctx)
		}
	}
}

// PruneOnce deletes rows older than the retention and reports how many went.
func (p *ScanEventPruner) PruneOnce(ctx context.Context) int64 {
	cutoff := time.Now().UTC().Add(-p.retention)
	deleted, err := p.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Printf("scan event prune error: %v", err)
		return 0
	}
	if deleted > 0 {
		p.logger.Printf("scan event prune: deleted %d rows older than %s",
			deleted, cutoff.Format(time.RFC3339))
	}
	return deleted
}
