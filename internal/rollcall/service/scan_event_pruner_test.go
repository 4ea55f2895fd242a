package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rollcall-dev/rollcall/internal/rollcall/service"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store/memory"
)

func TestScanEventPruner_DisabledWhenRetentionZero(t *testing.T) {
	es := memory.NewScanEventStore()
	pruner := service.NewScanEventPruner(es, service.PrunerConfig{RetentionDays: 0}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pruner.Start(ctx)
	pruner.Stop()
}

func TestScanEventPruner_PruneOnce(t *testing.T) {
	es := memory.NewScanEventStore()
	ctx := context.Background()

	_ = es.RecordEvent(ctx, store.ScanEventRecord{UID: "OLD", ReceivedAt: time.Now().UTC().AddDate(0, 0, -40)})
	_ = es.RecordEvent(ctx, store.ScanEventRecord{UID: "NEW", ReceivedAt: time.Now().UTC().AddDate(0, 0, -1)})

	pruner := service.NewScanEventPruner(es, service.PrunerConfig{RetentionDays: 30}, silentLogger())
	if deleted := pruner.PruneOnce(ctx); deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	evs := es.Events()
	if len(evs) != 1 || evs[0].UID != "NEW" {
		t.Errorf("expected only NEW to remain, got %+v", evs)
	}
}

func TestScanEventPruner_StartStop(t *testing.T) {
	es := memory.NewScanEventStore()
	_ = es.RecordEvent(context.Background(), store.ScanEventRecord{UID: "OLD", ReceivedAt: time.Now().UTC().AddDate(0, 0, -40)})

	pruner := service.NewScanEventPruner(es, service.PrunerConfig{RetentionDays: 30, IntervalHours: 1}, silentLogger())
	pruner.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for len(es.Events()) != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	pruner.Stop()

	if n := len(es.Events()); n != 0 {
		t.Errorf("expected startup prune to clear old rows, %d left", n)
	}
}
