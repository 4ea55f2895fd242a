package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rollcall-dev/rollcall/internal/config"
	"github.com/rollcall-dev/rollcall/internal/db"
	"github.com/rollcall-dev/rollcall/internal/rollcall/cache"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store/memory"
	"github.com/rollcall-dev/rollcall/internal/rollcall/store/sqlstore"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

// backend bundles the stores for the configured driver.
type backend struct {
	people     store.PersonStore
	attendance store.AttendanceStore
	events     store.ScanEventStore
	pinger     store.Pinger
	close      func()
}

type pingingPersonStore interface {
	store.PersonStore
	store.Pinger
}

func openBackend(ctx context.Context, cfg config.Server, logger *log.Logger) (*backend, error) {
	if cfg.DBDriver == "memory" {
		var seed []types.Person
		if cfg.IsDev() {
			seed = devPeople()
		}
		people := memory.NewPersonStore(seed)
		logger.Printf("store=memory people=%d", len(seed))
		return &backend{
			people:     people,
			attendance: memory.NewAttendanceStore(),
			events:     memory.NewScanEventStore(),
			pinger:     people,
			close:      func() {},
		}, nil
	}

	conn, err := db.Open(ctx, db.Config{Driver: cfg.DBDriver, Path: cfg.DBPath, DSN: cfg.DBDSN})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	writer := db.NewWorker(conn)

	var people pingingPersonStore = sqlstore.NewPersonStore(conn, writer, cfg.DBDriver)
	logger.Printf("store=%s", cfg.DBDriver)
	return &backend{
		people:     people,
		attendance: sqlstore.NewAttendanceStore(conn, writer),
		events:     sqlstore.NewScanEventStore(conn, writer),
		pinger:     people,
		close: func() {
			writer.Close()
			_ = conn.Close()
		},
	}, nil
}

// openCache prefers Redis and falls back to the in-process cache so a missing
// Redis never keeps the endpoint down.
func openCache(ctx context.Context, cfg config.Server, logger *log.Logger) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(), func() {}
	}
	dialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rc, err := cache.NewRedisCache(dialCtx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Printf("redis unavailable addr=%s err=%v; using memory cache", cfg.RedisAddr, err)
		return cache.NewMemoryCache(), func() {}
	}
	logger.Printf("cache=redis addr=%s", cfg.RedisAddr)
	return rc, func() { _ = rc.Close() }
}

func devPeople() []types.Person {
	out := make([]types.Person, 0, len(db.DefaultDevRoster))
	for _, p := range db.DefaultDevRoster {
		out = append(out, types.Person{UID: p.UID, FirstName: p.FirstName, LastName: p.LastName})
	}
	return out
}
