package terminal

import (
	"context"
	"log"
	"time"
)

// Clock stamps scans.  Before the system clock has been set (by NTP or an
// RTC) it reads near the epoch, so Timestamp waits briefly for it.
type Clock struct {
	now       func() time.Time
	threshold time.Time
	timeout   time.Duration
	poll      time.Duration
	logger    *log.Logger
	sleep     sleepFunc
}

// NewClock treats any time before threshold (unix seconds) as unsynced.
func NewClock(threshold int64, timeout time.Duration, logger *log.Logger) *Clock {
	return &Clock{
		now:       time.Now,
		threshold: time.Unix(threshold, 0),
		timeout:   timeout,
		poll:      250 * time.Millisecond,
		logger:    logger,
		sleep:     sleepCtx,
	}
}

// Synced reports whether the clock is past the sanity threshold.
func (c *Clock) Synced() bool { return c.now().After(c.threshold) }

// Timestamp waits up to the timeout for sync and returns the current UTC
// time.  On timeout it logs a warning and returns the unsynced time anyway.
func (c *Clock) Timestamp(ctx context.Context) time.Time {
	if c.Synced() {
		return c.now().UTC()
	}
	polls := int(c.timeout / c.poll)
	for i := 0; i < polls; i++ {
		if c.sleep(ctx, c.poll) != nil {
			break
		}
		if c.Synced() {
			return c.now().UTC()
		}
	}
	c.logger.Printf("time sync timeout after %s; stamping with unsynced clock", c.timeout)
	return c.now().UTC()
}
