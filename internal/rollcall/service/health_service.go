package service

import (
	"context"
	"time"

	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

// HealthService answers GET ?health=1.  It reports ok only when every
// configured backend answers a ping within the timeout.
type HealthService struct {
	pingers []store.Pinger
	timeout time.Duration
	now     func() time.Time
}

func NewHealthService(timeout time.Duration, pingers ...store.Pinger) *HealthService {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthService{pingers: pingers, timeout: timeout, now: time.Now}
}

func (s *HealthService) Check(ctx context.Context) (types.HealthReply, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply := types.HealthReply{Status: types.StatusOK, ServerTime: s.now().UTC().Format(time.RFC3339Nano)}
	for _, p := range s.pingers {
		if err := p.Ping(ctx); err != nil {
			reply.Status = types.StatusError
			return reply, err
		}
	}
	return reply, nil
}

// Ping lets the gRPC health checker share the same backend probe.
func (s *HealthService) Ping(ctx context.Context) error {
	_, err := s.Check(ctx)
	return err
}
