// Package grpcapi exposes the standard grpc.health.v1 service so load
// balancers and orchestrators can probe the server without speaking the
// terminal protocol.
package grpcapi

import (
	"context"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rollcall-dev/rollcall/internal/rollcall/store"
)

// ServiceName is the health service name reported alongside the overall
// ("") status.
const ServiceName = "rollcall.Attendance"

// HealthServer serves grpc.health.v1 and keeps its status in step with the
// store by pinging it on an interval.
type HealthServer struct {
	grpc     *grpc.Server
	health   *health.Server
	pinger   store.Pinger
	interval time.Duration
	logger   *log.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewHealthServer(pinger store.Pinger, interval time.Duration, logger *log.Logger) *HealthServer {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &HealthServer{
		grpc:     gs,
		health:   hs,
		pinger:   pinger,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start runs one check and then the checker loop until ctx is cancelled or
// Stop is called.
func (s *HealthServer) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.check(ctx)
	go s.loop(ctx)
}

// Serve blocks serving lis until Stop.
func (s *HealthServer) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop flips every service to NOT_SERVING and stops the gRPC server.
func (s *HealthServer) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *HealthServer) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *HealthServer) check(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.pinger.Ping(pingCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Printf("grpc health: store ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
