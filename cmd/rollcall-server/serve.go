package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rollcall-dev/rollcall/internal/config"
	"github.com/rollcall-dev/rollcall/internal/grpcapi"
	"github.com/rollcall-dev/rollcall/internal/httpapi"
	"github.com/rollcall-dev/rollcall/internal/metrics"
	"github.com/rollcall-dev/rollcall/internal/rollcall/events"
	"github.com/rollcall-dev/rollcall/internal/rollcall/service"
)

func serve() error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	logger := log.New(os.Stdout, "rollcall-server ", log.LstdFlags|log.LUTC)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores
	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	registryCache, closeCache := openCache(ctx, cfg, logger)
	defer closeCache()

	// Metrics
	var (
		m        *metrics.Server
		gatherer prometheus.Gatherer
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.NewServer(reg)
		gatherer = reg
	}

	// Events
	var publisher service.EventPublisher = service.NopPublisher{}
	if cfg.NATSURL != "" {
		np, err := events.NewNATSPublisher(events.NATSConfig{
			URL:           cfg.NATSURL,
			SubjectPrefix: cfg.NATSSubjectPrefix,
			Name:          appName,
		}, logger)
		if err != nil {
			logger.Printf("nats unavailable url=%s err=%v; events disabled", cfg.NATSURL, err)
		} else {
			defer np.Close()
			publisher = np
		}
	}

	// Services
	attendanceSvc := service.NewAttendanceService(service.AttendanceDeps{
		People:     be.people,
		Attendance: be.attendance,
		Events:     be.events,
		Publisher:  publisher,
		Metrics:    m,
		Logger:     logger,
		Location:   loc,
	})
	rosterSvc := service.NewRosterService(service.RosterDeps{
		People:   be.people,
		Cache:    registryCache,
		CacheTTL: cfg.RegistryCacheTTL,
		Metrics:  m,
		Logger:   logger,
	})
	healthSvc := service.NewHealthService(2*time.Second, be.pinger)

	pruner := service.NewScanEventPruner(be.events, service.PrunerConfig{
		RetentionDays: cfg.ScanRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	if cfg.AdminKey == "" {
		logger.Printf("ROLLCALL_ADMIN_KEY not set; dashboard API disabled")
	}

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:            logger,
		Addr:              cfg.HTTPAddr,
		EndpointPath:      cfg.EndpointPath,
		AttendanceService: attendanceSvc,
		RosterService:     rosterSvc,
		HealthService:     healthSvc,
		Metrics:           m,
		Gatherer:          gatherer,
		AdminKey:          cfg.AdminKey,
		CORSOrigins:       cfg.CORSOriginList(),
	})

	go func() {
		logger.Printf("listening on %s endpoint=%s", cfg.HTTPAddr, cfg.EndpointPath)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	// gRPC health
	var grpcHealth *grpcapi.HealthServer
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Printf("grpc listen addr=%s err=%v; grpc health disabled", cfg.GRPCAddr, err)
		} else {
			grpcHealth = grpcapi.NewHealthServer(healthSvc, cfg.HealthInterval, logger)
			grpcHealth.Start(ctx)
			go func() {
				logger.Printf("grpc health listening on %s", cfg.GRPCAddr)
				if err := grpcHealth.Serve(lis); err != nil {
					logger.Printf("grpc server error: %v", err)
				}
			}()
		}
	}

	<-ctx.Done()
	logger.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if grpcHealth != nil {
		grpcHealth.Stop()
	}
	_ = srv.Shutdown(shutdownCtx)
	return nil
}
