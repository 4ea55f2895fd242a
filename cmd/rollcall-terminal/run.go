package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rollcall-dev/rollcall/internal/config"
	"github.com/rollcall-dev/rollcall/internal/terminal"
	"github.com/rollcall-dev/rollcall/internal/terminal/reader"
)

func run(parent context.Context, verbose bool) error {
	if parent == nil {
		parent = context.Background()
	}
	st, err := build(os.Stdout, verbose)
	if err != nil {
		return err
	}
	logger := st.logger

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Card reader
	var src io.Reader = os.Stdin
	if st.cfg.ReaderDevice != "-" {
		f, err := os.Open(st.cfg.ReaderDevice)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	cards := reader.NewLineReader(src, logger)

	// Metrics
	var metricsSrv *http.Server
	if st.registry != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(st.registry, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: st.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Printf("metrics listening on %s", st.cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("metrics server error: %v", err)
			}
		}()
	}

	// Network list reloads
	var updates <-chan config.Networks
	if w, err := config.WatchNetworks(st.cfg.NetworksFile, logger); err != nil {
		logger.Printf("networks watch disabled path=%s err=%v", st.cfg.NetworksFile, err)
	} else {
		defer w.Close()
		go w.Run(ctx)
		updates = w.Updates()
	}

	session := &terminal.Session{
		Roster:    st.roster,
		Network:   st.network,
		Prober:    st.prober,
		Submitter: st.submitter,
		Clock:     st.clock,
		Presenter: st.presenter,
		Reader:    cards,
		Metrics:   st.metrics,
		Logger:    logger,
		Debounce:  st.cfg.Debounce,
	}
	session.Boot(ctx)
	if session.Limited() {
		logger.Printf("limited mode: scans will still be attempted")
	}

	err = session.Run(ctx, updates)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
