package main

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rollcall-dev/rollcall/internal/config"
	"github.com/rollcall-dev/rollcall/internal/metrics"
	"github.com/rollcall-dev/rollcall/internal/terminal"
	"github.com/rollcall-dev/rollcall/internal/terminal/console"
	"github.com/rollcall-dev/rollcall/internal/terminal/radio"
)

const displayWidth = 16

// stack is every terminal component except the card reader, built from one
// config.  The one-shot subcommands use parts of it.
type stack struct {
	cfg       config.Terminal
	logger    *log.Logger
	metrics   *metrics.Terminal
	registry  *prometheus.Registry // nil when metrics are disabled
	presenter *terminal.Presenter
	network   *terminal.SessionManager
	prober    *terminal.Prober
	roster    *terminal.Roster
	submitter *terminal.Submitter
	clock     *terminal.Clock
}

func build(out io.Writer, verbose bool) (*stack, error) {
	cfg, err := config.LoadTerminal()
	if err != nil {
		return nil, err
	}
	logger := log.New(os.Stderr, "rollcall-terminal ", log.LstdFlags|log.LUTC)

	var (
		m   *metrics.Terminal
		reg *prometheus.Registry
	)
	if cfg.MetricsAddr != "" {
		reg = prometheus.NewRegistry()
		m = metrics.NewTerminal(reg)
	}

	networks, err := config.LoadNetworks(cfg.NetworksFile)
	if err != nil {
		// A wired terminal has nothing to join.
		if !(errors.Is(err, config.ErrNoNetworks) && cfg.RadioDriver == "none") {
			return nil, err
		}
	}

	client := terminal.NewHTTPClient(cfg.InsecureSkipVerify)
	presenter := terminal.NewPresenter(console.NewDisplay(out, displayWidth), console.NewBuzzer(out, verbose), displayWidth)
	network := terminal.NewSessionManager(
		radio.New(cfg.RadioDriver, cfg.RadioInterface),
		networks,
		terminal.NetworkConfig{Polls: cfg.JoinPolls, PollDelay: cfg.JoinPollDelay},
		presenter, m, logger,
	)

	return &stack{
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		registry:  reg,
		presenter: presenter,
		network:   network,
		prober:    terminal.NewProber(client, cfg.Endpoint, cfg.ProbeTimeout, logger),
		roster:    terminal.NewRoster(client, cfg.Endpoint, cfg.RequestTimeout, logger),
		submitter: terminal.NewSubmitter(client, cfg.Endpoint, network, terminal.SubmitConfig{
			MaxAttempts: cfg.MaxAttempts,
			Backoff:     cfg.RetryBackoff,
			Timeout:     cfg.RequestTimeout,
		}, m, logger),
		clock: terminal.NewClock(cfg.SyncThreshold, cfg.SyncTimeout, logger),
	}, nil
}
