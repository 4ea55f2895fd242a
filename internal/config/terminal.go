package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Terminal configures rollcall-terminal.  Defaults reproduce the timing a
// single wall-mounted reader has always used.
type Terminal struct {
	Endpoint           string `envconfig:"ENDPOINT" required:"true"`
	InsecureSkipVerify bool   `envconfig:"INSECURE_SKIP_VERIFY" default:"true"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	ProbeTimeout   time.Duration `envconfig:"PROBE_TIMEOUT" default:"5s"`
	MaxAttempts    int           `envconfig:"MAX_ATTEMPTS" default:"3"`
	RetryBackoff   time.Duration `envconfig:"RETRY_BACKOFF" default:"1s"`
	Debounce       time.Duration `envconfig:"DEBOUNCE" default:"1200ms"`

	JoinPolls     int           `envconfig:"JOIN_POLLS" default:"20"`
	JoinPollDelay time.Duration `envconfig:"JOIN_POLL_DELAY" default:"500ms"`

	SyncThreshold int64         `envconfig:"SYNC_THRESHOLD" default:"1700000000"` // unix seconds
	SyncTimeout   time.Duration `envconfig:"SYNC_TIMEOUT" default:"10s"`

	RadioDriver    string `envconfig:"RADIO_DRIVER" default:"nmcli"` // nmcli | none
	RadioInterface string `envconfig:"RADIO_INTERFACE"`
	ReaderDevice   string `envconfig:"READER_DEVICE" default:"-"` // "-" reads stdin
	NetworksFile   string `envconfig:"NETWORKS_FILE" default:"/etc/rollcall/networks.yaml"`

	MetricsAddr string `envconfig:"METRICS_ADDR"` // empty disables
}

func LoadTerminal() (Terminal, error) {
	loadDotEnv()

	var cfg Terminal
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Terminal{}, fmt.Errorf("load terminal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Terminal{}, err
	}
	return cfg, nil
}

func (c Terminal) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ROLLCALL_ENDPOINT must be an http(s) URL, got %q", c.Endpoint)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("ROLLCALL_MAX_ATTEMPTS must be at least 1")
	}
	if c.JoinPolls < 1 {
		return fmt.Errorf("ROLLCALL_JOIN_POLLS must be at least 1")
	}
	switch c.RadioDriver {
	case "nmcli", "none":
	default:
		return fmt.Errorf("unknown ROLLCALL_RADIO_DRIVER %q", c.RadioDriver)
	}
	return nil
}
