package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Server configures rollcall-server.  Every field is read from
// ROLLCALL_<envconfig name>.
type Server struct {
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr     string `envconfig:"GRPC_ADDR" default:":9090"` // empty disables gRPC health
	EndpointPath string `envconfig:"ENDPOINT_PATH" default:"/v1/attendance"`

	Env string `envconfig:"ENV" default:"dev"` // "dev" | "prod"

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"` // memory | sqlite | mysql
	DBPath   string `envconfig:"DB_PATH" default:"./data/rollcall.db"`
	DBDSN    string `envconfig:"DB_DSN"`

	TimeZone string `envconfig:"TIMEZONE" default:"UTC"`

	AdminKey    string `envconfig:"ADMIN_KEY"`
	CORSOrigins string `envconfig:"CORS_ORIGINS"`

	RedisAddr        string        `envconfig:"REDIS_ADDR"` // empty uses the in-process cache
	RedisPassword    string        `envconfig:"REDIS_PASSWORD"`
	RedisDB          int           `envconfig:"REDIS_DB" default:"0"`
	RegistryCacheTTL time.Duration `envconfig:"REGISTRY_CACHE_TTL" default:"1m"`

	NATSURL           string `envconfig:"NATS_URL"` // empty disables event publishing
	NATSSubjectPrefix string `envconfig:"NATS_SUBJECT_PREFIX" default:"rollcall.attendance"`

	// Scan audit retention
	ScanRetentionDays  int `envconfig:"SCAN_RETENTION_DAYS" default:"90"` // 0 = keep forever
	PruneIntervalHours int `envconfig:"PRUNE_INTERVAL_HOURS" default:"6"`

	HealthInterval time.Duration `envconfig:"HEALTH_INTERVAL" default:"15s"`
	MetricsEnabled bool          `envconfig:"METRICS_ENABLED" default:"true"`
}

func LoadServer() (Server, error) {
	loadDotEnv()

	var cfg Server
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Server{}, fmt.Errorf("load server config: %w", err)
	}

	cfg.Env = strings.ToLower(cfg.Env)
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) Validate() error {
	switch c.DBDriver {
	case "memory", "sqlite":
	case "mysql":
		if c.DBDSN == "" {
			return fmt.Errorf("ROLLCALL_DB_DSN is required when ROLLCALL_DB_DRIVER=mysql")
		}
	default:
		return fmt.Errorf("unknown ROLLCALL_DB_DRIVER %q", c.DBDriver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Env == "prod" && c.AdminKey == "" {
		return fmt.Errorf("ROLLCALL_ADMIN_KEY is required in prod")
	}
	if c.ScanRetentionDays < 0 || c.PruneIntervalHours < 0 {
		return fmt.Errorf("retention and prune interval must not be negative")
	}
	return nil
}

// Location is the zone used to derive attendance date keys.
func (c Server) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("ROLLCALL_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c Server) CORSOriginList() []string {
	return splitCSV(c.CORSOrigins)
}

func (c Server) IsDev() bool { return c.Env == "dev" }
