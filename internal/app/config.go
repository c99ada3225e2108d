package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/sipertani/sipertani/internal/platform/cache"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"25s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://localhost:8000/api"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	PGDSN     string `envconfig:"PG_DSN" default:""`
	PGMaxConn int32  `envconfig:"PG_MAX_CONNS" default:"4"`

	WorkerConcurrency  int    `envconfig:"WORKER_CONCURRENCY" default:"5"`
	AuditRetentionDays int    `envconfig:"AUDIT_RETENTION_DAYS" default:"365"`
	AuditPruneCron     string `envconfig:"AUDIT_PRUNE_CRON" default:"30 2 * * *"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:""`

	OwnershipPolicy string `envconfig:"OWNERSHIP_POLICY" default:"preserve"`
	FallbackSamples bool   `envconfig:"FALLBACK_SAMPLES" default:"false"`
}

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory is applied first without overriding the process
// environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	c.OwnershipPolicy = strings.ToLower(strings.TrimSpace(c.OwnershipPolicy))
	switch c.OwnershipPolicy {
	case "preserve", "claim":
	default:
		return fmt.Errorf("OWNERSHIP_POLICY must be preserve or claim, got %q", c.OwnershipPolicy)
	}
	if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("BACKEND_URL must be an http(s) URL, got %q", c.BackendURL)
	}
	if c.AuditRetentionDays <= 0 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must be positive, got %d", c.AuditRetentionDays)
	}
	return nil
}

// Redis returns the connection options for the shared Redis instance.
func (c *Config) Redis() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
