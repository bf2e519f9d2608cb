package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"lofmon/pkg/errors"
)

type Config struct {
	App           AppConfig
	Redis         RedisConfig
	Feed          FeedConfig
	Workers       WorkerConfig
	Metrics       MetricsConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"lofmon"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type FeedConfig struct {
	BaseURL           string        `envconfig:"FEED_BASE_URL" default:"https://www.jisilu.cn"`
	Timeout           time.Duration `envconfig:"FEED_TIMEOUT" default:"15s"`
	RequestsPerMinute int           `envconfig:"FEED_REQUESTS_PER_MINUTE" default:"20"`
	CacheTTL          time.Duration `envconfig:"FEED_CACHE_TTL" default:"5m"`
}

// WorkerConfig contains intervals for the background workers. The feed
// refresh matches the cache TTL so a tick normally misses the cache;
// holding status only moves on day boundaries, so an hourly pass is plenty.
type WorkerConfig struct {
	OpportunityRefreshInterval time.Duration `envconfig:"WORKER_OPPORTUNITY_REFRESH_INTERVAL" default:"5m"`
	OpportunityRefreshEnabled  bool          `envconfig:"WORKER_OPPORTUNITY_REFRESH_ENABLED" default:"true"`
	HoldingStatusInterval      time.Duration `envconfig:"WORKER_HOLDING_STATUS_INTERVAL" default:"1h"`
	HoldingStatusEnabled       bool          `envconfig:"WORKER_HOLDING_STATUS_ENABLED" default:"true"`
	CacheSweepInterval         time.Duration `envconfig:"WORKER_CACHE_SWEEP_INTERVAL" default:"30m"`
	CacheSweepEnabled          bool          `envconfig:"WORKER_CACHE_SWEEP_ENABLED" default:"true"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from the environment, with an optional .env file
// for development.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be fully populated already.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "process env config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Feed.RequestsPerMinute <= 0 {
		return errors.NewValidationError("FEED_REQUESTS_PER_MINUTE", "must be positive", c.Feed.RequestsPerMinute)
	}
	if c.ErrorTracking.Enabled && c.ErrorTracking.SentryDSN == "" {
		return errors.NewValidationError("SENTRY_DSN", "required when error tracking is enabled", "")
	}
	return nil
}
