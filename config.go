package sentryzapreporter

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process level settings of the reporter.
// An empty DSN disables reporting entirely.
type Config struct {
	DSN            string        `env:"SENTRY_DSN"`
	Environment    string        `env:"SENTRY_ENVIRONMENT"`
	Release        string        `env:"SENTRY_RELEASE"`
	Debug          bool          `env:"SENTRY_DEBUG"`
	FlushTimeout   time.Duration `env:"SENTRY_FLUSH_TIMEOUT" envDefault:"2s"`
	MaxBreadcrumbs int           `env:"SENTRY_MAX_BREADCRUMBS"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// Enabled reports whether a destination address is configured.
func (c Config) Enabled() bool {
	return c.DSN != ""
}
