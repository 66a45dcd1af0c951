// Package config loads runtime configuration from ARREAR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/warp/arrear-engine/arrear"
)

// Prefix is prepended to every variable name: ADDR is read from ARREAR_ADDR.
const Prefix = "ARREAR"

// Config holds runtime configuration for the server and CLI.
type Config struct {
	Addr         string        `envconfig:"ADDR" default:":8080"`
	DB           string        `envconfig:"DB" default:"arrear.db"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Empty means the embedded reference data.
	ReferenceFile string `envconfig:"REFERENCE_FILE"`

	RateLimit   int      `envconfig:"RATE_LIMIT" default:"60"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`

	// Zero disables pruning of saved reports.
	Retention         time.Duration `envconfig:"RETENTION" default:"720h"`
	RetentionInterval time.Duration `envconfig:"RETENTION_INTERVAL" default:"1h"`

	SuppressIncrementOnPromotion bool   `envconfig:"SUPPRESS_INCREMENT_ON_PROMOTION" default:"true"`
	IncrementTiming              string `envconfig:"INCREMENT_TIMING" default:"before_pay"`

	// Longest month range one computation may cover.
	MaxMonths int `envconfig:"MAX_MONTHS" default:"600"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address must be provided")
	}
	if c.DB == "" {
		return errors.New("database path must be provided")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimit)
	}
	if c.Retention < 0 {
		return fmt.Errorf("retention must not be negative, got %s", c.Retention)
	}
	if c.Retention > 0 && c.RetentionInterval <= 0 {
		return fmt.Errorf("retention interval must be positive, got %s", c.RetentionInterval)
	}
	if c.MaxMonths <= 0 {
		return fmt.Errorf("max months must be positive, got %d", c.MaxMonths)
	}
	if _, ok := arrear.ParseIncrementTiming(c.IncrementTiming); !ok {
		return fmt.Errorf("unknown increment timing %q", c.IncrementTiming)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Policy returns the engine policy the configuration selects.
func (c *Config) Policy() arrear.Policy {
	timing, _ := arrear.ParseIncrementTiming(c.IncrementTiming)
	return arrear.Policy{
		SuppressIncrementOnPromotion: c.SuppressIncrementOnPromotion,
		IncrementTiming:              timing,
	}
}

// EngineOptions returns the engine options the configuration selects.
func (c *Config) EngineOptions() []arrear.Option {
	return []arrear.Option{
		arrear.WithPolicy(c.Policy()),
		arrear.WithMaxMonths(c.MaxMonths),
	}
}
