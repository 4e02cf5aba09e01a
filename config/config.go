package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // presence-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Zoom struct {
	// WebhookSecret is usually supplied via ZOOM_WEBHOOK_SECRET_TOKEN; the
	// yaml field exists for local development. May legitimately be empty at
	// startup — verification then fails per request with 500.
	WebhookSecret string `yaml:"webhookSecret"`
}

// Presence holds tuning knobs as duration strings ("15s", "1h"); invalid or
// absent values fall back to the defaults below.
type Presence struct {
	StaleThreshold string `yaml:"staleThreshold"`
	SweepInterval  string `yaml:"sweepInterval"`
	DefaultTTL     string `yaml:"defaultTTL"`
	WebhookTTL     string `yaml:"webhookTTL"`
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Logging  Logging  `yaml:"logging"`
	Zoom     Zoom     `yaml:"zoom"`
	Presence Presence `yaml:"presence"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if path == "" {
		path = "./config/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Running on defaults plus environment is fine.
	default:
		return nil, err
	}

	if v := os.Getenv("ZOOM_WEBHOOK_SECRET_TOKEN"); v != "" {
		cfg.Zoom.WebhookSecret = v
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":3001"
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "presence-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
}

func (c *Config) StaleThreshold() time.Duration {
	return parseDurationOr(15*time.Second, c.Presence.StaleThreshold)
}

func (c *Config) SweepInterval() time.Duration {
	return parseDurationOr(5*time.Minute, c.Presence.SweepInterval)
}

func (c *Config) DefaultTTL() time.Duration {
	return parseDurationOr(time.Hour, c.Presence.DefaultTTL)
}

func (c *Config) WebhookTTL() time.Duration {
	return parseDurationOr(2*time.Hour, c.Presence.WebhookTTL)
}

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
