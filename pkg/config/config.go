package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// StoreConfig tunes the multi-version store.
type StoreConfig struct {
	// Shards is the number of stripes the key space is spread over.
	Shards int `yaml:"shards"`
}

// DriverConfig shapes the synthetic block the driver executes.
type DriverConfig struct {
	Workers      int `yaml:"workers"`
	Transactions int `yaml:"transactions"`
	Accounts     int `yaml:"accounts"`
	// DeltaEvery makes every n-th transaction record a counter delta
	// instead of a plain write.
	DeltaEvery int `yaml:"delta_every"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the full driver configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Driver  DriverConfig  `yaml:"driver"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns a configuration that runs without any file present.
func Default() *Config {
	return &Config{
		Store:   StoreConfig{Shards: 64},
		Driver:  DriverConfig{Workers: 8, Transactions: 256, Accounts: 32, DeltaEvery: 4},
		Metrics: MetricsConfig{Enabled: false, Addr: ":9190"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a yaml config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "validating config %s", path)
	}
	return cfg, nil
}

// Validate rejects settings the driver cannot run with.
func (c *Config) Validate() error {
	if c.Store.Shards <= 0 {
		return errors.New("store.shards must be positive")
	}
	if c.Driver.Workers <= 0 {
		return errors.New("driver.workers must be positive")
	}
	if c.Driver.Transactions <= 0 {
		return errors.New("driver.transactions must be positive")
	}
	if c.Driver.Accounts <= 0 {
		return errors.New("driver.accounts must be positive")
	}
	if c.Driver.DeltaEvery <= 0 {
		return errors.New("driver.delta_every must be positive")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics.addr required when metrics.enabled")
	}
	return nil
}
