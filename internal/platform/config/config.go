// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime parameters of the audit server.
type Config struct {
	// HTTP listen address for the API, websocket and metrics endpoints.
	ListenAddr string `env:"LOGOS_LISTEN_ADDR" envDefault:":8080"`

	// Path to the SQLite database file backing the state repository.
	DBPath string `env:"LOGOS_DB_PATH" envDefault:"logos.db"`

	// Interval of the audit cycle (decay, rule evaluation, rate update).
	TickInterval time.Duration `env:"LOGOS_TICK_INTERVAL" envDefault:"1s"`

	// Poll interval for remote state and rule-set change detection.
	WatchInterval time.Duration `env:"LOGOS_WATCH_INTERVAL" envDefault:"2s"`

	// Account that absorbs external-value exposure on bridge-out acts.
	BridgeAccount string `env:"LOGOS_BRIDGE_ACCOUNT" envDefault:"CORE_BANK_A"`

	// Optional YAML file with a rule set to seed or replace the stored rules.
	RulesFile string `env:"LOGOS_RULES_FILE"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
