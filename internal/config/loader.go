package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names consulted outside the AETHER_ prefix scan.
const (
	EnvConfigFile      = "AETHER_CONFIG"
	EnvLegacyLedgerURL = "STATE_LEDGER_URL"
	envPrefix          = "AETHER_"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if AETHER_CONFIG is set
//  3. env (prefix AETHER_), plus STATE_LEDGER_URL when ledger_url is unset
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// AETHER_LEDGER_URL -> ledger_url. Underscores are preserved to match
	// the flat koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	if !k.Exists("ledger_url") {
		if legacy := os.Getenv(EnvLegacyLedgerURL); legacy != "" {
			if err := k.Set("ledger_url", legacy); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
			}
		}
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first structural problem with the configuration.
func (c *Config) Validate() error {
	switch {
	case c.LedgerAddr == "":
		return fmt.Errorf("%w: ledger_addr must not be empty", ErrInvalidConfig)
	case c.OracleAddr == "":
		return fmt.Errorf("%w: oracle_addr must not be empty", ErrInvalidConfig)
	case c.WeaverAddr == "":
		return fmt.Errorf("%w: weaver_addr must not be empty", ErrInvalidConfig)
	case c.DownstreamTimeoutMS < 0:
		return fmt.Errorf("%w: downstream_timeout_ms must not be negative", ErrInvalidConfig)
	case c.RateLimitRPS > 0 && c.RateLimitBurst <= 0:
		return fmt.Errorf("%w: rate_limit_burst must be positive when rate_limit_rps is set", ErrInvalidConfig)
	}
	return nil
}
