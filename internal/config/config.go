// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - One Config serves all three services; each command reads the fields it needs.
//   - Provide New(ctx) to build a Config with defaults.
//   - External errors must be wrapped via this package's sentinel errors.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LedgerAddr, OracleAddr and WeaverAddr are the HTTP listen addresses.
	LedgerAddr string `koanf:"ledger_addr"`
	OracleAddr string `koanf:"oracle_addr"`
	WeaverAddr string `koanf:"weaver_addr"`

	// LedgerURL and WeaverURL are the base URLs the oracle calls.
	LedgerURL string `koanf:"ledger_url"`
	WeaverURL string `koanf:"weaver_url"`

	// DownstreamTimeoutMS bounds each outbound call made by the oracle.
	DownstreamTimeoutMS int `koanf:"downstream_timeout_ms"`

	// TuneQueueSize bounds the weaver's in-memory tune queue.
	TuneQueueSize int `koanf:"tune_queue_size"`

	// TuneWorkerCount sets the number of weaver workers.
	TuneWorkerCount int `koanf:"tune_worker_count"`

	// DedupeSize bounds the ledger's tx_id idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// GenesisFile optionally seeds the ledger (.yaml, .yml or .toml).
	GenesisFile string `koanf:"genesis_file"`

	// AllowNegativeRewards disables the ledger's non-negative reward check.
	AllowNegativeRewards bool `koanf:"allow_negative_rewards"`

	// RateLimitRPS and RateLimitBurst bound analyses per account. RPS <= 0 disables.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LedgerAddr:           ":10001",
		OracleAddr:           ":10002",
		WeaverAddr:           ":10003",
		LedgerURL:            "http://localhost:10001",
		WeaverURL:            "http://localhost:10003",
		DownstreamTimeoutMS:  5000,
		TuneQueueSize:        10_000,
		TuneWorkerCount:      runtime.NumCPU(),
		DedupeSize:           100_000,
		GenesisFile:          "",
		AllowNegativeRewards: false,
		RateLimitRPS:         0,
		RateLimitBurst:       10,
	}
}
