package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/okian/aether/internal/adapters/http/api"
	"github.com/okian/aether/internal/app/ledger"
	"github.com/okian/aether/internal/app/oracle"
	"github.com/okian/aether/internal/app/weaver"
	"github.com/okian/aether/internal/config"
	"github.com/okian/aether/pkg/logger"
)

type ledgerCmd struct {
	addr    string
	genesis string
}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "serve the state ledger" }
func (*ledgerCmd) Usage() string {
	return `aether ledger [-addr <host:port>] [-genesis <file>]

  Serves account balances and applies PoccReward transactions.
  Configuration comes from AETHER_CONFIG and AETHER_* variables; flags win.

Examples:
  AETHER_CONFIG=configs/aether.yaml aether ledger
  aether ledger -genesis configs/genesis.yaml
`
}

func (c *ledgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address (overrides ledger_addr).")
	f.StringVar(&c.genesis, "genesis", "", "Genesis file to seed accounts from (overrides genesis_file).")
}

func (c *ledgerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	svc := newLedgerService(cfg, c.genesis)
	return serve(ctx, "ledger", override(cfg.LedgerAddr, c.addr), svc, api.NewLedgerServer(svc, svc))
}

func newLedgerService(cfg *config.Config, genesis string) *ledger.Service {
	return ledger.New(
		ledger.WithLogger(logger.Get().Named("ledger")),
		ledger.WithDedupeSize(cfg.DedupeSize),
		ledger.WithAllowNegativeRewards(cfg.AllowNegativeRewards),
		ledger.WithGenesisFile(override(cfg.GenesisFile, genesis)),
	)
}

type oracleCmd struct {
	addr      string
	ledgerURL string
	weaverURL string
}

func (*oracleCmd) Name() string     { return "oracle" }
func (*oracleCmd) Synopsis() string { return "serve the insight oracle" }
func (*oracleCmd) Usage() string {
	return `aether oracle [-addr <host:port>] [-ledger <url>] [-weaver <url>]

  Scores insights, records rewards on the ledger and notifies the weaver.
`
}

func (c *oracleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address (overrides oracle_addr).")
	f.StringVar(&c.ledgerURL, "ledger", "", "Ledger base URL (overrides ledger_url).")
	f.StringVar(&c.weaverURL, "weaver", "", "Weaver base URL (overrides weaver_url).")
}

func (c *oracleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	svc := newOracleService(cfg, c.ledgerURL, c.weaverURL)
	return serve(ctx, "oracle", override(cfg.OracleAddr, c.addr), svc, api.NewOracleServer(svc, svc))
}

func newOracleService(cfg *config.Config, ledgerURL, weaverURL string) *oracle.Service {
	return oracle.New(
		oracle.WithLogger(logger.Get().Named("oracle")),
		oracle.WithLedgerURL(override(cfg.LedgerURL, ledgerURL)),
		oracle.WithWeaverURL(override(cfg.WeaverURL, weaverURL)),
		oracle.WithTimeout(time.Duration(cfg.DownstreamTimeoutMS)*time.Millisecond),
		oracle.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)
}

type weaverCmd struct {
	addr    string
	workers int
}

func (*weaverCmd) Name() string     { return "weaver" }
func (*weaverCmd) Synopsis() string { return "serve the frequency weaver" }
func (*weaverCmd) Usage() string {
	return `aether weaver [-addr <host:port>] [-workers <n>]

  Acknowledges tune events and processes them on a worker pool.
`
}

func (c *weaverCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address (overrides weaver_addr).")
	f.IntVar(&c.workers, "workers", 0, "Worker count (overrides tune_worker_count).")
}

func (c *weaverCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.workers > 0 {
		cfg.TuneWorkerCount = c.workers
	}
	svc := newWeaverService(cfg)
	return serve(ctx, "weaver", override(cfg.WeaverAddr, c.addr), svc, api.NewWeaverServer(svc, svc))
}

func newWeaverService(cfg *config.Config) *weaver.Service {
	return weaver.New(
		weaver.WithLogger(logger.Get().Named("weaver")),
		weaver.WithQueueSize(cfg.TuneQueueSize),
		weaver.WithWorkerCount(cfg.TuneWorkerCount),
	)
}

// override returns fromFlag when set, else value.
func override(value, fromFlag string) string {
	if fromFlag != "" {
		return fromFlag
	}
	return value
}
