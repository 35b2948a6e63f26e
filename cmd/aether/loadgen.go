package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/google/subcommands"

	"github.com/okian/aether/internal/loadtest"
	"github.com/okian/aether/pkg/logger"
)

const logFilePermission = 0600

type loadgenCmd struct {
	oracleURL string
	ledgerURL string
	weaverURL string
	accounts  int
	insights  int
	workers   int
	timeout   time.Duration
	logFile   string
	verbose   bool
}

func (*loadgenCmd) Name() string     { return "loadgen" }
func (*loadgenCmd) Synopsis() string { return "submit insights end to end and verify the ledger" }
func (*loadgenCmd) Usage() string {
	return `aether loadgen [-oracle <url>] [-ledger <url>] [-weaver <url>] [-accounts <n>] [-insights <n>] [-workers <n>]

  Health-checks the three services, submits insights for fresh accounts
  concurrently to the oracle and checks every skill tree on the ledger.

Examples:
  aether loadgen
  aether loadgen -accounts 200 -insights 50 -workers 32 -oracle http://localhost:10002
`
}

func (c *loadgenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.oracleURL, "oracle", "http://localhost:10002", "Oracle base URL.")
	f.StringVar(&c.ledgerURL, "ledger", "http://localhost:10001", "Ledger base URL.")
	f.StringVar(&c.weaverURL, "weaver", "http://localhost:10003", "Weaver base URL; empty skips its health check.")
	f.IntVar(&c.accounts, "accounts", 100, "Number of fresh accounts.")
	f.IntVar(&c.insights, "insights", 20, "Insights per account.")
	f.IntVar(&c.workers, "workers", runtime.NumCPU()*2, "Concurrent submitters.")
	f.DurationVar(&c.timeout, "timeout", 30*time.Second, "HTTP request timeout.")
	f.StringVar(&c.logFile, "log", "", "Also write logs to this file.")
	f.BoolVar(&c.verbose, "verbose", false, "Log every failed insight.")
}

func (c *loadgenCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.accounts < 1 || c.insights < 1 || c.workers < 1 {
		fmt.Fprintln(os.Stderr, "accounts, insights and workers must be positive")
		return subcommands.ExitUsageError
	}
	if c.logFile != "" {
		file, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	stats, err := loadtest.Run(ctx, &loadtest.Config{
		OracleURL: c.oracleURL,
		LedgerURL: c.ledgerURL,
		WeaverURL: c.weaverURL,
		Accounts:  c.accounts,
		Insights:  c.insights,
		Workers:   c.workers,
		Timeout:   c.timeout,
		Verbose:   c.verbose,
	})
	fmt.Println()
	if err != nil {
		logger.Get().Error(ctx, "load run failed", logger.Error(err))
		return subcommands.ExitFailure
	}
	fmt.Printf("accepted %d of %d insights in %s, %d accounts verified\n",
		stats.Accepted, stats.InsightsGenerated, stats.Duration.Round(time.Millisecond), stats.AccountsVerified)
	return subcommands.ExitSuccess
}
