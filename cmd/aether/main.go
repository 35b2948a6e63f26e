// Command aether runs one of the aether services, or drives them with load.
//
//	aether ledger   serve the state ledger
//	aether oracle   serve the insight oracle
//	aether weaver   serve the frequency weaver
//	aether loadgen  submit insights end to end and verify the ledger
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"github.com/okian/aether/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(int(subcommands.ExitFailure))
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&ledgerCmd{}, "services")
	commander.Register(&oracleCmd{}, "services")
	commander.Register(&weaverCmd{}, "services")
	commander.Register(&loadgenCmd{}, "tools")

	flag.Parse()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	_ = logger.Sync()
	os.Exit(int(status))
}
