package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "aggcache",
		Short: "Inspect and exercise the aggregate read cache",
		Long: `aggcache drives the process local aggregate cache used by the customer and
rental read paths. It prints the effective configuration and runs load
simulations that report per namespace cache health.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error), env AGGCACHE_LOG_LEVEL")
	root.PersistentFlags().String("log-format", "", "log format (console, json), env AGGCACHE_LOG_FORMAT")
	root.PersistentFlags().String("config", "", "path to a YAML configuration file")
	root.AddCommand(newConfigCommand(), newSimulateCommand())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
