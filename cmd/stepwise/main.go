// Package main provides the entry point for the stepwise CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zoobzio/stepwise/cmd/stepwise/commands"
	"github.com/zoobzio/stepwise/internal/mcp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &commands.Options{}

	rootCmd := &cobra.Command{
		Use:   "stepwise",
		Short: "Stepwise - a thought ledger for structured reasoning",
		Long: `Stepwise records reasoning one thought at a time, tracking revisions,
branches and progress, and serves the ledger to AI agents over MCP.

Commands:
  serve     Run the MCP server (stdio or streamable HTTP)
  replay    Feed a scripted list of thoughts through a fresh ledger
  audit     List a session's archived thoughts`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: ./stepwise.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "enable debug logging to stderr")

	rootCmd.AddCommand(commands.NewServeCommand(opts))
	rootCmd.AddCommand(commands.NewReplayCommand(opts))
	rootCmd.AddCommand(commands.NewAuditCommand(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stepwise %s\n", mcp.Version)
		},
	}
}
