// Package main provides the entry point for the edrdr CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version        = "0.1.0-dev"
	globalDir      string
	globalLogLevel string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := newRootCmd()
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "edrdr",
		Short:         "Ownership analytics over the history of the Ukrainian companies registry",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalDir, "dir", "C", "", "Workspace directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newInitCmd(),
		newRevisionsCmd(),
		newImportCmd(),
		newWatchListCmd(),
		newOwnershipCmd(),
		newCapitalCmd(),
		newSnapshotCmd(),
		newPeriodsCmd(),
		newHistoryCmd(),
		newMassRegCmd(),
		newReportCmd(),
		newExportCmd(),
		newIndexCmd(),
		newSearchCmd(),
		newServeCmd(),
		newAuditCmd(),
	)

	return rootCmd
}
