// Command dormctl is the CLI surface over the DORM catalog kernel: it
// loads domain/design documents, checks them, generates schema DDL,
// translates queries and plans migrations, per spec.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	rootCmd := &cobra.Command{
		Use:   "dormctl",
		Short: "DORM catalog kernel CLI",
		Long: `dormctl loads domain and design documents into a catalog, checks them
against DORM's invariants, and generates schema DDL, translated queries
and migration plans from the result.`,
	}

	rootCmd.AddCommand(newCatalogActionCmd(logger))
	rootCmd.AddCommand(newQueryExecutorCmd(logger))
	rootCmd.AddCommand(newMigrateCmd(logger))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
