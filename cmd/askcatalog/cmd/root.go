// Package cmd provides the CLI commands for askcatalog.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/askcatalog/askcatalog/internal/config"
	"github.com/askcatalog/askcatalog/internal/logging"
)

var version = "0.1.0"

// NewRootCmd creates the root command for the askcatalog CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "askcatalog",
		Short: "Hybrid retrieval over a product catalog",
		Long: `askcatalog indexes a product catalog corpus (products, FAQs, manual
chunks) and answers questions with hybrid retrieval: BM25 keyword
scoring fused with semantic embedding similarity.

Typical workflow:
  askcatalog generate          # create a synthetic corpus
  askcatalog index             # build the collection
  askcatalog search "query"    # ask questions`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("askcatalog version {{.Version}}\n")

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newClearCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// loadConfig loads the configuration and installs the logger.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, err
	}

	logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return cfg, nil
}
