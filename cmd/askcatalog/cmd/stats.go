package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askcatalog/askcatalog/internal/embed"
	"github.com/askcatalog/askcatalog/internal/index"
)

func newStatsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show collection health statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runStats(cmd *cobra.Command, format string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := embed.NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = embedder.Close() }()

	handle, err := index.NewManager(cfg, embedder).Open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = handle.Close() }()

	stats, err := handle.Stats(ctx)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Collection:        %s\n", cfg.Index.Collection)
	fmt.Fprintf(out, "Total documents:   %d\n", stats.TotalDocuments)
	fmt.Fprintf(out, "Vector count:      %d\n", stats.VectorCount)
	fmt.Fprintf(out, "Lexical documents: %d\n", stats.LexicalDocumentCount)
	return nil
}
