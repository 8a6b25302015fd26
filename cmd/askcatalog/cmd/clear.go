package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askcatalog/askcatalog/internal/embed"
	"github.com/askcatalog/askcatalog/internal/index"
)

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all persisted state for the collection",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}

	return cmd
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The static embedder stands in here; clearing never embeds anything.
	embedder := embed.NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	if err := index.NewManager(cfg, embedder).Clear(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Collection %q cleared\n", cfg.Index.Collection)
	return nil
}
