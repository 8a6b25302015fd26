package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askcatalog/askcatalog/internal/corpus"
	"github.com/askcatalog/askcatalog/internal/embed"
	"github.com/askcatalog/askcatalog/internal/index"
)

func newIndexCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the collection from the corpus file",
		Long: `Build the search collection from the configured corpus file.

A collection that already holds vectors is reused as-is; pass --force
to rebuild from scratch (required after changing the embedding
provider or its dimensions).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rebuild even if the collection exists")

	return cmd
}

func runIndex(cmd *cobra.Command, force bool) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	records, err := corpus.Load(cfg.Index.CorpusPath)
	if err != nil {
		return err
	}

	embedder, err := embed.NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = embedder.Close() }()

	manager := index.NewManager(cfg, embedder)
	handle, err := manager.BuildOrLoad(ctx, records, force)
	if err != nil {
		return err
	}
	defer func() { _ = handle.Close() }()

	stats, err := handle.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Collection %q ready: %d documents (%d vectors, %d lexical)\n",
		cfg.Index.Collection, stats.TotalDocuments, stats.VectorCount,
		stats.LexicalDocumentCount)
	return nil
}
