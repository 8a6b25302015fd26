package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/askcatalog/askcatalog/internal/corpus"
)

func newGenerateCmd() *cobra.Command {
	var (
		products int
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic catalog corpus",
		Long: `Generate a synthetic catalog corpus at the configured corpus path:
product rows, customer-support FAQs, and chunked manual text.

Output is deterministic for a given seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, products, seed)
		},
	}

	cmd.Flags().IntVarP(&products, "products", "n", 150, "Number of products to generate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")

	return cmd
}

func runGenerate(cmd *cobra.Command, products int, seed int64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	gen := corpus.NewGenerator(seed)
	records := gen.Generate(products, cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)

	path := cfg.Index.CorpusPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create corpus directory: %w", err)
	}
	if err := corpus.Save(path, records); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d records to %s\n", len(records), path)
	return nil
}
