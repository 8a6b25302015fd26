package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askcatalog/askcatalog/internal/embed"
	"github.com/askcatalog/askcatalog/internal/index"
	"github.com/askcatalog/askcatalog/internal/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	alpha  float64
	topK   int
	format string // "text" or "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query the indexed catalog",
		Long: `Query the indexed catalog with hybrid retrieval.

Alpha weighs the semantic signal: 1.0 ranks purely by embedding
similarity, 0.0 purely by BM25 keyword overlap.

Examples:
  askcatalog search "return policy"
  askcatalog search "16GB RAM laptop" --alpha 0.5 --top-k 3
  askcatalog search "warranty service" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().Float64VarP(&opts.alpha, "alpha", "a", -1, "Semantic weight in [0,1] (default from config)")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "Maximum number of results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	searchOpts := search.Options{
		Alpha: cfg.Search.Alpha,
		TopK:  cfg.Search.TopK,
	}
	if cmd.Flags().Changed("alpha") {
		searchOpts.Alpha = opts.alpha
	}
	if opts.topK > 0 {
		searchOpts.TopK = opts.topK
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

	engine := search.NewEngine(embedder, handle.Lexical, handle.Vector,
		handle.Metadata, handle.Collection)

	results, err := engine.Search(ctx, query, searchOpts)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		return printResultsJSON(cmd, results)
	}
	printResultsText(cmd, query, results)
	return nil
}

func printResultsText(cmd *cobra.Command, query string, results []*search.ScoredResult) {
	out := cmd.OutOrStdout()

	if len(results) == 0 {
		fmt.Fprintf(out, "No results for %q\n", query)
		return
	}

	fmt.Fprintf(out, "Results for %q:\n\n", query)
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s (score %.4f, semantic %.4f, lexical %.4f)\n",
			i+1, r.Document.ID, r.FusedScore, r.SemanticScore, r.LexicalScore)

		text := r.Document.Text
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(out, "   %s\n", line)
		}
		fmt.Fprintln(out)
	}
}

func printResultsJSON(cmd *cobra.Command, results []*search.ScoredResult) error {
	type jsonResult struct {
		ID            string         `json:"id"`
		Text          string         `json:"text"`
		Metadata      map[string]any `json:"metadata"`
		FusedScore    float64        `json:"fused_score"`
		SemanticScore float64        `json:"semantic_score"`
		LexicalScore  float64        `json:"lexical_score"`
	}

	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{
			ID:            r.Document.ID,
			Text:          r.Document.Text,
			Metadata:      r.Document.Metadata,
			FusedScore:    r.FusedScore,
			SemanticScore: r.SemanticScore,
			LexicalScore:  r.LexicalScore,
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
