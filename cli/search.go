package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"imagesearch/imageprocessor"
	"imagesearch/types"
	"imagesearch/workerpool"
)

var (
	searchTop            int
	searchAll            bool
	searchParallel       bool
	searchSkipMismatched bool
	searchJSON           bool
)

var searchCmd = &cobra.Command{
	Use:   "search [image]",
	Short: "Rank the corpus by similarity to an image",
	Long: `Fingerprints the query image and ranks every corpus entry by a composite of
colour histogram cosine similarity and average brightness similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTop, "top", "n", 0, "number of results (0 uses the configured top_k)")
	searchCmd.Flags().BoolVar(&searchAll, "all", false, "return every corpus entry")
	searchCmd.Flags().BoolVar(&searchParallel, "parallel", false, "score the corpus on all workers")
	searchCmd.Flags().BoolVar(&searchSkipMismatched, "skip-mismatched", false, "ignore entries with a different channel count")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	fingerprinter, err := newFingerprinter()
	if err != nil {
		return err
	}

	topK := cfg.Search.TopK
	if searchTop > 0 {
		topK = searchTop
	}
	if searchAll {
		topK = 0
	}

	start := time.Now()
	results, err := imageprocessor.FindSimilarImages(cmd.Context(), store, fingerprinter, imageprocessor.SearchOptions{
		QueryPath:              args[0],
		TopK:                   topK,
		Parallel:               cfg.Search.Parallel || searchParallel,
		Pool:                   workerpool.New(cfg.Search.Workers),
		SkipMismatchedChannels: searchSkipMismatched,
		DebugMode:              debugMode,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	cmd.Printf("\nTotal search time: %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []types.SimilarityResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []types.SimilarityResult) {
	if len(results) == 0 {
		cmd.Println("No matches found.")
		return
	}

	cmd.Println("Top Matches:")
	for i, r := range results {
		cmd.Printf("%d. %s (%s)\n", i+1, r.Entry.Filename, r.Entry.Filepath)
		cmd.Printf("   Similarity: %.2f%%  (histogram %.2f%%, brightness %.2f%%)\n",
			r.CompositePercent(), r.CosinePercent(), r.BrightnessPercent())
	}
}
