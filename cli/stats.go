package cli

import (
	"github.com/spf13/cobra"

	"imagesearch/database"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the corpus store",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := database.GetCorpusStats(cmd.Context(), store)
	if err != nil {
		return err
	}

	cmd.Printf("Store: %s (%s)\n", cfg.Store.Path, cfg.Store.Driver)
	cmd.Printf("Fingerprints: %d\n", stats.Fingerprints)
	cmd.Printf("Distinct paths: %d\n", stats.DistinctPaths)
	return nil
}
