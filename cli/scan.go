package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"imagesearch/scanner"
	"imagesearch/signalhandler"
)

var (
	scanForce   bool
	scanWorkers int
)

var scanCmd = &cobra.Command{
	Use:   "scan [folder or image]",
	Short: "Index images into the corpus store",
	Long: `Walks a folder (or takes a single image), fingerprints every supported image
that is not yet in the corpus store and appends the fingerprints.
An interrupt stops dispatching new files; finished fingerprints are still stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVarP(&scanForce, "force", "f", false, "fingerprint files already in the store again")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0, "concurrent files (0 uses the configured value)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signalhandler.SetupHandler(cmd.Context())
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	fingerprinter, err := newFingerprinter()
	if err != nil {
		return err
	}

	workers := cfg.Scan.Workers
	if scanWorkers > 0 {
		workers = scanWorkers
	}

	summary, err := scanner.ScanAndStoreFolder(ctx, store, fingerprinter, scanner.ScanOptions{
		FolderPath:   args[0],
		ForceRewrite: scanForce,
		DebugMode:    debugMode,
		MaxWorkers:   workers,
		Output:       cmd.OutOrStdout(),
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	cmd.Printf("Store: %s (%s)\n", cfg.Store.Path, cfg.Store.Driver)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d images could not be indexed", summary.Failed, summary.Total)
	}
	return nil
}
