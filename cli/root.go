// Package cli implements the imagesearch command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"imagesearch/config"
	"imagesearch/database"
	"imagesearch/histogram"
	"imagesearch/imageprocessor"
	"imagesearch/logging"
	"imagesearch/metrics"
	"imagesearch/pixelbuffer"
	"imagesearch/signalhandler"
	"imagesearch/workerpool"
)

var (
	configPath      string
	storePath       string
	storeDriver     string
	decodeBackend   string
	logLevel        string
	logFile         string
	metricsTextfile string
	debugMode       bool
)

// cfg is resolved by the root command before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "imagesearch",
	Short: "Find similar images by colour histogram and brightness",
	Long: `imagesearch indexes images as fingerprints (per-channel colour histograms
and average brightness) and ranks an indexed corpus by similarity to a query image.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "configuration file (.yaml or .toml)")
	flags.StringVar(&storePath, "store", "", "corpus store path")
	flags.StringVar(&storeDriver, "driver", "", "corpus store driver: json or sqlite")
	flags.StringVar(&decodeBackend, "backend", "", "image decoder: opencv or go")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&logFile, "logfile", "", "write logs to this file instead of stderr")
	flags.StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")
	flags.BoolVar(&debugMode, "debug", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(&loaded)
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = loaded

	if err := logging.SetupLogger(cfg.Logging.File, cfg.Logging.Level); err != nil {
		return err
	}
	metrics.Register()

	logging.DebugLog("Using %s store at %s", cfg.Store.Driver, cfg.Store.Path)
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	defer logging.CloseLogger()

	if cfg.Metrics.Textfile == "" {
		return nil
	}
	return metrics.WriteTextfile(cfg.Metrics.Textfile)
}

func applyFlagOverrides(c *config.Config) {
	if storeDriver != "" {
		c.Store.Driver = storeDriver
		if storePath == "" && configPath == "" {
			c.Store.Path = ""
		}
	}
	if storePath != "" {
		c.Store.Path = storePath
	}
	if decodeBackend != "" {
		c.Decode.Backend = decodeBackend
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if debugMode {
		c.Logging.Level = "debug"
	}
	if logFile != "" {
		c.Logging.File = logFile
	}
	if metricsTextfile != "" {
		c.Metrics.Textfile = metricsTextfile
	}
	c.ApplyDefaults()
}

// openStore opens the configured corpus store.
func openStore() (database.CorpusStore, error) {
	store, err := database.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s store %s: %w", cfg.Store.Driver, cfg.Store.Path, err)
	}
	return store, nil
}

// newFingerprinter builds the decoding and histogram pipeline from cfg.
func newFingerprinter() (*imageprocessor.Fingerprinter, error) {
	pool := workerpool.New(signalhandler.GetOptimalProcs())

	engine, err := histogram.New(histogram.Options{
		BinCount:            cfg.Histogram.BinCount,
		Strategy:            cfg.HistogramStrategy(),
		MinSamplesPerWorker: cfg.Histogram.MinSamplesPerWorker,
		Pool:                pool,
	})
	if err != nil {
		return nil, err
	}

	registry := imageprocessor.NewImageLoaderRegistry(imageprocessor.RegistryOptions{
		Backend:      cfg.Decode.Backend,
		MaxDimension: cfg.Decode.MaxDimension,
	})
	converter := pixelbuffer.Converter{
		Chunks:             cfg.Conversion.Chunks,
		MinSamplesPerChunk: cfg.Conversion.MinSamplesPerChunk,
		Pool:               pool,
	}
	return imageprocessor.NewFingerprinter(registry, engine, converter), nil
}
