// Package config loads the imagesearch configuration from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"imagesearch/histogram"
	"imagesearch/pixelbuffer"
	"imagesearch/ranking"
	"imagesearch/utils"
)

// Config holds the imagesearch configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" toml:"store"`
	Decode     DecodeConfig     `yaml:"decode" toml:"decode"`
	Histogram  HistogramConfig  `yaml:"histogram" toml:"histogram"`
	Conversion ConversionConfig `yaml:"conversion" toml:"conversion"`
	Scan       ScanConfig       `yaml:"scan" toml:"scan"`
	Search     SearchConfig     `yaml:"search" toml:"search"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics" toml:"metrics"`
}

// StoreConfig selects the corpus store.
type StoreConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // json, sqlite (default: json)
	Path   string `yaml:"path" toml:"path"`
}

// DecodeConfig controls image decoding.
type DecodeConfig struct {
	Backend      string `yaml:"backend" toml:"backend"`             // opencv, go (default: opencv)
	MaxDimension int    `yaml:"max_dimension" toml:"max_dimension"` // 0 keeps the original size
}

// HistogramConfig controls the histogram engine.
type HistogramConfig struct {
	BinCount            int    `yaml:"bin_count" toml:"bin_count"`
	Strategy            string `yaml:"strategy" toml:"strategy"` // auto, sequential, parallel
	MinSamplesPerWorker int    `yaml:"min_samples_per_worker" toml:"min_samples_per_worker"`
}

// ConversionConfig controls chunked sample conversion.
type ConversionConfig struct {
	Chunks             int `yaml:"chunks" toml:"chunks"`
	MinSamplesPerChunk int `yaml:"min_samples_per_chunk" toml:"min_samples_per_chunk"`
}

// ScanConfig controls folder indexing.
type ScanConfig struct {
	Workers int `yaml:"workers" toml:"workers"` // 0 = derived from the CPU count
}

// SearchConfig controls similarity queries.
type SearchConfig struct {
	TopK     int  `yaml:"top_k" toml:"top_k"`
	Parallel bool `yaml:"parallel" toml:"parallel"`
	Workers  int  `yaml:"workers" toml:"workers"` // 0 = derived from the CPU count
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"` // debug, info, warn, error (default: info)
	File  string `yaml:"file" toml:"file"`   // empty logs to stderr
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" toml:"textfile"` // empty disables the export
}

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// Load reads the configuration file at path. Files ending in .toml are parsed
// as TOML, everything else as YAML. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = "json"
	}
	if c.Store.Path == "" {
		c.Store.Path = utils.GetDefaultDatabasePath(c.Store.Driver)
	}
	if c.Decode.Backend == "" {
		c.Decode.Backend = "opencv"
	}
	if c.Histogram.BinCount == 0 {
		c.Histogram.BinCount = histogram.BinCount
	}
	if c.Histogram.Strategy == "" {
		c.Histogram.Strategy = histogram.Auto.String()
	}
	if c.Histogram.MinSamplesPerWorker <= 0 {
		c.Histogram.MinSamplesPerWorker = histogram.DefaultMinSamplesPerWorker
	}
	if c.Conversion.Chunks <= 0 {
		c.Conversion.Chunks = pixelbuffer.DefaultChunks
	}
	if c.Conversion.MinSamplesPerChunk <= 0 {
		c.Conversion.MinSamplesPerChunk = pixelbuffer.DefaultMinSamplesPerChunk
	}
	if c.Search.TopK == 0 {
		c.Search.TopK = ranking.DefaultTopK
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case "json", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("store.driver must be \"json\" or \"sqlite\", got %q", c.Store.Driver))
	}
	switch c.Decode.Backend {
	case "opencv", "go":
	default:
		errs = append(errs, fmt.Errorf("decode.backend must be \"opencv\" or \"go\", got %q", c.Decode.Backend))
	}
	if c.Decode.MaxDimension < 0 {
		errs = append(errs, fmt.Errorf("decode.max_dimension must not be negative, got %d", c.Decode.MaxDimension))
	}
	if !histogram.ValidBinCount(c.Histogram.BinCount) {
		errs = append(errs, fmt.Errorf("histogram.bin_count must divide 255, got %d", c.Histogram.BinCount))
	}
	if _, err := histogram.ParseStrategy(c.Histogram.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("histogram.strategy: %w", err))
	}
	if c.Scan.Workers < 0 {
		errs = append(errs, fmt.Errorf("scan.workers must not be negative, got %d", c.Scan.Workers))
	}
	if c.Search.TopK < 1 {
		errs = append(errs, fmt.Errorf("search.top_k must be at least 1, got %d", c.Search.TopK))
	}
	if c.Search.Workers < 0 {
		errs = append(errs, fmt.Errorf("search.workers must not be negative, got %d", c.Search.Workers))
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	return errors.Join(errs...)
}

// HistogramStrategy returns the parsed histogram strategy.
func (c *Config) HistogramStrategy() histogram.Strategy {
	s, _ := histogram.ParseStrategy(c.Histogram.Strategy)
	return s
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
