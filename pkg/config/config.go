// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Indexer, Search, Logging, Metrics).
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Indexer IndexerConfig `yaml:"indexer"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// IndexerConfig controls index construction: the in-memory block budget,
// temporary run storage, worker parallelism, and the dictionary codec used
// when the final index is persisted.
type IndexerConfig struct {
	// BlockSize is the approximate number of (term, occurrence) cells a
	// block builder accumulates before flushing a sorted run.
	BlockSize int `yaml:"blockSize"`
	// TempDir holds sorted run files until the merge completes.
	TempDir string `yaml:"tempDir"`
	// Workers is the number of concurrent block builders.
	Workers int `yaml:"workers"`
	// Codec selects the dictionary codec: "blocked", "frontcoded", or
	// "dictstring".
	Codec string `yaml:"codec"`
	// GroupSize is the number of terms per group for the blocked and
	// front-coded codecs.
	GroupSize int `yaml:"groupSize"`
}

// SearchConfig controls query-time behaviour.
type SearchConfig struct {
	// SkipInterval is the skip-pointer spacing applied when posting lists
	// are materialised for intersection. 0 or 1 disables skip pointers;
	// -1 selects ceil(sqrt(n)) per list.
	SkipInterval int `yaml:"skipInterval"`
	MaxResults   int `yaml:"maxResults"`
	// CacheSize is the number of query results kept in the in-process
	// result cache. 0 disables caching.
	CacheSize int `yaml:"cacheSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Indexer: IndexerConfig{
			BlockSize: 100000,
			TempDir:   "data/runs",
			Workers:   1,
			Codec:     "blocked",
			GroupSize: 8,
		},
		Search: SearchConfig{
			SkipInterval: -1,
			MaxResults:   100,
			CacheSize:    0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

func (c *Config) validate() error {
	if c.Indexer.BlockSize <= 0 {
		return fmt.Errorf("indexer.blockSize must be positive, got %d", c.Indexer.BlockSize)
	}
	if c.Indexer.Workers <= 0 {
		return fmt.Errorf("indexer.workers must be positive, got %d", c.Indexer.Workers)
	}
	if c.Indexer.GroupSize <= 0 {
		return fmt.Errorf("indexer.groupSize must be positive, got %d", c.Indexer.GroupSize)
	}
	switch c.Indexer.Codec {
	case "blocked", "frontcoded", "dictstring":
	default:
		return fmt.Errorf("indexer.codec must be one of blocked, frontcoded, dictstring; got %q", c.Indexer.Codec)
	}
	return nil
}

// applyEnvOverrides reads IR_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IR_INDEXER_BLOCK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.BlockSize = n
		}
	}
	if v := os.Getenv("IR_INDEXER_TEMP_DIR"); v != "" {
		cfg.Indexer.TempDir = v
	}
	if v := os.Getenv("IR_INDEXER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.Workers = n
		}
	}
	if v := os.Getenv("IR_INDEXER_CODEC"); v != "" {
		cfg.Indexer.Codec = v
	}
	if v := os.Getenv("IR_INDEXER_GROUP_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.GroupSize = n
		}
	}
	if v := os.Getenv("IR_SEARCH_SKIP_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.SkipInterval = n
		}
	}
	if v := os.Getenv("IR_SEARCH_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.CacheSize = n
		}
	}
	if v := os.Getenv("IR_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("IR_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("IR_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = n
		}
	}
}
