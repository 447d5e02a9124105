package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 100000, cfg.Indexer.BlockSize)
	assert.Equal(t, "blocked", cfg.Indexer.Codec)
	assert.Equal(t, 1, cfg.Indexer.Workers)
	assert.Equal(t, -1, cfg.Search.SkipInterval)
	assert.Equal(t, 0, cfg.Search.CacheSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
indexer:
  blockSize: 5000
  codec: frontcoded
  groupSize: 4
search:
  skipInterval: 16
  cacheSize: 32
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Indexer.BlockSize)
	assert.Equal(t, "frontcoded", cfg.Indexer.Codec)
	assert.Equal(t, 4, cfg.Indexer.GroupSize)
	assert.Equal(t, 16, cfg.Search.SkipInterval)
	assert.Equal(t, 32, cfg.Search.CacheSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unspecified fields keep their defaults.
	assert.Equal(t, 1, cfg.Indexer.Workers)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("IR_INDEXER_CODEC", "dictstring")
	t.Setenv("IR_INDEXER_WORKERS", "4")
	t.Setenv("IR_SEARCH_SKIP_INTERVAL", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dictstring", cfg.Indexer.Codec)
	assert.Equal(t, 4, cfg.Indexer.Workers)
	assert.Equal(t, 0, cfg.Search.SkipInterval)
}

func TestLoadRejectsInvalid(t *testing.T) {
	write := func(content string) string {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	_, err := Load(write("indexer:\n  codec: huffman\n"))
	assert.Error(t, err)

	_, err = Load(write("indexer:\n  blockSize: -1\n"))
	assert.Error(t, err)

	_, err = Load(write("indexer:\n  workers: 0\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
