package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabricdb/corekv/pkg/config"
)

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "./data", cfg.Storage.Path)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fabricnode.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: DEBUG\nstorage:\n  path: /var/lib/fabricdb\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "/var/lib/fabricdb", cfg.Storage.Path)
	// unset fields still take defaults
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := config.Default()
	cfg.NodeID = 7

	require.NoError(t, config.Save(cfg, path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), loaded.NodeID)
}
