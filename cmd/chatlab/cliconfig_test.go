package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFileConfigMissingFileIsNotError(t *testing.T) {
	fc, err := loadFileConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	require.Equal(t, fileConfig{}, fc)
}

func TestLoadFileConfigParsesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatlab.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
store_path = "/tmp/corpus.db"
worker_pool_size = 2
log_level = "debug"

[dashboard]
host = "0.0.0.0"
port = 9090
`), 0o644))

	fc, err := loadFileConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/corpus.db", fc.StorePath)
	require.Equal(t, 2, fc.PoolSize)
	require.Equal(t, "debug", fc.LogLevel)
	require.Equal(t, "0.0.0.0", fc.Dashboard.Host)
	require.Equal(t, 9090, fc.Dashboard.Port)
}

func TestResolveConfigOverlayWinsOverEnvDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatlab.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
store_path = ":memory:"
log_level = "warn"
`), 0o644))
	t.Setenv("CHATLAB_CONFIG", path)
	t.Setenv("CHATLAB_LOG_LEVEL", "info")

	cfg, err := resolveConfig()
	require.NoError(t, err)
	require.Equal(t, ":memory:", cfg.Store.Path)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestResolveConfigMakesStorePathAbsolute(t *testing.T) {
	t.Setenv("CHATLAB_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("CHATLAB_STORE_PATH", "relative/corpus.db")

	cfg, err := resolveConfig()
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(cfg.Store.Path))
}
