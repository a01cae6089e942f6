package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRuntimeOpensInMemoryStore(t *testing.T) {
	t.Setenv("CHATLAB_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("CHATLAB_STORE_PATH", ":memory:")
	t.Setenv("CHATLAB_WORKER_POOL_SIZE", "1")

	rt, err := newRuntime()
	require.NoError(t, err)
	require.NotNil(t, rt.api)
	require.NoError(t, rt.close())
}
