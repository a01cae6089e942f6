package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// whatever it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func setInMemoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CHATLAB_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("CHATLAB_STORE_PATH", ":memory:")
	t.Setenv("CHATLAB_WORKER_POOL_SIZE", "1")
}

func TestRunMigrateStatusFreshStoreIsUpToDate(t *testing.T) {
	setInMemoryEnv(t)
	out := captureStdout(t, func() {
		require.NoError(t, runMigrateStatus())
	})
	require.Contains(t, out, "up to date")
}

func TestRunQueryAgainstEmptyStore(t *testing.T) {
	setInMemoryEnv(t)
	out := captureStdout(t, func() {
		require.NoError(t, runQuery("SELECT count(*) FROM meta"))
	})
	require.Contains(t, out, "(1 rows")
}

func TestRunQueryRejectsNonSelect(t *testing.T) {
	setInMemoryEnv(t)
	err := runQuery("DELETE FROM meta")
	require.Error(t, err)
}
