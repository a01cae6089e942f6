package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chatlab/corpus/internal/boundary"
	"github.com/chatlab/corpus/internal/config"
	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/logx"
	"github.com/chatlab/corpus/internal/worker"
)

// runtime bundles the pieces every subcommand needs: a store, the worker
// pool it runs jobs on, and the boundary API wired over both. close()
// releases the store once the command is done.
type runtime struct {
	cfg   *config.Config
	store *corpusstore.Store
	pool  *worker.Pool
	api   *boundary.API
}

func newRuntime() (*runtime, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logx.SetLevel(logx.ParseLevel(cfg.LogLevel))

	if cfg.Store.Path != "" && cfg.Store.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	store, err := corpusstore.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open corpus store: %w", err)
	}

	pool := worker.New(cfg.Worker.PoolSize)
	api := boundary.New(store, pool)

	return &runtime{cfg: cfg, store: store, pool: pool, api: api}, nil
}

func (r *runtime) close() error {
	return r.store.Close()
}
