package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chatlab/corpus/internal/config"
)

// fileConfig is the optional on-disk CLI overlay (chatlab.toml), following
// clawwork-cli's config package shape: a small TOML document read once at
// startup, its zero fields meaning "defer to the environment". Unlike the
// teacher, this file never holds secrets, so there's no Redact step.
type fileConfig struct {
	StorePath string `toml:"store_path"`
	PoolSize  int    `toml:"worker_pool_size"`
	LogLevel  string `toml:"log_level"`
	Timezone  string `toml:"timezone"`

	Dashboard struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	} `toml:"dashboard"`
}

// configFilePath returns the overlay file's conventional location,
// $CHATLAB_CONFIG if set, otherwise ./chatlab.toml.
func configFilePath() string {
	if p := os.Getenv("CHATLAB_CONFIG"); p != "" {
		return p
	}
	return "chatlab.toml"
}

// loadFileConfig reads the overlay file if present; a missing file is not
// an error, it just means every field defers to the environment.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return fc, err
	}
	_, err := toml.DecodeFile(path, &fc)
	return fc, err
}

// resolveConfig layers the optional chatlab.toml overlay on top of the
// environment-driven config.Config, overlay fields winning when set.
func resolveConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	fc, err := loadFileConfig(configFilePath())
	if err != nil {
		return nil, err
	}

	if fc.StorePath != "" {
		cfg.Store.Path = fc.StorePath
	}
	if fc.PoolSize > 0 {
		cfg.Worker.PoolSize = fc.PoolSize
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.Timezone != "" {
		cfg.TimezoneOverride = fc.Timezone
	}
	if fc.Dashboard.Host != "" {
		cfg.Dashboard.Host = fc.Dashboard.Host
	}
	if fc.Dashboard.Port != 0 {
		cfg.Dashboard.Port = fc.Dashboard.Port
	}

	if cfg.Store.Path != "" && cfg.Store.Path != ":memory:" {
		if abs, err := filepath.Abs(cfg.Store.Path); err == nil {
			cfg.Store.Path = abs
		}
	}

	return cfg, nil
}
