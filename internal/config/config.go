// Package config loads the module's ambient configuration from environment
// variables, following the teacher's env-driven Config shape.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	// Store is the corpus store (embedded sqlite database) configuration.
	Store StoreConfig

	// Worker is the worker pool / job router configuration.
	Worker WorkerConfig

	// Dashboard holds the optional debug HTTP server configuration.
	Dashboard DashboardConfig

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// TimezoneOverride, if set, is used instead of the host local zone when
	// a parser needs a default timezone for wall-clock timestamps.
	TimezoneOverride string
}

// StoreConfig configures the corpus store.
type StoreConfig struct {
	// Path is the sqlite database file path. Empty means ":memory:".
	Path string
	// BatchSize bounds the number of messages per write transaction during import.
	BatchSize int
}

// WorkerConfig configures the worker pool.
type WorkerConfig struct {
	PoolSize int
}

// DashboardConfig configures the optional debug HTTP server.
type DashboardConfig struct {
	Enabled bool
	Host    string
	Port    int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Store: StoreConfig{
			Path:      getEnvString("CHATLAB_STORE_PATH", "./data/corpus.db"),
			BatchSize: getEnvInt("CHATLAB_BATCH_SIZE", 500),
		},
		Worker: WorkerConfig{
			PoolSize: getEnvInt("CHATLAB_WORKER_POOL_SIZE", defaultPoolSize()),
		},
		Dashboard: DashboardConfig{
			Enabled: getEnvBool("CHATLAB_DASHBOARD_ENABLED", false),
			Host:    getEnvString("CHATLAB_DASHBOARD_HOST", "127.0.0.1"),
			Port:    getEnvInt("CHATLAB_DASHBOARD_PORT", 8080),
		},
		LogLevel:         getEnvString("CHATLAB_LOG_LEVEL", "info"),
		TimezoneOverride: getEnvString("CHATLAB_TIMEZONE", ""),
	}

	if cfg.Store.BatchSize <= 0 {
		return nil, fmt.Errorf("invalid CHATLAB_BATCH_SIZE: must be positive")
	}

	return cfg, nil
}

// defaultPoolSize mirrors spec §4.7: min(4, hardware parallelism).
func defaultPoolSize() int {
	n := runtime.NumCPU()
	if n > 4 {
		return 4
	}
	if n < 1 {
		return 1
	}
	return n
}

// GetAddress returns the dashboard HTTP server address.
func (c *Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Dashboard.Host, c.Dashboard.Port)
}

// ResolveTimezone returns the configured timezone override, or the host
// local zone if none was set.
func (c *Config) ResolveTimezone() *time.Location {
	if c.TimezoneOverride == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimezoneOverride)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
