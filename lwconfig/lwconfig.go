// Package lwconfig loads process configuration from the environment and
// builds the shared collaborators (logger, table store, spline cache) from it.
package lwconfig

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"leptonweight.io/lw/spline"
	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/storage/localfs"
	"leptonweight.io/lw/storage/storeconfig"
	"leptonweight.io/lw/storage/storeregistry"

	// Link the remote table store backends so LW_STORE_CONFIG can name them.
	_ "leptonweight.io/lw/storage/grpcstore"
	_ "leptonweight.io/lw/storage/ipfs"
)

// Config holds environment settings. Without StoreConfig, tables live in
// TableDir; StoreBackend names the preferred backend of a store config.
type Config struct {
	TableDir     string `env:"LW_TABLE_DIR"     envDefault:"./tables"`
	StoreConfig  string `env:"LW_STORE_CONFIG"`
	StoreBackend string `env:"LW_STORE_BACKEND"`
	LogLevel     string `env:"LW_LOG_LEVEL"     envDefault:"info"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level returns the configured slog level.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("lwconfig: invalid LW_LOG_LEVEL %q", c.LogLevel)
}

// NewLogger returns a text logger writing to w at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenStore opens the table store. With StoreConfig set the backends listed
// there are opened; otherwise tables live in TableDir. The returned close
// function is never nil.
func (c Config) OpenStore() (storage.TableStore, func() error, error) {
	if c.StoreConfig == "" {
		s, err := localfs.New(c.TableDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	}
	sc, err := storeconfig.LoadFile(c.StoreConfig)
	if err != nil {
		return nil, nil, err
	}
	s, closeFn, err := sc.Open(storeregistry.UsageLibrary, c.StoreBackend)
	if err != nil {
		return nil, nil, err
	}
	if closeFn == nil {
		closeFn = func() error { return nil }
	}
	return s, closeFn, nil
}

// NewCache returns a spline cache loading tables from store. decode parses
// the serialized table format.
func NewCache(store storage.TableStore, decode func([]byte) (spline.Table, error), log *slog.Logger) *spline.Cache {
	return spline.NewCache(spline.StoreBackend{Store: store, Decode: decode}, spline.CacheOptions{Logger: log})
}
