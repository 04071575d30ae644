// Package internal holds NovaSQL's top-level, process-wide configuration.
package internal

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/tuannm99/novasql/internal/bufferpool/replacement"
	"github.com/tuannm99/novasql/internal/storage"
)

// ErrPageSizeMismatch is returned by LoadConfig when the configured page
// size does not match the compiled storage.PageSize — the storage manager
// is single-page-size by design, so a mismatched config can never be
// honored rather than silently ignored.
var ErrPageSizeMismatch = errors.New("internal: configured page size does not match compiled page size")

// NovaSqlConfig is the root configuration shape loaded from a YAML file.
type NovaSqlConfig struct {
	Storage struct {
		DataDir  string `mapstructure:"data_dir"`
		PageSize int    `mapstructure:"page_size"`
	} `mapstructure:"storage"`
	BufferPool struct {
		NumFrames int    `mapstructure:"num_frames"`
		Strategy  string `mapstructure:"strategy"`
	} `mapstructure:"buffer_pool"`
	Server struct {
		Port  int  `mapstructure:"port"`
		Debug bool `mapstructure:"debug"`
	} `mapstructure:"server"`
}

// ReplacementStrategy parses the configured strategy name into a
// replacement.Strategy, defaulting to LRU for an empty or unknown value.
func (c *NovaSqlConfig) ReplacementStrategy() replacement.Strategy {
	switch c.BufferPool.Strategy {
	case "FIFO", "fifo":
		return replacement.FIFO
	case "CLOCK", "clock":
		return replacement.CLOCK
	case "LFU", "lfu":
		return replacement.LFU
	default:
		return replacement.LRU
	}
}

// LoadConfig reads and unmarshals a YAML configuration file at path.
func LoadConfig(path string) (*NovaSqlConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.page_size", 4096)
	v.SetDefault("buffer_pool.num_frames", 1000)
	v.SetDefault("buffer_pool.strategy", "LRU")
	v.SetDefault("server.port", 5432)
	v.SetDefault("server.debug", false)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg NovaSqlConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Storage.PageSize != storage.PageSize {
		return nil, fmt.Errorf("load config: configured page size %d: %w", cfg.Storage.PageSize, ErrPageSizeMismatch)
	}

	return &cfg, nil
}
