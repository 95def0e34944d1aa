// Package config loads the lazydom command configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/vcrobe/lazydom/runtime"
	"github.com/vcrobe/lazydom/snapshot/redisstore"
)

// Config is the command configuration.
type Config struct {
	LogLevel       string `mapstructure:"log_level"`
	MaxFlushPasses int    `mapstructure:"max_flush_passes"`
	// Manifest is the path of a chunk manifest. Empty selects the built-in
	// layout.
	Manifest    string `mapstructure:"manifest"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	Redis       Redis  `mapstructure:"redis"`
}

// Redis configures snapshot persistence. An empty Addr disables it.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:       "info",
		MaxFlushPasses: runtime.DefaultMaxFlushPasses,
		MetricsAddr:    ":2112",
		Redis: Redis{
			Prefix: redisstore.DefaultPrefix,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config file %s not found: %w", path, err)
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Durations accept strings such as
// "10m".
func Parse(data []byte) (Config, error) {
	cfg := Default()
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return cfg, fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.MaxFlushPasses <= 0 {
		return cfg, fmt.Errorf("max_flush_passes must be positive, got %d", cfg.MaxFlushPasses)
	}
	return cfg, nil
}
