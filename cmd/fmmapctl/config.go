package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/hupe1980/fmmap"
)

// Config holds the mapping options shared by all commands.
type Config struct {
	Offset   int64  `json:"offset"`
	Len      int    `json:"len"`
	MaxSize  int64  `json:"max_size"` //nolint:tagliatelle // snake_case for config file
	Cow      bool   `json:"cow"`
	Populate bool   `json:"populate"`
	LogLevel string `json:"log_level"` //nolint:tagliatelle // snake_case for config file
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{LogLevel: "warn"}
}

// loadConfigFile reads a JSONC file over cfg. Missing keys keep their value.
func loadConfigFile(path string, cfg Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

// applyFlags copies every flag the user set explicitly onto cfg.
func applyFlags(fs *flag.FlagSet, cfg Config) Config {
	if fs.Changed("offset") {
		cfg.Offset, _ = fs.GetInt64("offset")
	}
	if fs.Changed("len") {
		cfg.Len, _ = fs.GetInt("len")
	}
	if fs.Changed("max-size") {
		cfg.MaxSize, _ = fs.GetInt64("max-size")
	}
	if fs.Changed("cow") {
		cfg.Cow, _ = fs.GetBool("cow")
	}
	if fs.Changed("populate") {
		cfg.Populate, _ = fs.GetBool("populate")
	}
	if fs.Changed("log-level") {
		cfg.LogLevel, _ = fs.GetString("log-level")
	}
	return cfg
}

func (c Config) validate() error {
	if c.Offset < 0 {
		return fmt.Errorf("offset must not be negative: %d", c.Offset)
	}
	if c.Len < 0 {
		return fmt.Errorf("len must not be negative: %d", c.Len)
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("max_size must not be negative: %d", c.MaxSize)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// options turns the config into mapping options.
func (c Config) options() fmmap.Options {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(c.LogLevel))

	o := fmmap.DefaultOptions().
		Offset(c.Offset).
		Len(c.Len).
		MaxSize(c.MaxSize).
		Logger(fmmap.NewTextLogger(lvl))
	if c.Populate {
		o = o.Populate()
	}
	return o
}
