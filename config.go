package main

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Simulation SimulationConfig `toml:"simulation"`
	Difficulty DifficultyConfig `toml:"difficulty"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type SimulationConfig struct {
	PathfinderWorkers int `toml:"pathfinder_workers"`
}

type DifficultyConfig struct {
	URL             string   `toml:"url"`
	RefreshInterval duration `toml:"refresh_interval"`
	Fallback        float64  `toml:"fallback"`
}

// duration lets TOML carry humane values like "30s" or "1m" instead of raw
// nanosecond integers.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // "json" or "console"
	FilePath   string `toml:"file_path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// loadConfig reads the TOML config, tolerating a missing file by returning
// the compiled-in defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Simulation: SimulationConfig{
			PathfinderWorkers: 2,
		},
		Difficulty: DifficultyConfig{
			RefreshInterval: duration{time.Minute},
			Fallback:        difficultyFallback,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}
