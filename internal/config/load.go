package config

import (
	"fmt"
	"os"
)

// Load reads, parses, normalizes, and validates a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize fills in defaults for omitted settings.
func Normalize(cfg *Config) {
	if cfg.Dataset.Version == "" {
		cfg.Dataset.Version = "canonical"
	}
	if cfg.Defaults.MaxTokens == 0 {
		cfg.Defaults.MaxTokens = 2048
	}
	if cfg.Defaults.Limit == 0 {
		cfg.Defaults.Limit = 50
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "results"
	}
}
