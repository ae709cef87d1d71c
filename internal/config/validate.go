package config

import "fmt"

// Validate rejects configs that cannot drive an evaluation.
func Validate(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("config: unsupported version %d", cfg.Version)
	}
	if cfg.Dataset.Dir == "" {
		return fmt.Errorf("config: dataset.dir is required")
	}
	if cfg.Judge.Model == "" {
		return fmt.Errorf("config: judge.model is required")
	}
	if cfg.Defaults.Temperature < 0 || cfg.Defaults.Temperature > 2 {
		return fmt.Errorf("config: defaults.temperature %v out of range [0,2]", cfg.Defaults.Temperature)
	}
	if cfg.Defaults.Limit < 0 {
		return fmt.Errorf("config: defaults.limit must not be negative")
	}
	for providerID, provider := range cfg.Providers {
		for _, model := range provider.Models {
			if model.ID == "" {
				return fmt.Errorf("config: provider %s has a model without an id", providerID)
			}
		}
	}
	return nil
}
