// Package config loads and validates the benchmark configuration file.
package config

import "sort"

// Config is the top-level benchmark configuration.
type Config struct {
	Version   int                       `yaml:"version"`
	Dataset   DatasetConfig             `yaml:"dataset"`
	Judge     JudgeConfig               `yaml:"judge"`
	Defaults  DefaultsConfig            `yaml:"defaults"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Output    OutputConfig              `yaml:"output"`
}

// DatasetConfig locates the benchmark dataset.
type DatasetConfig struct {
	Dir       string `yaml:"dir"`
	Version   string `yaml:"version"`
	SlotsFile string `yaml:"slots_file"`
}

// JudgeConfig selects the judge model and its instruction file.
type JudgeConfig struct {
	Model            string `yaml:"model"`
	InstructionsFile string `yaml:"instructions_file"`
}

// DefaultsConfig carries evaluation defaults overridable per run.
type DefaultsConfig struct {
	Limit       int     `yaml:"limit"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// ProviderConfig describes a model provider for display purposes.
type ProviderConfig struct {
	Name   string        `yaml:"name"`
	Color  string        `yaml:"color"`
	Icon   string        `yaml:"icon"`
	Models []ModelConfig `yaml:"models"`
}

// ModelConfig is one evaluable model under a provider.
type ModelConfig struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// OutputConfig locates run outputs and the results database.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Database string `yaml:"database"`
}

// EnabledModels flattens all enabled models across providers in sorted
// provider order.
func (c Config) EnabledModels() []ModelConfig {
	keys := make([]string, 0, len(c.Providers))
	for key := range c.Providers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var models []ModelConfig
	for _, key := range keys {
		for _, model := range c.Providers[key].Models {
			if model.Enabled {
				models = append(models, model)
			}
		}
	}
	return models
}
