package environment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes a file environment in a form suitable for YAML loading:
// search paths, the default template extension, and seed variables shared
// across the render chain.
type Config struct {
	Paths     []string       `yaml:"paths"`
	Extension string         `yaml:"extension"`
	Variables map[string]any `yaml:"variables"`
}

// LoadConfig reads an environment configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("environment: read config %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("environment: parse config %q: %w", path, err)
	}
	return cfg, nil
}

// FromConfig constructs a file environment from a loaded configuration.
func FromConfig(cfg Config) *Env {
	return New(
		WithSearchPath(cfg.Paths...),
		WithExtension(cfg.Extension),
		WithVars(cfg.Variables),
	)
}
