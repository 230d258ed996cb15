package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds gateway configuration.
type Config struct {
	Port               int    `yaml:"port"`
	MaxPlayersPerShard int    `yaml:"maxPlayersPerShard"`
	LogLevel           string `yaml:"logLevel"`

	// Secret signs bearer tokens; read from the environment, never from
	// the config file. Empty means an ephemeral development secret.
	Secret string `yaml:"-"`
}

// SecretEnvVar names the environment variable carrying the signing secret.
const SecretEnvVar = "DEEPMINE_SECRET"

// DefaultConfig returns the development defaults.
func DefaultConfig() Config {
	return Config{
		Port:               8420,
		MaxPlayersPerShard: 8,
		LogLevel:           "info",
	}
}

// LoadConfig reads an optional YAML config file over the defaults and then
// applies the environment secret.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Secret = os.Getenv(SecretEnvVar)
	return cfg, nil
}
