package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Root string `yaml:"root"`
	} `yaml:"project"`
	Watch struct {
		IntervalSeconds int    `yaml:"interval_seconds"`
		ChangelogDir    string `yaml:"changelog_dir"`
	} `yaml:"watch"`
	AI struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"ai"`
	Cache struct {
		Path string `yaml:"path"` // empty disables the symbol cache
	} `yaml:"cache"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.Watch.IntervalSeconds = 30
	cfg.Watch.ChangelogDir = "changelog"
	cfg.AI.Provider = "openai"
	cfg.Server.Port = 5050
	return cfg
}

// Load reads configuration in three layers: .env file if present, the
// YAML config file, then environment variable overrides. A missing
// config file falls back to defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if apiKey := os.Getenv("GITSCRIBE_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" && cfg.AI.APIKey == "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("GITSCRIBE_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}

	if cfg.Watch.IntervalSeconds <= 0 {
		cfg.Watch.IntervalSeconds = 30
	}
	if cfg.Watch.ChangelogDir == "" {
		cfg.Watch.ChangelogDir = "changelog"
	}
	if cfg.Project.Root == "" {
		cfg.Project.Root = "."
	}
	return cfg, nil
}
