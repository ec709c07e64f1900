// Package config loads runtime configuration from an optional YAML file
// and the environment. Environment variables always win over file values.
package config

import (
	"fmt"
	"os"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

const (
	defaultAPIURL    = "https://raw.githubusercontent.com/hackclub/YSWS-Catalog/main/api.json"
	defaultStateFile = "./data/state.json"
	defaultProvider  = "mailersend"
	defaultFromName  = "HCNoticer"
)

// Email holds sender identity, recipients, and provider selection.
type Email struct {
	Provider  string   `yaml:"provider"` // mailersend, gmail, or mock
	APIKey    string   `yaml:"api_key"`
	FromName  string   `yaml:"from_name"`
	FromEmail string   `yaml:"from_email"`
	To        []string `yaml:"to"`
}

// Config is the full runtime configuration.
type Config struct {
	APIURL        string `yaml:"api_url"`
	StateFile     string `yaml:"state_file"`
	StorageBucket string `yaml:"storage_bucket"` // when set, state lives in GCS instead of StateFile
	Schedule      string `yaml:"schedule"`       // cron spec; empty means run once
	Email         Email  `yaml:"email"`
}

// Load builds the configuration: defaults, then the YAML file at path (if
// given), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		APIURL:    defaultAPIURL,
		StateFile: defaultStateFile,
		Email: Email{
			Provider: defaultProvider,
			FromName: defaultFromName,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Email.Provider == "" {
		cfg.Email.Provider = defaultProvider
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = defaultFromName
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("YSWS_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		cfg.StorageBucket = v
	}
	if v := os.Getenv("SCHEDULE"); v != "" {
		cfg.Schedule = v
	}
	if v := os.Getenv("EMAIL_PROVIDER"); v != "" {
		cfg.Email.Provider = v
	}
	if v := os.Getenv("MAILERSEND_API_KEY"); v != "" {
		cfg.Email.APIKey = v
	}
	if v := os.Getenv("EMAIL_FROM_NAME"); v != "" {
		cfg.Email.FromName = v
	}
	if v := os.Getenv("EMAIL_FROM_EMAIL"); v != "" {
		cfg.Email.FromEmail = v
	}
	if v := os.Getenv("EMAIL_TO"); v != "" {
		cfg.Email.To = splitList(v)
	}
}

// splitList parses a comma-separated recipient list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
