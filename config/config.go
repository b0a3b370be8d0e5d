package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"newsweb/feed"
	"newsweb/ident"
)

// Config holds all application configuration.
type Config struct {
	ListenAddr       string `yaml:"listen_addr"`
	APIBaseURL       string `yaml:"api_base_url"`
	IdentityPath     string `yaml:"identity_path"`
	PageSize         int    `yaml:"page_size"`
	FetchTimeoutSecs int    `yaml:"fetch_timeout_secs"`
	LogLevel         string `yaml:"log_level"`

	// Dev datastore settings, used by cmd/datastore.
	DBPath        string `yaml:"db_path"`
	DatastoreAddr string `yaml:"datastore_addr"`
}

// Load reads configuration from a YAML file and applies defaults. A missing
// file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	case os.IsNotExist(err):
		// Run with defaults.
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// GetConfigPath returns the config file path from environment or default.
func GetConfigPath() string {
	if path := os.Getenv("NEWSWEB_CONFIG"); path != "" {
		return path
	}
	return "./config.yaml"
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "localhost:8080"
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:3000"
	}
	if cfg.IdentityPath == "" {
		cfg.IdentityPath = ident.DefaultPath()
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = feed.DefaultPageSize
	}
	if cfg.FetchTimeoutSecs == 0 {
		cfg.FetchTimeoutSecs = 10
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./newsweb.db"
	}
	if cfg.DatastoreAddr == "" {
		cfg.DatastoreAddr = "localhost:3000"
	}
}

func applyEnvironmentOverrides(cfg *Config) {
	if base := os.Getenv("NEWSWEB_API_BASE_URL"); base != "" {
		cfg.APIBaseURL = base
	}
	if dbPath := os.Getenv("NEWSWEB_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if path := os.Getenv("NEWSWEB_IDENTITY"); path != "" {
		cfg.IdentityPath = path
	}
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_base_url must be an absolute URL, got %q", cfg.APIBaseURL)
	}
	if !feed.ValidPageSize(cfg.PageSize) {
		return fmt.Errorf("page_size must be one of %v, got %d", feed.PageSizes, cfg.PageSize)
	}
	if cfg.FetchTimeoutSecs < 1 {
		return fmt.Errorf("fetch_timeout_secs must be positive, got %d", cfg.FetchTimeoutSecs)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", cfg.LogLevel)
	}
	return nil
}
