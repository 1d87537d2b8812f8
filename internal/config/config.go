// Package config provides configuration loading and validation for the resume builder.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults used when neither the config file, the environment nor a flag sets a value.
const (
	DefaultPort       = 8080
	DefaultBackendURL = "http://localhost:8080"
	DefaultStorageDir = ".resume-builder"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty" yaml:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL

	// AI field improvement
	APIKey          string `json:"api_key,omitempty" yaml:"api_key,omitempty"`                   // Gemini API key
	ImproveEndpoint string `json:"improve_endpoint,omitempty" yaml:"improve_endpoint,omitempty"` // Remote improvement endpoint; overrides APIKey

	// Client side
	BackendURL string `json:"backend_url,omitempty" yaml:"backend_url,omitempty"` // REST API base URL
	StorageDir string `json:"storage_dir,omitempty" yaml:"storage_dir,omitempty"` // Drafts and session token

	// Export
	ChromePath string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"` // Chrome/Chromium binary for PDF export

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv reads the configuration from environment variables.
// An unparsable PORT is reported rather than ignored.
func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		APIKey:          os.Getenv("GEMINI_API_KEY"),
		ImproveEndpoint: os.Getenv("IMPROVE_ENDPOINT"),
		BackendURL:      os.Getenv("BACKEND_URL"),
		StorageDir:      os.Getenv("RESUME_STORAGE_DIR"),
		ChromePath:      os.Getenv("CHROME_PATH"),
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return cfg, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = p
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those depend on the
// command being run.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}

	for name, raw := range map[string]string{
		"backend_url":      c.BackendURL,
		"improve_endpoint": c.ImproveEndpoint,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: '%s' must be an http(s) URL: %s", name, raw)
		}
	}

	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome binary not found: %s", c.ChromePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults,
// then from the package defaults. It is used to layer flags over the config file
// over the environment.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.ImproveEndpoint == "" {
		result.ImproveEndpoint = defaults.ImproveEndpoint
	}
	if result.BackendURL == "" {
		result.BackendURL = defaults.BackendURL
	}
	if result.StorageDir == "" {
		result.StorageDir = defaults.StorageDir
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Package defaults
	if result.Port == 0 {
		result.Port = DefaultPort
	}
	if result.BackendURL == "" {
		result.BackendURL = DefaultBackendURL
	}
	if result.StorageDir == "" {
		result.StorageDir = DefaultStorageDir
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
