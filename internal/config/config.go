// Package config loads the agent configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all agent configuration.
type Config struct {
	// Sandbox configures the remote execution environments.
	Sandbox SandboxConfig `yaml:"sandbox"`

	// Logging controls log output.
	Logging LoggingConfig `yaml:"logging"`
}

// SandboxConfig configures remote environment provisioning.
type SandboxConfig struct {
	// Elevated-tier credentials. All three must be set together;
	// leaving all empty falls back to default-tier provisioning.
	TeamID    string `yaml:"team_id"`
	ProjectID string `yaml:"project_id"`
	Token     string `yaml:"token"`

	BaseURL string `yaml:"base_url"`
	Runtime string `yaml:"runtime"`
	VCPUs   int    `yaml:"vcpus"`

	// SessionTimeout is the idle timeout attached to each environment.
	SessionTimeout string `yaml:"session_timeout"`

	// ProvisionTimeout is the hard deadline on environment creation.
	ProvisionTimeout string `yaml:"provision_timeout"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Sandbox: SandboxConfig{
			BaseURL:          "https://api.vercel.com",
			Runtime:          "node22",
			VCPUs:            4,
			SessionTimeout:   "30m",
			ProvisionTimeout: "10m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a config file, applies defaults and environment overrides.
// A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets environment variables win over the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SANDBOX_TEAM_ID"); v != "" {
		c.Sandbox.TeamID = v
	}
	if v := os.Getenv("SANDBOX_PROJECT_ID"); v != "" {
		c.Sandbox.ProjectID = v
	}
	if v := os.Getenv("SANDBOX_TOKEN"); v != "" {
		c.Sandbox.Token = v
	}
	if v := os.Getenv("SANDBOX_BASE_URL"); v != "" {
		c.Sandbox.BaseURL = v
	}
	if v := os.Getenv("GHSEARCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// SessionTimeoutDuration parses the session timeout, falling back to 30m.
func (s SandboxConfig) SessionTimeoutDuration() time.Duration {
	return parseDuration(s.SessionTimeout, 30*time.Minute)
}

// ProvisionTimeoutDuration parses the provisioning deadline, falling back to 10m.
func (s SandboxConfig) ProvisionTimeoutDuration() time.Duration {
	return parseDuration(s.ProvisionTimeout, 10*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
