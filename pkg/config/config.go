package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	Sandbox SandboxConfig `yaml:"sandbox" json:"sandbox"`
	Exec    ExecConfig    `yaml:"exec" json:"exec"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SandboxConfig holds sandbox policy defaults
type SandboxConfig struct {
	// DefaultMode is the sandbox mode used when the caller does not pick
	// one: "danger-full-access", "read-only" or "workspace-write".
	DefaultMode string `yaml:"defaultMode" json:"defaultMode"`

	// WritableRoots are extra writable directory roots granted under
	// workspace-write, in addition to the working directory and the
	// temp directories.
	WritableRoots []string `yaml:"writableRoots" json:"writableRoots"`
}

// ExecConfig holds command execution settings
type ExecConfig struct {
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	MaxOutputBytes int           `yaml:"maxOutputBytes" json:"maxOutputBytes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// DefaultConfig Default configuration values
var DefaultConfig = Config{
	Sandbox: SandboxConfig{
		DefaultMode:   "read-only",
		WritableRoots: nil,
	},
	Exec: ExecConfig{
		Timeout:        60 * time.Second,
		MaxOutputBytes: 1 << 20, // 1 MB
	},
	Logging: LoggingConfig{
		Level: "INFO",
	},
}

// LoadConfig loads configuration from multiple sources in order of precedence:
// 1. Environment variables (highest precedence)
// 2. Configuration file
// 3. Default values (lowest precedence)
func LoadConfig() (*Config, string, error) {
	config := DefaultConfig

	path, err := loadFromFile(&config)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config file: %w", err)
	}

	loadFromEnv(&config)

	if e := config.Validate(); e != nil {
		return nil, "", fmt.Errorf("configuration validation failed: %w", e)
	}

	return &config, path, nil
}

// loadFromFile loads configuration from the first YAML file that exists
func loadFromFile(config *Config) (string, error) {
	configPaths := []string{
		os.Getenv("SHELLBOX_CONFIG_PATH"), // Custom path from environment
		"./shellbox.yaml",                 // Current directory
		"/etc/shellbox/config.yaml",       // System-wide
	}

	for _, path := range configPaths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return "", fmt.Errorf("failed to parse config file %s: %w", path, err)
		}

		return path, nil
	}

	return "built-in defaults (no config file found)", nil
}

// loadFromEnv overrides configuration from environment variables
func loadFromEnv(config *Config) {
	if val := os.Getenv("SHELLBOX_DEFAULT_MODE"); val != "" {
		config.Sandbox.DefaultMode = val
	}
	if val := os.Getenv("SHELLBOX_WRITABLE_ROOTS"); val != "" {
		config.Sandbox.WritableRoots = strings.Split(val, ",")
	}
	if val := os.Getenv("SHELLBOX_EXEC_TIMEOUT"); val != "" {
		if timeout, err := time.ParseDuration(val); err == nil {
			config.Exec.Timeout = timeout
		}
	}
	if val := os.Getenv("SHELLBOX_MAX_OUTPUT_BYTES"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.Exec.MaxOutputBytes = size
		}
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		config.Logging.Level = val
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Sandbox.DefaultMode {
	case "danger-full-access", "read-only", "workspace-write":
	default:
		return fmt.Errorf("invalid default sandbox mode: %s", c.Sandbox.DefaultMode)
	}

	for _, root := range c.Sandbox.WritableRoots {
		if !filepath.IsAbs(root) {
			return fmt.Errorf("writable root must be an absolute path: %s", root)
		}
	}

	if c.Exec.Timeout <= 0 {
		return fmt.Errorf("invalid exec timeout: %s", c.Exec.Timeout)
	}

	if c.Exec.MaxOutputBytes < 1 {
		return fmt.Errorf("invalid max output bytes: %d", c.Exec.MaxOutputBytes)
	}

	validLevels := map[string]bool{
		"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// LoadFromFile loads a specific configuration file
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ToYAML renders the configuration as YAML
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
