// Package config handles environment and global-file configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "multilit"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// DefaultPort is the HTTP listen port when none is configured.
	DefaultPort = 8000
)

// ErrSpringerKeyMissing is the configuration error raised when the
// Springer credential is absent. It is surfaced before any request is
// made toward Springer.
var ErrSpringerKeyMissing = errors.New("SPRINGER_API_KEY missing")

// Config holds the resolved runtime configuration.
type Config struct {
	// SpringerAPIKey is required for the Springer Open Access source.
	// The other five sources need no credential.
	SpringerAPIKey string

	// Port is the HTTP listen port for the serve command.
	Port int
}

// globalConfig is the on-disk shape of the global config file.
type globalConfig struct {
	SpringerAPIKey string `yaml:"springer_api_key,omitempty"`
	Port           int    `yaml:"port,omitempty"`
}

// globalConfigCache caches the loaded global config.
var globalConfigCache *globalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/multilit/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// loadGlobal loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func loadGlobal() (*globalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &globalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &globalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg globalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// Load resolves configuration in precedence order: environment
// variables, then a .env file in the working directory, then the global
// config file. SPRINGER_API_KEY and PORT are the recognized variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	global, err := loadGlobal()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SpringerAPIKey: global.SpringerAPIKey,
		Port:           global.Port,
	}

	if key := os.Getenv("SPRINGER_API_KEY"); key != "" {
		cfg.SpringerAPIKey = key
	}
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("parsing PORT: %w", err)
		}
		cfg.Port = port
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	return cfg, nil
}

// RequireSpringerKey returns the Springer API key or the fixed
// configuration error if it is not set.
func (c *Config) RequireSpringerKey() (string, error) {
	if c.SpringerAPIKey == "" {
		return "", ErrSpringerKeyMissing
	}
	return c.SpringerAPIKey, nil
}
