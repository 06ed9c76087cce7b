// Package config loads the CLI configuration file.
//
// The file is YAML and is looked up at $CODENVY_CONFIG, falling back to
// ~/.codenvy/config.yaml. A missing file yields the defaults. Paths may start
// with "~/" and are expanded against the user's home directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfig = "CODENVY_CONFIG"

	configDir  = ".codenvy"
	configFile = "config.yaml"
)

type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

type Config struct {
	Preferences PreferencesConfig `yaml:"preferences"`
	Log         LogConfig         `yaml:"log"`
	HTTP        HTTPConfig        `yaml:"http"`
	Security    SecurityConfig    `yaml:"security"`
}

type PreferencesConfig struct {
	// Backend selects the store holding remotes and credentials.
	Backend Backend `yaml:"backend"`

	// Path is the preferences file (json) or database (sqlite).
	Path string `yaml:"path"`
}

type LogConfig struct {
	File string `yaml:"file"`
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`

	// Debug logs every request and response with credentials redacted.
	Debug bool `yaml:"debug"`
}

type SecurityConfig struct {
	// TokenKeyFile holds an age X25519 identity. When set, tokens are
	// sealed before they reach the preferences store.
	TokenKeyFile string `yaml:"token_key_file"`
}

// Default returns the configuration used when no file exists.
func Default(home string) *Config {
	base := filepath.Join(home, configDir)
	return &Config{
		Preferences: PreferencesConfig{
			Backend: BackendJSON,
			Path:    filepath.Join(base, "preferences.json"),
		},
		Log: LogConfig{
			File: filepath.Join(base, "codenvy.log"),
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// DefaultPath returns $CODENVY_CONFIG or ~/.codenvy/config.yaml.
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}

// Load reads the file at path over the defaults. An empty path means
// DefaultPath.
func Load(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default(home)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.Preferences.Path = expandHome(cfg.Preferences.Path, home)
	cfg.Log.File = expandHome(cfg.Log.File, home)
	cfg.Security.TokenKeyFile = expandHome(cfg.Security.TokenKeyFile, home)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Preferences.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown preferences backend %q (want json or sqlite)", c.Preferences.Backend)
	}
	if c.Preferences.Path == "" {
		return errors.New("preferences.path is required")
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative, got %s", c.HTTP.Timeout)
	}
	return nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
