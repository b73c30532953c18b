// Package config resolves the console configuration from defaults, the
// config file, a .env file, the environment and command-line flags, in
// increasing order of precedence.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/log"
)

// LegacyAPIURLEnv is the variable name used by the web build of the console
const LegacyAPIURLEnv = "VITE_API_URL"

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config is the effective configuration
type Config struct {
	APIURL        string        `yaml:"api_url" json:"api_url" env:"BOSS_API_URL"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" env:"BOSS_TIMEOUT"`
	MaxRetries    int           `yaml:"max_retries" json:"max_retries" env:"BOSS_MAX_RETRIES"`
	CredentialDir string        `yaml:"credential_dir" json:"credential_dir" env:"BOSS_CREDENTIAL_DIR"`
	CredentialKey string        `yaml:"credential_key,omitempty" json:"credential_key,omitempty" env:"BOSS_CREDENTIAL_KEY"`
	LogLevel      string        `yaml:"log_level" json:"log_level" env:"BOSS_LOG_LEVEL"`
	LogFormat     string        `yaml:"log_format" json:"log_format" env:"BOSS_LOG_FORMAT"`
	Output        string        `yaml:"output" json:"output" env:"BOSS_OUTPUT"`
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{
		APIURL:     api.DefaultBaseURL,
		Timeout:    30 * time.Second,
		MaxRetries: 1,
		LogLevel:   "warn",
		LogFormat:  "text",
		Output:     OutputText,
	}
	if dir, err := DefaultDir(); err == nil {
		cfg.CredentialDir = dir
	}
	return cfg
}

// DefaultDir returns ~/.boss
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".boss"), nil
}

// DefaultPath returns ~/.boss/config.yaml
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadOptions controls where Load looks
type LoadOptions struct {
	// Path is an explicit config file; it must exist when set
	Path string
	// EnvFile is the dotenv file to read; empty means ".env"
	EnvFile string
}

// Load resolves the configuration. Flags are applied afterwards by the caller.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	path := opts.Path
	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !stderrors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set
	if err := godotenv.Load(envFile); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, errors.KindValidation, "failed to read "+envFile, err)
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, errors.KindValidation, "failed to parse "+path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	legacy := os.Getenv(LegacyAPIURLEnv)
	if legacy != "" && os.Getenv("BOSS_API_URL") == "" {
		c.APIURL = legacy
	}
	if err := env.Parse(c); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, errors.KindValidation, "invalid environment configuration", err)
	}
	return nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeConfigInvalid, errors.KindValidation,
			fmt.Sprintf("api url %q must be an absolute http(s) URL", c.APIURL)).
			WithSuggestion("Set BOSS_API_URL, for example http://localhost:8000")
	}
	if c.Timeout <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, errors.KindValidation, "timeout must be positive")
	}
	if c.MaxRetries < 0 || c.MaxRetries > 3 {
		return errors.New(errors.ErrCodeConfigInvalid, errors.KindValidation, "max_retries must be between 0 and 3")
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return errors.New(errors.ErrCodeConfigInvalid, errors.KindValidation,
			fmt.Sprintf("unsupported output format %q", c.Output)).
			WithSuggestion("Use one of: text, json, yaml")
	}
	if c.CredentialDir == "" {
		return errors.New(errors.ErrCodeConfigInvalid, errors.KindValidation, "credential directory is not set")
	}
	return nil
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	if c.CredentialKey != "" {
		c.CredentialKey = "********"
	}
	return c
}

// API returns the API client configuration
func (c *Config) API() api.Config {
	cfg := api.DefaultConfig()
	cfg.BaseURL = c.APIURL
	cfg.Timeout = c.Timeout
	cfg.MaxRetries = c.MaxRetries
	return cfg
}

// Log returns the logger configuration
func (c *Config) Log() log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(c.LogLevel)
	cfg.Format = log.ParseFormat(c.LogFormat)
	return cfg
}
