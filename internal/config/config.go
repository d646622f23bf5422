// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads application settings from a TOML file with
// environment overrides. Resolution order: explicit path, then
// ~/.demochat/config.toml, then built-in defaults. Environment variables
// win over the file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/PavelGnatyuk/demochat/internal/keychain"
	"github.com/PavelGnatyuk/demochat/internal/openai"
)

const (
	configDir  = ".demochat"
	configFile = "config.toml"
)

// Environment override variables.
const (
	EnvBaseURL     = "DEMOCHAT_BASE_URL"
	EnvModel       = "DEMOCHAT_MODEL"
	EnvTemperature = "DEMOCHAT_TEMPERATURE"
	EnvMaxTokens   = "DEMOCHAT_MAX_TOKENS"
	EnvTimeout     = "DEMOCHAT_TIMEOUT_SECS"
)

// Config is the application configuration.
type Config struct {
	BaseURL     string  `toml:"base_url"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	TimeoutSecs int     `toml:"timeout_secs"`
	MaxRetries  int     `toml:"max_retries"`
	APIKey      string  `toml:"api_key"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		BaseURL:     openai.DefaultBaseURL,
		Model:       openai.DefaultModel,
		Temperature: openai.DefaultTemperature,
		MaxTokens:   openai.DefaultMaxTokens,
		TimeoutSecs: int(openai.DefaultTimeout / time.Second),
		MaxRetries:  openai.DefaultMaxRetries,
	}
}

// defaultPath returns the standard config file location.
func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}

// Load reads the configuration. An explicit path must exist; the default
// location is optional and silently falls back to defaults when absent.
// Environment overrides apply last.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = defaultPath()
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("loading config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv layers environment overrides onto the config.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvTemperature); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Temperature = f
		}
	}
	if v := os.Getenv(EnvMaxTokens); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TimeoutSecs = n
		}
	}
	if v := os.Getenv(keychain.EnvAPIKey); v != "" {
		c.APIKey = v
	}
}

// Validate rejects configurations no request could be built from.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: base_url is empty")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.Model == "" {
		return fmt.Errorf("config: model is empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("config: max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.TimeoutSecs <= 0 {
		return fmt.Errorf("config: timeout_secs must be positive, got %d", c.TimeoutSecs)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("config: max_retries must be at least 1, got %d", c.MaxRetries)
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Options projects the config into request options.
func (c *Config) Options() openai.Options {
	return openai.Options{
		Model:       c.Model,
		Temperature: openai.Float64(c.Temperature),
		MaxTokens:   c.MaxTokens,
	}
}

// Credentials returns the credential resolution chain for this config:
// environment first, then the credential file, then the config's own key.
func (c *Config) Credentials() keychain.Chain {
	return keychain.Chain{
		keychain.Env{},
		keychain.DefaultFile(),
		keychain.Static(c.APIKey),
	}
}
