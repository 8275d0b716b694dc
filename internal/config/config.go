// Package config loads sbx settings from <dir>/config.json with SBX_*
// environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/marcus/sbx/pkg/modals"
	"github.com/spf13/viper"
)

const (
	configFile = "config.json"
	envPrefix  = "SBX"

	DefaultAPIURL = "https://codesandbox.io"
)

// Config holds application configuration.
type Config struct {
	APIURL         string          `mapstructure:"api_url"`
	Token          string          `mapstructure:"token"`
	LogLevel       string          `mapstructure:"log_level"`
	Theme          string          `mapstructure:"theme"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout"`
	Modal          ModalConfig     `mapstructure:"modal"`
	Dashboard      DashboardConfig `mapstructure:"dashboard"`
}

// ModalConfig controls the modal registry.
type ModalConfig struct {
	// Supersede is "orphan" or "cancel".
	Supersede string `mapstructure:"supersede"`
}

// DashboardConfig controls the dashboard page.
type DashboardConfig struct {
	PageSize    int `mapstructure:"page_size"`
	RecentLimit int `mapstructure:"recent_limit"`
}

// SupersedePolicy parses Modal.Supersede.
func (c Config) SupersedePolicy() (modals.SupersedePolicy, error) {
	return modals.ParseSupersedePolicy(c.Modal.Supersede)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// DefaultDir returns $SBX_DIR or ~/.sbx.
func DefaultDir() string {
	if dir := os.Getenv(envPrefix + "_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sbx"
	}
	return filepath.Join(home, ".sbx")
}

func newViper(withEnv bool) *viper.Viper {
	v := viper.New()

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("token", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("theme", "dark")
	v.SetDefault("request_timeout", "15s")
	v.SetDefault("modal.supersede", "orphan")
	v.SetDefault("dashboard.page_size", 50)
	v.SetDefault("dashboard.recent_limit", 5)

	v.SetConfigType("json")
	if withEnv {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	return v
}

// Load reads the config from disk with SBX_* overrides applied. A missing
// file yields the defaults.
func Load(baseDir string) (*Config, error) {
	return load(baseDir, true)
}

// load reads the config file. Without env the result is what Save would
// write back, so environment overrides never end up in the file.
func load(baseDir string, withEnv bool) (*Config, error) {
	v := newViper(withEnv)
	configPath := filepath.Join(baseDir, configFile)

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := cfg.SupersedePolicy(); err != nil {
		return nil, fmt.Errorf("modal.supersede: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to disk. The token is never written; it lives in
// the session file or SBX_TOKEN.
func Save(baseDir string, cfg *Config) error {
	configPath := filepath.Join(baseDir, configFile)

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("api_url", cfg.APIURL)
	v.Set("log_level", cfg.LogLevel)
	v.Set("theme", cfg.Theme)
	v.Set("request_timeout", cfg.RequestTimeout.String())
	v.Set("modal.supersede", cfg.Modal.Supersede)
	v.Set("dashboard.page_size", cfg.Dashboard.PageSize)
	v.Set("dashboard.recent_limit", cfg.Dashboard.RecentLimit)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Set updates one key in the stored config, e.g. "modal.supersede".
func Set(baseDir, key, value string) error {
	cfg, err := load(baseDir, false)
	if err != nil {
		return err
	}

	switch key {
	case "api_url":
		cfg.APIURL = value
	case "log_level":
		cfg.LogLevel = value
	case "theme":
		cfg.Theme = value
	case "request_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	case "modal.supersede":
		if _, err := modals.ParseSupersedePolicy(value); err != nil {
			return err
		}
		cfg.Modal.Supersede = value
	case "dashboard.page_size", "dashboard.recent_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s: want a positive integer, got %q", key, value)
		}
		if key == "dashboard.page_size" {
			cfg.Dashboard.PageSize = n
		} else {
			cfg.Dashboard.RecentLimit = n
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return Save(baseDir, cfg)
}
