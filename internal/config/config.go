// Package config loads ketotrack configuration from YAML and the environment.
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

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// OIDCConfig holds single sign-on settings. SSO is enabled when Issuer is set.
type OIDCConfig struct {
	Issuer       string `yaml:"issuer"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Config is the full client configuration.
type Config struct {
	Addr                 string        `yaml:"addr"`
	WebDir               string        `yaml:"web_dir"`
	DataDir              string        `yaml:"data_dir"`
	DatabaseURL          string        `yaml:"database_url"`
	RemoteTimeout        time.Duration `yaml:"remote_timeout"`
	MigrationParallelism int           `yaml:"migration_parallelism"`
	LocalQuotaBytes      int           `yaml:"local_quota_bytes"` // 0 disables the quota
	SessionSecret        string        `yaml:"session_secret"`    // signs HTTP session cookies
	SessionTTL           time.Duration `yaml:"session_ttl"`
	Log                  LogConfig     `yaml:"log"`
	OIDC                 OIDCConfig    `yaml:"oidc"`
}

// Load reads path (optional; "" skips the file), applies defaults, then
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.WebDir == "" {
		c.WebDir = "web"
	}
	if c.DataDir == "" {
		c.DataDir = "~/.ketotrack"
	}
	if strings.HasPrefix(c.DataDir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(home, c.DataDir[2:])
		}
	}
	if c.RemoteTimeout <= 0 {
		c.RemoteTimeout = 10 * time.Second
	}
	if c.MigrationParallelism <= 0 {
		c.MigrationParallelism = 4
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 72 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) applyEnv() error {
	c.Addr = env("KETOTRACK_ADDR", c.Addr)
	c.WebDir = env("KETOTRACK_WEB_DIR", c.WebDir)
	c.DataDir = env("KETOTRACK_DATA_DIR", c.DataDir)
	c.DatabaseURL = env("DATABASE_URL", c.DatabaseURL)
	c.Log.Level = env("KETOTRACK_LOG_LEVEL", c.Log.Level)
	c.SessionSecret = env("KETOTRACK_SESSION_SECRET", c.SessionSecret)
	c.OIDC.Issuer = env("OIDC_ISSUER", c.OIDC.Issuer)
	c.OIDC.ClientID = env("OIDC_CLIENT_ID", c.OIDC.ClientID)
	c.OIDC.ClientSecret = env("OIDC_CLIENT_SECRET", c.OIDC.ClientSecret)
	c.OIDC.RedirectURL = env("OIDC_REDIRECT_URL", c.OIDC.RedirectURL)

	if v := os.Getenv("KETOTRACK_REMOTE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("KETOTRACK_REMOTE_TIMEOUT: %w", err)
		}
		c.RemoteTimeout = d
	}
	if v := os.Getenv("KETOTRACK_LOCAL_QUOTA_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KETOTRACK_LOCAL_QUOTA_BYTES: %w", err)
		}
		c.LocalQuotaBytes = n
	}
	return nil
}

// SSOEnabled reports whether OIDC sign-in is configured.
func (c *Config) SSOEnabled() bool {
	return c.OIDC.Issuer != "" && c.OIDC.ClientID != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
