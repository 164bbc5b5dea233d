// ABOUTME: Configuration loader for the storefront CLI
// ABOUTME: Layers defaults, an optional YAML file, .env and environment variables

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Session storage backends
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

const DefaultAPIURL = "http://localhost:3000/"

type Config struct {
	// Remote API
	APIURL         string        `yaml:"api_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // per-call timeout for cart and payment calls

	// Local state
	ConfigDir      string `yaml:"-"`
	SessionBackend string `yaml:"session_backend"` // file, redis (default: file)

	// Redis session slot (optional)
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Catalog
	CatalogCacheTTL time.Duration `yaml:"catalog_cache_ttl"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefaultConfigDir returns the config directory following XDG conventions
func DefaultConfigDir() string {
	if dir := os.Getenv("STOREFRONT_CONFIG_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "storefront")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "storefront")
}

// Load builds the configuration. path is an optional YAML file; when empty,
// <configDir>/config.yaml is used if it exists.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:          DefaultAPIURL,
		RequestTimeout:  30 * time.Second,
		ConfigDir:       DefaultConfigDir(),
		SessionBackend:  BackendFile,
		RedisAddr:       "localhost:6379",
		CatalogCacheTTL: 5 * time.Minute,
	}

	explicit := path != ""
	if !explicit && cfg.ConfigDir != "" {
		path = filepath.Join(cfg.ConfigDir, "config.yaml")
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}

	cfg.APIURL = getEnv("STOREFRONT_API_URL", cfg.APIURL)
	cfg.RequestTimeout = getEnvDuration("STOREFRONT_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.SessionBackend = strings.ToLower(getEnv("STOREFRONT_SESSION_BACKEND", cfg.SessionBackend))
	cfg.RedisAddr = getEnv("STOREFRONT_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("STOREFRONT_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("STOREFRONT_REDIS_DB", cfg.RedisDB)
	cfg.CatalogCacheTTL = getEnvDuration("STOREFRONT_CATALOG_CACHE_TTL", cfg.CatalogCacheTTL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api url %q must be an absolute http(s) URL", c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url %q must use http or https", c.APIURL)
	}
	switch c.SessionBackend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("session backend must be %q or %q, got %q", BackendFile, BackendRedis, c.SessionBackend)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// SessionFile returns the path of the persisted session slot
func (c *Config) SessionFile() string {
	return filepath.Join(c.ConfigDir, "user-storage.json")
}

// LogFile returns the path used by the TUI debug log
func (c *Config) LogFile() string {
	return filepath.Join(c.ConfigDir, "debug.log")
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return nil
}

// loadDotEnv loads a .env file without overriding variables already set
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
