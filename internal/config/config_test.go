package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Cleanup(withCleanEnv(t, nil))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, BackendFile, cfg.SessionBackend)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, filepath.Join(os.Getenv("STOREFRONT_CONFIG_DIR"), "user-storage.json"), cfg.SessionFile())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Cleanup(withCleanEnv(t, map[string]string{
		"STOREFRONT_API_URL":         "https://shop.example.com/",
		"STOREFRONT_SESSION_BACKEND": "REDIS",
		"STOREFRONT_REDIS_ADDR":      "redis.internal:6380",
		"STOREFRONT_REDIS_DB":        "3",
		"STOREFRONT_REQUEST_TIMEOUT": "5s",
		"LOG_LEVEL":                  "debug",
	}))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/", cfg.APIURL)
	assert.Equal(t, BackendRedis, cfg.SessionBackend)
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	t.Cleanup(withCleanEnv(t, map[string]string{
		"STOREFRONT_REQUEST_TIMEOUT": "7s",
	}))

	path := filepath.Join(os.Getenv("STOREFRONT_CONFIG_DIR"), "config.yaml")
	content := "api_url: https://yaml.example.com/\nrequest_timeout: 12s\ncatalog_cache_ttl: 1m\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://yaml.example.com/", cfg.APIURL)
	assert.Equal(t, time.Minute, cfg.CatalogCacheTTL)
	// Environment wins over the file
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_ExplicitFileMissing(t *testing.T) {
	t.Cleanup(withCleanEnv(t, nil))

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	t.Cleanup(withCleanEnv(t, nil))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STOREFRONT_API_URL=https://dotenv.example.com/\n"), 0600))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.com/", cfg.APIURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"relative url", func(c *Config) { c.APIURL = "/api" }, true},
		{"ftp url", func(c *Config) { c.APIURL = "ftp://shop.example.com" }, true},
		{"unknown backend", func(c *Config) { c.SessionBackend = "sqlite" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				APIURL:         "https://shop.example.com/",
				SessionBackend: BackendFile,
				RequestTimeout: time.Second,
			}
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
