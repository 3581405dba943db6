package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PULSE_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("UPSTREAM_API_URL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:5000/api", cfg.UpstreamURL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "@every 1m", cfg.RefreshSchedule)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, 30, cfg.Archive.RetentionDays)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PULSE_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9100")
	t.Setenv("UPSTREAM_API_URL", "https://market.example.com/api")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "https://market.example.com/api", cfg.UpstreamURL)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.DevMode)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:            8080,
			UpstreamURL:     "http://localhost:5000/api",
			UpstreamTimeout: time.Second,
			Archive:         &ArchiveConfig{},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = 0 }, "invalid port"},
		{"relative upstream", func(c *Config) { c.UpstreamURL = "/api" }, "UPSTREAM_API_URL"},
		{"zero timeout", func(c *Config) { c.UpstreamTimeout = 0 }, "UPSTREAM_TIMEOUT"},
		{"archive without bucket", func(c *Config) {
			c.Archive = &ArchiveConfig{Enabled: true, AccessKeyID: "k", SecretAccessKey: "s"}
		}, "ARCHIVE_BUCKET"},
		{"archive without credentials", func(c *Config) {
			c.Archive = &ArchiveConfig{Enabled: true, Bucket: "views"}
		}, "credentials"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
