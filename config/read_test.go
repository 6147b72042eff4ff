package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestReadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "Asia/Bangkok", cfg.Booking.DefaultTimezone)
	assert.Equal(t, 14, cfg.Booking.DefaultWindowDays)
	assert.Equal(t, "sapan", cfg.Nats.SubjectPrefix)
	assert.False(t, cfg.IsProduction())
}

func TestReadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, "database:\n  host: db.local\n")
	t.Setenv("SAPAN_DATABASE_HOST", "override.local")
	t.Setenv("SAPAN_BOOKING_DEFAULT_TIMEZONE", "Europe/Berlin")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "override.local", cfg.Database.Host)
	assert.Equal(t, "Europe/Berlin", cfg.Booking.DefaultTimezone)
}

func TestReadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadConfig(dir)
	assert.Error(t, err)

	t.Setenv("SAPAN_DATABASE_HOST", "db")
	cfg, err := ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.Database.Host)
}

func TestReadConfigDotEnv(t *testing.T) {
	dir := writeConfig(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SAPAN_SERVER_PORT=8123\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SAPAN_SERVER_PORT") })

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8000, Environment: "development"},
			Booking: BookingConfig{DefaultTimezone: "UTC", DefaultWindowDays: 14, MaxWindowDays: 60},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"unknown environment", func(c *Config) { c.Server.Environment = "qa" }, true},
		{"google id without secret", func(c *Config) { c.Google.ClientID = "id" }, true},
		{"short encryption key", func(c *Config) { c.Authentication.EncryptionKey = "abcd" }, true},
		{"good encryption key", func(c *Config) {
			c.Authentication.EncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
		}, false},
		{"bad timezone", func(c *Config) { c.Booking.DefaultTimezone = "Mars/Olympus" }, true},
		{"window beyond max", func(c *Config) { c.Booking.DefaultWindowDays = 90 }, true},
		{"dev login in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Authentication.DevLogin = true
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
