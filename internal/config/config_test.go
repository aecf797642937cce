package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "PORT", "JWT_EXPIRES_IN", "BCRYPT_COST", "FRONTEND_URL", "RESET_CLEANUP_INTERVAL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "7d", cfg.JWTExpiresIn)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "http://localhost:3001", cfg.FrontendURL)
	assert.Equal(t, time.Hour, cfg.ResetCleanupInterval)
	assert.Contains(t, cfg.DatabaseURL, "postgres://")
	assert.Contains(t, cfg.DatabaseURL, "sslmode=disable")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x?sslmode=disable")
	t.Setenv("FRONTEND_URL", "https://app.example.com/")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("SMTP_USE_TLS", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()

	assert.Equal(t, "postgres://u:p@db:5432/x?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.SMTP.UseTLS)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoadWithOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
port: "7000"
frontend_url: https://finance.example.com/
jwt_expires_in: 12h
smtp:
  host: smtp.example.com
  port: "2525"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("port", "", "")
	flags.String("log-format", "", "")
	require.NoError(t, flags.Parse([]string{"--log-format=text"}))

	cfg, err := LoadWithOverrides(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port, "file overrides env")
	assert.Equal(t, "text", cfg.LogFormat, "set flag overrides default")
	assert.Equal(t, "https://finance.example.com", cfg.FrontendURL)
	assert.Equal(t, "12h", cfg.JWTExpiresIn)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, "2525", cfg.SMTP.Port)
}

func TestLoadWithOverridesUnsetFlagKeepsEnv(t *testing.T) {
	t.Setenv("PORT", "9100")
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("port", "8080", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadWithOverrides("", flags)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
}

func TestLoadWithOverridesMissingFile(t *testing.T) {
	_, err := LoadWithOverrides(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"", 7 * 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"xd", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Environment: "production", JWTSecret: "s3cret", JWTExpiresIn: "7d", BcryptCost: 10}
	}

	assert.NoError(t, base().Validate())

	noSecret := base()
	noSecret.JWTSecret = ""
	assert.ErrorContains(t, noSecret.Validate(), "JWT_SECRET")

	devNoSecret := base()
	devNoSecret.Environment = "development"
	devNoSecret.JWTSecret = ""
	assert.NoError(t, devNoSecret.Validate())

	weak := base()
	weak.BcryptCost = 4
	assert.ErrorContains(t, weak.Validate(), "BCRYPT_COST")

	devWeak := base()
	devWeak.Environment = "test"
	devWeak.BcryptCost = 4
	assert.NoError(t, devWeak.Validate())

	badTTL := base()
	badTTL.JWTExpiresIn = "-1h"
	assert.ErrorContains(t, badTTL.Validate(), "JWT_EXPIRES_IN")
}
