package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.Equal(t, ":5000", cfg.Address)
	require.Equal(t, EnvDevelopment, cfg.Environment)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 30, cfg.RefreshTokenTTLDays)
	require.Equal(t, 30*24*time.Hour, cfg.RefreshTokenTTL())
	require.False(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverlay(t *testing.T) {
	t.Setenv("ADDRESS", ":8080")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Address)
	require.Equal(t, "postgres://test", cfg.DatabaseDSN)
	require.Equal(t, "s3cret", cfg.JWTSecret)
	require.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 7, cfg.RefreshTokenTTLDays)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "fifteen minutes")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_InvalidDays(t *testing.T) {
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "a month")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidate_ProductionRequiresRealSecret(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.Environment = EnvProduction

	require.Error(t, cfg.Validate(), "dev default secret must be rejected in production")

	cfg.JWTSecret = "short"
	require.Error(t, cfg.Validate(), "short secrets must be rejected in production")

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	require.NoError(t, cfg.Validate())
}

func TestValidate_UnknownEnvironment(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.Environment = "staging"
	require.Error(t, cfg.Validate())
}

func TestValidate_NonPositiveTTLs(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.AccessTokenTTL = 0
	require.Error(t, cfg.Validate())

	cfg.LoadDefaults()
	cfg.RefreshTokenTTLDays = 0
	require.Error(t, cfg.Validate())
}
