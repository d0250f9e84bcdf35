package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// parseEnv overlays recognized environment variables onto cfg.
//
// Recognized variables:
//
//	ADDRESS                  bind address (e.g. ":5000")
//	APP_ENV                  development | test | production
//	DATABASE_URL             PostgreSQL DSN (pgx)
//	JWT_SECRET               HMAC secret for access tokens
//	ACCESS_TOKEN_TTL         Go duration (e.g. "15m")
//	REFRESH_TOKEN_TTL_DAYS   integer number of days
//	CORS_ORIGINS             comma-separated origin allowlist
func parseEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		cfg.Address = v
	}
	if v, ok := os.LookupEnv("APP_ENV"); ok {
		cfg.Environment = v
	}
	if v, ok := os.LookupEnv("DATABASE_URL"); ok {
		cfg.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		cfg.JWTSecret = v
	}
	if v, ok := os.LookupEnv("ACCESS_TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid ACCESS_TOKEN_TTL %q: %w", v, err)
		}
		cfg.AccessTokenTTL = d
	}
	if v, ok := os.LookupEnv("REFRESH_TOKEN_TTL_DAYS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid REFRESH_TOKEN_TTL_DAYS %q: %w", v, err)
		}
		cfg.RefreshTokenTTLDays = n
	}
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitOrigins(v)
	}
	return nil
}
