package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config values from environment variables. A .env file in
// the working directory is loaded first, if present; real environment
// variables win over .env entries (godotenv does not override them).
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	readString(&cfg.EndpointAddr, "RASTLINKA_ADDR")
	readString(&cfg.DatabaseDSN, "DATABASE_DSN")
	readString(&cfg.SecretKey, "JWT_SECRET")
	readDuration(&cfg.TokenValidityDuration, "TOKEN_TTL")
	readDuration(&cfg.RequestTimeout, "REQUEST_TIMEOUT")
	readInt(&cfg.CommissionBps, "COMMISSION_BPS")
	readInt(&cfg.AuthRateLimit, "AUTH_RATE_LIMIT")
	readDuration(&cfg.AuthRateWindow, "AUTH_RATE_WINDOW")
	readString(&cfg.RedisAddr, "REDIS_ADDR")
	readString(&cfg.RedisPassword, "REDIS_PASSWORD")
	readInt(&cfg.RedisDB, "REDIS_DB")
	readString(&cfg.S3RootUser, "S3_ROOT_USER")
	readString(&cfg.S3RootPassword, "S3_ROOT_PASSWORD")
	readString(&cfg.S3Bucket, "S3_BUCKET")
	readString(&cfg.S3Region, "S3_REGION")
	readString(&cfg.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

func readString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func readInt(dst *int, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	*dst = v
}

// readDuration accepts Go duration strings ("5s", "168h").
func readDuration(dst *time.Duration, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return
	}
	*dst = v
}
