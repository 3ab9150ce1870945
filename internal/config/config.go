package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port              string
	DatabaseURL       string
	StoreDriver       string
	AutoMigrate       bool
	AccessTokenSecret string
	AccessTokenTTL    time.Duration
	RedisAddr         string
	RedisPassword     string
	PublicPageTTL     time.Duration
	KafkaBrokers      []string
	KafkaGroupID      string
	LogFile           string
	LogLevel          string
	GinMode           string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port:              env("PORT", "8080"),
		DatabaseURL:       env("DATABASE_URL", ""),
		StoreDriver:       strings.ToLower(env("STORE_DRIVER", StorePostgres)),
		AccessTokenSecret: env("ACCESS_TOKEN_SECRET", ""),
		RedisAddr:         env("REDIS_ADDR", ""),
		RedisPassword:     getenv("REDIS_PASSWORD"),
		KafkaGroupID:      env("KAFKA_GROUP_ID", "notes-activity"),
		LogFile:           env("LOG_FILE", "logs/server.log"),
		LogLevel:          env("LOG_LEVEL", "info"),
		GinMode:           env("GIN_MODE", "release"),
	}

	var errs []error
	var err error
	if cfg.AutoMigrate, err = strconv.ParseBool(env("AUTO_MIGRATE", "true")); err != nil {
		errs = append(errs, fmt.Errorf("AUTO_MIGRATE: %w", err))
	}
	if cfg.AccessTokenTTL, err = time.ParseDuration(env("ACCESS_TOKEN_TTL", "24h")); err != nil {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_TTL: %w", err))
	}
	if cfg.PublicPageTTL, err = time.ParseDuration(env("PUBLIC_PAGE_TTL", "60s")); err != nil {
		errs = append(errs, fmt.Errorf("PUBLIC_PAGE_TTL: %w", err))
	}
	for _, b := range strings.Split(getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	switch cfg.StoreDriver {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.StoreDriver))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}
