package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Counter  CounterConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	Issuer                string
	AccessTokenTTLMinutes int
	RefreshTokenTTLDays   int
	RoleCacheTTLMinutes   int
	VerifyCodeTTLMinutes  int
	BcryptCost            int
}

// CounterConfig tunes the counter reconciliation engine.
type CounterConfig struct {
	ReconcileIntervalMinutes int
	HotSetTTLMinutes         int
	HotListSize              int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "campus-forum-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			Issuer:                getEnv("AUTH_JWT_ISSUER", "campus-forum"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 30),
			RefreshTokenTTLDays:   getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_DAYS", 30),
			RoleCacheTTLMinutes:   getEnvAsInt("AUTH_ROLE_CACHE_TTL_MINUTES", 30),
			VerifyCodeTTLMinutes:  getEnvAsInt("AUTH_VERIFY_CODE_TTL_MINUTES", 5),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Counter: CounterConfig{
			ReconcileIntervalMinutes: getEnvAsInt("COUNTER_RECONCILE_INTERVAL_MINUTES", 10),
			HotSetTTLMinutes:         getEnvAsInt("COUNTER_HOT_SET_TTL_MINUTES", 60),
			HotListSize:              getEnvAsInt("COUNTER_HOT_LIST_SIZE", 10),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the access credential lifetime.
func (c AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh credential lifetime.
func (c AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLDays) * 24 * time.Hour
}

// RoleCacheTTL returns the role cache entry lifetime.
func (c AuthConfig) RoleCacheTTL() time.Duration {
	return time.Duration(c.RoleCacheTTLMinutes) * time.Minute
}

// VerifyCodeTTL returns the verify code lifetime.
func (c AuthConfig) VerifyCodeTTL() time.Duration {
	return time.Duration(c.VerifyCodeTTLMinutes) * time.Minute
}

// ReconcileInterval returns the pause between reconciliation passes.
func (c CounterConfig) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalMinutes) * time.Minute
}

// HotSetTTL returns the ranked hot-set lifetime.
func (c CounterConfig) HotSetTTL() time.Duration {
	return time.Duration(c.HotSetTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
