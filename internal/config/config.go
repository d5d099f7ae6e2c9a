package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultEnv             = "development"
	defaultLogLevel        = "info"
	defaultHTTPHost        = "0.0.0.0"
	defaultHTTPPort        = 8080
	defaultRedisAddr       = "localhost:6379"
	defaultRedisDB         = 0
	defaultCacheTTLSeconds = 30
	defaultTradesExchange  = "strata.trades"
	defaultQuotesExchange  = "strata.quotes"
	defaultPrefetch        = 100
	defaultBatchSize       = 500
	defaultBatchTimeout    = 2 * time.Second
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Env      string
	LogLevel logrus.Level
	HTTP     HTTPConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cache    CacheConfig
	RabbitMQ RabbitMQConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// PostgresConfig stores database connection parameters.
type PostgresConfig struct {
	DSN string
}

// RedisConfig stores Redis connection parameters. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig stores cache behavior.
type CacheConfig struct {
	TTLSeconds int
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RabbitMQConfig configures the trade and quote consumers. An empty URL disables them.
type RabbitMQConfig struct {
	URL            string
	TradesExchange string
	QuotesExchange string
	Prefetch       int
	BatchSize      int
	BatchTimeout   time.Duration
}

func (r RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

// Load builds Config from environment variables.
func Load() (*Config, error) {
	host := getString("HTTP_HOST", defaultHTTPHost)
	port, err := getInt("HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("parse HTTP_PORT: %w", err)
	}

	dsn, err := PostgresDSN()
	if err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(getString("LOG_LEVEL", defaultLogLevel))
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}

	redisDB, err := getInt("REDIS_DB", defaultRedisDB)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}

	cacheTTL, err := getInt("CACHE_TTL_SECONDS", defaultCacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_TTL_SECONDS: %w", err)
	}

	prefetch, err := getInt("RABBITMQ_PREFETCH", defaultPrefetch)
	if err != nil {
		return nil, fmt.Errorf("parse RABBITMQ_PREFETCH: %w", err)
	}

	batchSize, err := getInt("BATCH_SIZE", defaultBatchSize)
	if err != nil {
		return nil, fmt.Errorf("parse BATCH_SIZE: %w", err)
	}

	batchTimeout, err := getDuration("BATCH_TIMEOUT", defaultBatchTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse BATCH_TIMEOUT: %w", err)
	}

	return &Config{
		Env:      getString("APP_ENV", defaultEnv),
		LogLevel: level,
		HTTP:     HTTPConfig{Host: host, Port: port},
		Postgres: PostgresConfig{
			DSN: dsn,
		},
		Redis: RedisConfig{
			Addr:     getString("REDIS_ADDR", defaultRedisAddr),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Cache: CacheConfig{
			TTLSeconds: cacheTTL,
		},
		RabbitMQ: RabbitMQConfig{
			URL:            strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
			TradesExchange: getString("RABBITMQ_TRADES_EXCHANGE", defaultTradesExchange),
			QuotesExchange: getString("RABBITMQ_QUOTES_EXCHANGE", defaultQuotesExchange),
			Prefetch:       prefetch,
			BatchSize:      batchSize,
			BatchTimeout:   batchTimeout,
		},
	}, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to duration: %w", key, value, err)
	}
	return parsed, nil
}

// GetBool reads a boolean flag, falling back on unset or unparsable values.
func GetBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// PostgresDSN reads the required DATABASE_DSN setting.
func PostgresDSN() (string, error) {
	dsn := GetString("DATABASE_DSN", "")
	if dsn == "" {
		return "", errors.New("DATABASE_DSN is required")
	}
	return dsn, nil
}

// GetString is the exported form of getString for command-specific settings.
func GetString(key, fallback string) string {
	return strings.TrimSpace(getString(key, fallback))
}
