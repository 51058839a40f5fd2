package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN returns the key/value connection string used by the gorm driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// DatabaseURL returns the URL form used by golang-migrate.
func (c DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// KafkaConfig holds broker settings. Empty Brokers disables messaging.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// Enabled reports whether brokers are configured.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// RedisConfig holds cache settings. Empty Addr disables the cache.
type RedisConfig struct {
	Addr    string
	RoomTTL time.Duration
}

// RateLimitConfig configures the token bucket on mutating routes.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// ServiceConfig holds all configuration for the reservation service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	StorageDriver   string
	LockWaitTimeout time.Duration
	MigrationsPath  string
	DBConfig        DatabaseConfig
	KafkaConfig     KafkaConfig
	RedisConfig     RedisConfig
	RateLimit       RateLimitConfig
	OTelEndpoint    string
}

// Load reads configuration from a .env file (if present) and environment
// variables prefixed with RESERVATION_.
func Load() (*ServiceConfig, error) {
	v, err := newViper("RESERVATION")
	if err != nil {
		return nil, err
	}

	cfg := &ServiceConfig{
		Port:            normalizePort(v.GetString("SERVICE_PORT")),
		AppEnv:          v.GetString("APP_ENV"),
		StorageDriver:   strings.ToLower(v.GetString("STORAGE_DRIVER")),
		LockWaitTimeout: v.GetDuration("LOCK_WAIT_TIMEOUT"),
		MigrationsPath:  v.GetString("MIGRATIONS_PATH"),
		DBConfig: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			DBName:       v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		RedisConfig: RedisConfig{
			Addr:    v.GetString("REDIS_ADDR"),
			RoomTTL: v.GetDuration("ROOM_CACHE_TTL"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		OTelEndpoint: v.GetString("OTEL_EXPORTER_ENDPOINT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper(prefix string) (*viper.Viper, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("LOCK_WAIT_TIMEOUT", "3s")
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "frontdesk")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_GROUP_PREFIX", "frontdesk-")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("ROOM_CACHE_TTL", "30s")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("OTEL_EXPORTER_ENDPOINT", "")
	return v, nil
}

func (c *ServiceConfig) validate() error {
	switch c.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: want %s or %s", c.StorageDriver, StoragePostgres, StorageMemory)
	}
	if c.LockWaitTimeout <= 0 {
		return fmt.Errorf("LOCK_WAIT_TIMEOUT must be positive, got %s", c.LockWaitTimeout)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func normalizePort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
