package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Auth     AuthConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	NotifyPort      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig points at Postgres. An empty URL runs the service on the
// in-memory store.
type DatabaseConfig struct {
	URL         string
	MaxConns    int
	MinConns    int
	MaxLifetime time.Duration
	Migrate     bool
}

// RedisConfig backs the Idempotency-Key cache. Empty URL disables it.
type RedisConfig struct {
	URL            string
	IdempotencyTTL time.Duration
}

// NATSConfig backs domain events. Empty URL selects the no-op bus.
type NATSConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	Audience       string
	// RateLimit caps register/login attempts per client IP per RateWindow.
	// Zero disables it; it also needs Redis.
	RateLimit  int
	RateWindow time.Duration
	// TrustProxy lets the limiter key on X-Forwarded-For. Only enable it
	// behind a proxy that sets the header itself.
	TrustProxy bool
}

type LogConfig struct {
	Level      string
	Format     string // json or text
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load reads a .env file when one exists, then builds the config from the
// process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			NotifyPort:      getEnv("NOTIFY_PORT", "8086"),
			ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			URL:         getEnv("DATABASE_URL", ""),
			MaxConns:    getInt("DB_MAX_CONNS", 10),
			MinConns:    getInt("DB_MIN_CONNS", 1),
			MaxLifetime: getDuration("DB_MAX_LIFETIME", time.Hour),
			Migrate:     getBool("DB_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:            getEnv("REDIS_URL", ""),
			IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "dev-only-secret-change-in-prod"),
			AccessTokenTTL: getDuration("ACCESS_TOKEN_TTL", 7*24*time.Hour),
			Audience:       getEnv("JWT_AUDIENCE", "homepro-api"),
			RateLimit:      getInt("AUTH_RATE_LIMIT", 20),
			RateWindow:     getDuration("AUTH_RATE_WINDOW", 15*time.Minute),
			TrustProxy:     getBool("TRUST_PROXY", false),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getInt("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: getInt("LOG_MAX_AGE_DAYS", 7),
			Compress:   getBool("LOG_COMPRESS", true),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
