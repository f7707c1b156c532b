package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	BaseURL         string        // public origin, ex: https://pin.domain.ext
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DatabasePath string // path to the sqlite database file

	// Sessions & sign-in
	JWTSecret          string        // HMAC key for session cookies
	SessionTTL         time.Duration // session cookie lifetime (default: 24h)
	GoogleClientID     string        // OAuth client id
	GoogleClientSecret string        // OAuth client secret
	AllowedEmails      []string      // optional allowlist; empty = any Google account
	SecureCookies      bool          // true in production (cookies require https)

	// Janitor
	JanitorInterval time.Duration // interval between purge runs (default: 24h)
	PurgeThreshold  time.Duration // age a soft-deleted row must reach before purge (default: 30d)

	// Redis (realtime change-event transport)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisWarnThreshold  int           // warn after this many attempts
}

func Load() *Config {
	// .env is for local development; absent in production.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("PINSYNC_LISTEN_PORT", ":8080"),
		BaseURL:         getenv("PINSYNC_BASE_URL", "http://localhost:8080"),
		ShutdownTimeout: mustDuration("PINSYNC_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("PINSYNC_LOG_LEVEL", "info"),
		PrettyLog: mustBool("PINSYNC_PRETTY_LOG", true),

		// Storage
		DatabasePath: getenv("PINSYNC_DB_PATH", "pinsync.sqlite"),

		// Sessions & sign-in
		JWTSecret:          requireEnv("PINSYNC_JWT_SECRET"),
		SessionTTL:         mustDuration("PINSYNC_SESSION_TTL", 24*time.Hour),
		GoogleClientID:     requireEnv("PINSYNC_GOOGLE_CLIENT_ID"),
		GoogleClientSecret: requireEnv("PINSYNC_GOOGLE_CLIENT_SECRET"),
		AllowedEmails:      splitAndTrim(getenv("PINSYNC_ALLOWED_EMAILS", "")),
		SecureCookies:      mustBool("PINSYNC_SECURE_COOKIES", false),

		// Janitor
		JanitorInterval: mustDuration("PINSYNC_JANITOR_INTERVAL", 24*time.Hour),
		PurgeThreshold:  mustDuration("PINSYNC_PURGE_THRESHOLD", 30*24*time.Hour),

		// Redis settings
		RedisAddr:           requireEnv("PINSYNC_REDIS_ADDR"),
		RedisUser:           getenv("PINSYNC_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("PINSYNC_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("PINSYNC_REDIS_DB", 0),
		RedisDT:             mustDuration("PINSYNC_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("PINSYNC_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("PINSYNC_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("PINSYNC_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("PINSYNC_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("PINSYNC_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("PINSYNC_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("PINSYNC_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  getenvInt("PINSYNC_REDIS_WARN_THRESHOLD", 3),
	}

	if len(cfg.JWTSecret) < 32 {
		panic("❌ FATAL: PINSYNC_JWT_SECRET must be at least 32 bytes")
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
