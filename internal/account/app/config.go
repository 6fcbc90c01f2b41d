package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/mindful/internal/account/recovery"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	DatabaseFile string // Path to SQLite database file (default: ./account.db)
	PepperFile   string // Path to the hashing pepper, created on first start (default: ./pepper)

	HashAlgorithm     string // argon2id or bcrypt (default: argon2id)
	Argon2MemoryKB    int    // Optional: Argon2id memory in KiB (default: 19456)
	Argon2Iterations  int    // Optional: Argon2id passes (default: 2)
	Argon2Parallelism int    // Optional: Argon2id lanes (default: 1)
	BcryptCost        int    // Optional: bcrypt cost (default: 10)

	RecoveryStore    string        // memory or redis (default: memory)
	RecoveryTokenTTL time.Duration // Reset token lifetime (default: 10m)
	RedisURL         string        // Required when RecoveryStore is redis, e.g. redis://localhost:6379/0

	SMTPHost      string // Optional: reset tokens are only logged when empty
	SMTPPort      string // SMTP port (default: 587)
	SMTPFrom      string // Sender address (default: no-reply@mindful.local)
	SMTPUsername  string // Optional: enables PLAIN auth
	SMTPPassword  string
	NotifyTimeout time.Duration // Bound on one reset notification delivery (default: 30s)

	AllowedOrigins       []string      // CORS origins, comma separated (default: *)
	TrustedProxies       []string      // CIDRs or IPs whose X-Forwarded-For is believed (default: none)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Recovery session purge interval (default: 1m)
}

func LoadConfig() Config {
	return Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "account.db"),
		PepperFile:   getEnvOrDefault("PEPPER_FILE", "pepper"),

		HashAlgorithm:     getEnvOrDefault("HASH_ALGORITHM", "argon2id"),
		Argon2MemoryKB:    getEnvIntOrDefault("ARGON2_MEMORY_KB", 0),
		Argon2Iterations:  getEnvIntOrDefault("ARGON2_ITERATIONS", 0),
		Argon2Parallelism: getEnvIntOrDefault("ARGON2_PARALLELISM", 0),
		BcryptCost:        getEnvIntOrDefault("BCRYPT_COST", 0),

		RecoveryStore:    getEnvOrDefault("RECOVERY_STORE", "memory"),
		RecoveryTokenTTL: getEnvDurationOrDefault("RECOVERY_TOKEN_TTL", recovery.DefaultTTL),
		RedisURL:         os.Getenv("REDIS_URL"),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnvOrDefault("SMTP_PORT", "587"),
		SMTPFrom:      getEnvOrDefault("SMTP_FROM", "no-reply@mindful.local"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		NotifyTimeout: getEnvDurationOrDefault("NOTIFY_TIMEOUT", 30*time.Second),

		AllowedOrigins:       getEnvListOrDefault("ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:       getEnvListOrDefault("TRUSTED_PROXIES", nil),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
