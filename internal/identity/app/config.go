package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer        string // Required: issuer claim for tokens
	SigningSecret string // Required: HS256 signing key, 32 bytes minimum

	AccessTTL        time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL       time.Duration // Optional: refresh token lifetime (default: 24h)
	LockoutThreshold int           // Optional: failed logins before lockout (default: 5)
	StalenessWindow  time.Duration // Optional: max age of last login before the account reads stale (default: 45 days)
	ValidationTTL    time.Duration // Optional: email validation token lifetime (default: 24h)
	ResetTTL         time.Duration // Optional: password reset token lifetime (default: 1h)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./identity.db)
	PepperFile           string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	AuditBuffer          int           // Audit event channel size (default: 256)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:        getEnvOrDefault("IDENTITY_ISSUER", "identity"),
		SigningSecret: os.Getenv("IDENTITY_SIGNING_SECRET"),

		AccessTTL:        getEnvDurationOrDefault("IDENTITY_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:       getEnvDurationOrDefault("IDENTITY_REFRESH_TTL", 24*time.Hour),
		LockoutThreshold: getEnvIntOrDefault("IDENTITY_LOCKOUT_THRESHOLD", 5),
		StalenessWindow:  getEnvDurationOrDefault("IDENTITY_STALENESS_WINDOW", 45*24*time.Hour),
		ValidationTTL:    getEnvDurationOrDefault("IDENTITY_VALIDATION_TTL", 24*time.Hour),
		ResetTTL:         getEnvDurationOrDefault("IDENTITY_RESET_TTL", time.Hour),

		DatabaseFile:         getEnvOrDefault("IDENTITY_DATABASE_FILE", "identity.db"),
		PepperFile:           getEnvOrDefault("IDENTITY_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		AuditBuffer:          getEnvIntOrDefault("IDENTITY_AUDIT_BUFFER", 256),
	}

	return cfg
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

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
