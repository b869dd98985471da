package config

import (
	"os"
	"strconv"
	"time"

	"supperclub/internal/cache"
	"supperclub/internal/database"
	"supperclub/internal/external"
	"supperclub/internal/messaging"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Budget for finishing the post-reserve write sequence after the
	// caller's request context is gone.
	CompletionTimeout time.Duration

	Database database.Config
	NATS     messaging.Config
	Redis    cache.Config
	Passes   external.PassConfig
	Notify   external.NotifyConfig
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		RequestTimeout:    time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		CompletionTimeout: time.Duration(getEnvInt("COMPLETION_TIMEOUT_SEC", 15)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "supperclub"),
			Password:           getEnv("DB_PASSWORD", "supperclub123"),
			DBName:             getEnv("DB_NAME", "supperclub"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "supperclub"),
			ClientID:  getEnv("NATS_CLIENT_ID", "supperclub-api"),
		},

		Redis: cache.Config{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},

		Passes: external.PassConfig{
			BaseURL: getEnv("PASS_SERVICE_URL", "http://localhost:8090"),
			Timeout: time.Duration(getEnvInt("PASS_TIMEOUT_SEC", 30)) * time.Second,
		},

		Notify: external.NotifyConfig{
			BaseURL: getEnv("NOTIFY_SERVICE_URL", "http://localhost:8091"),
			Timeout: time.Duration(getEnvInt("NOTIFY_TIMEOUT_SEC", 30)) * time.Second,
		},
	}
}

// getEnv returns the environment value or the given default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment value or the given default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
