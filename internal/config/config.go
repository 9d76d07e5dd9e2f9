// Package config loads process configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all process configuration.
type Config struct {
	ServerPort  string
	MetricsPort string
	LogLevel    string

	// Ledger endpoints
	RPCEndpoint string
	WSEndpoint  string
	ProgramID   string

	// Cache: Redis when set, in-memory otherwise
	RedisURL     string
	ListTTL      time.Duration
	SingletonTTL time.Duration

	// Off-chain index (optional)
	PostgresDSN string

	// Stats history (optional)
	ClickhouseDSN string
	StatsInterval time.Duration
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file, using system environment variables")
	}

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		RPCEndpoint:   getEnv("RPC_ENDPOINT", "https://api.devnet.solana.com"),
		WSEndpoint:    getEnv("WS_ENDPOINT", "wss://api.devnet.solana.com"),
		ProgramID:     getEnv("PROGRAM_ID", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		ListTTL:       getDuration("CACHE_LIST_TTL_SECONDS", 15*time.Second),
		SingletonTTL:  getDuration("CACHE_SINGLETON_TTL_SECONDS", 10*time.Minute),
		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		ClickhouseDSN: getEnv("CLICKHOUSE_DSN", ""),
		StatsInterval: getDuration("STATS_INTERVAL_SECONDS", 15*time.Minute),
	}
}

// ParseLogLevel converts the configured level, defaulting to info.
func (c *Config) ParseLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("invalid LOG_LEVEL %q, using info", c.LogLevel)
		return logrus.InfoLevel
	}
	return level
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		logrus.Warnf("invalid %s value %q, using default", key, value)
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
