package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Storage
	Backend      string // "sqlite" or "memory"
	SQLiteDBPath string

	// Defaults applied when input carries no currency
	DefaultCurrency string

	// Summary cache
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration

	// Frequency analyzer
	FrequentLimit int
}

func Load() *Config {
	return &Config{
		Backend:      getEnv("SATANG_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SATANG_DB_PATH", "./data/satang.db"),

		DefaultCurrency: getEnv("SATANG_CURRENCY", "THB"),

		SummaryCacheSize: getEnvInt("SATANG_SUMMARY_CACHE_SIZE", 64),
		SummaryCacheTTL:  getEnvDuration("SATANG_SUMMARY_CACHE_TTL", 5*time.Minute),

		FrequentLimit: getEnvInt("SATANG_FREQUENT_LIMIT", 10),
	}
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errors []string

	switch c.Backend {
	case "sqlite", "memory":
	default:
		errors = append(errors, fmt.Sprintf("invalid backend '%s': must be one of [sqlite memory]", c.Backend))
	}

	if c.Backend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if len(c.DefaultCurrency) != 3 {
		errors = append(errors, fmt.Sprintf("invalid currency '%s': must be a 3-letter code", c.DefaultCurrency))
	}

	if c.SummaryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid summary cache size %d: must be at least 1", c.SummaryCacheSize))
	}
	if c.SummaryCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid summary cache TTL %v: must be at least 1 second", c.SummaryCacheTTL))
	}

	if c.FrequentLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid frequent limit %d: must be at least 1", c.FrequentLimit))
	} else if c.FrequentLimit > 100 {
		errors = append(errors, fmt.Sprintf("invalid frequent limit %d: must be at most 100", c.FrequentLimit))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
