// Package cli provides the shared bootstrap used by command binaries:
// env file loading, logger setup, config validation, and store selection.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"satang/internal/config"
	"satang/internal/log"
	"satang/internal/storage"
)

// SetupLogger initializes structured logging and installs it as the
// process default.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. Missing files are fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration, exiting the process when it
// does not validate.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore builds the configured storage backend, exiting on failure.
func OpenStore(logger *log.Logger, cfg *config.Config) storage.Store {
	switch cfg.Backend {
	case "memory":
		logger.Info("Initialized memory backend")
		return storage.NewMemoryStore()
	default:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store",
				log.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
		return store
	}
}
