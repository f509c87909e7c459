// Package cli provides common process initialization for cmd/fintrack.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// SetupLogger initializes structured logging and installs it as the
// process default.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.DefaultConfig()).WithComponent(component)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. A missing file
// is not an error; production uses real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment, exiting
// the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitStorage opens the SQLite key-value store and runs migrations,
// exiting the process on failure.
func InitStorage(logger *log.Logger, dbPath string) *storage.SQLiteKV {
	kv, err := storage.NewSQLiteKV(dbPath)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return kv
}
