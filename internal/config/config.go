// Package config loads the service settings from the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/joho/godotenv"
)

// Supported store URI prefixes
const (
	SchemeBadger   = "badger:"
	SchemeSQLite   = "sqlite:"
	SchemeMongo    = "mongodb://"
	SchemeMongoSRV = "mongodb+srv://"
)

type Config struct {
	// HTTP server
	Port            string
	ShutdownTimeout time.Duration

	// Store
	StoreURI       string
	MongoDatabase  string
	ConnectTimeout time.Duration

	// Summary cache lifetime, zero disables caching
	SummaryCacheTTL time.Duration

	LogLevel string
}

// Load reads the configuration from the environment, after merging any
// variables found in a .env file in the working directory
func Load() *Config {
	_ = godotenv.Load()

	storeURI := getEnv("STORE_URI", "")
	if storeURI == "" {
		storeURI = getEnv("MONGODB_URI", "")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		StoreURI:       storeURI,
		MongoDatabase:  getEnv("MONGO_DATABASE", "finance"),
		ConnectTimeout: getEnvDuration("CONNECT_TIMEOUT", 10*time.Second),

		SummaryCacheTTL: getEnvDuration("SUMMARY_CACHE_TTL", time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}
}

// Validate checks the configuration. Problems are reported as
// *entity.ConfigurationError values joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, &entity.ConfigurationError{Key: "PORT", Reason: fmt.Sprintf("invalid port '%s': must be a number", c.Port)})
	} else if port < 1 || port > 65535 {
		errs = append(errs, &entity.ConfigurationError{Key: "PORT", Reason: fmt.Sprintf("invalid port %d: must be between 1 and 65535", port)})
	}

	if err := ValidateStoreURI(c.StoreURI); err != nil {
		errs = append(errs, err)
	}

	if strings.HasPrefix(c.StoreURI, SchemeMongo) || strings.HasPrefix(c.StoreURI, SchemeMongoSRV) {
		if c.MongoDatabase == "" {
			errs = append(errs, &entity.ConfigurationError{Key: "MONGO_DATABASE", Reason: "must not be empty for a mongodb store"})
		}
	}

	if c.ConnectTimeout <= 0 {
		errs = append(errs, &entity.ConfigurationError{Key: "CONNECT_TIMEOUT", Reason: "must be positive"})
	}

	if c.SummaryCacheTTL < 0 {
		errs = append(errs, &entity.ConfigurationError{Key: "SUMMARY_CACHE_TTL", Reason: "must not be negative"})
	}

	return errors.Join(errs...)
}

// ValidateStoreURI checks that uri is present and uses a supported scheme
func ValidateStoreURI(uri string) error {
	switch {
	case uri == "":
		return &entity.ConfigurationError{Key: "STORE_URI", Reason: "connection string is required (STORE_URI or MONGODB_URI)"}
	case strings.HasPrefix(uri, SchemeBadger):
		if strings.TrimPrefix(uri, SchemeBadger) == "" {
			return &entity.ConfigurationError{Key: "STORE_URI", Reason: "badger store needs a directory, e.g. badger:./data"}
		}
	case strings.HasPrefix(uri, SchemeSQLite):
		if strings.TrimPrefix(uri, SchemeSQLite) == "" {
			return &entity.ConfigurationError{Key: "STORE_URI", Reason: "sqlite store needs a file path, e.g. sqlite:./data/finance.db"}
		}
	case strings.HasPrefix(uri, SchemeMongo), strings.HasPrefix(uri, SchemeMongoSRV):
	default:
		return &entity.ConfigurationError{Key: "STORE_URI", Reason: "unsupported scheme, expected badger:, sqlite:, mongodb:// or mongodb+srv://"}
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
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
