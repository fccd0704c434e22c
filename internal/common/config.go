package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Engine   EngineConfig
	Export   ExportConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	SQLitePath       string
}

// EngineConfig holds extraction-engine thresholds
type EngineConfig struct {
	MinTextLength        int
	AutoApproveThreshold float64
	ReviewThreshold      float64
	VendorRegistryPath   string
}

// ExportConfig holds export-related configuration
type ExportConfig struct {
	Dir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
			SQLitePath:       getEnv("SQLITE_PATH", "./invoices.db"),
		},
		Engine: EngineConfig{
			MinTextLength:        getEnvAsInt("ENGINE_MIN_TEXT_LENGTH", 50),
			AutoApproveThreshold: getEnvAsFloat64("ENGINE_AUTO_APPROVE_THRESHOLD", 0.80),
			ReviewThreshold:      getEnvAsFloat64("ENGINE_REVIEW_THRESHOLD", 0.60),
			VendorRegistryPath:   getEnv("VENDOR_REGISTRY_PATH", ""),
		},
		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", "./exports"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Engine.AutoApproveThreshold < c.Engine.ReviewThreshold {
		return NewAppError("CONFIG_ERROR", "auto-approve threshold must be >= review threshold", ErrInvalidInput)
	}
	if c.Engine.MinTextLength < 0 {
		return NewAppError("CONFIG_ERROR", "min text length must be non-negative", ErrInvalidInput)
	}
	return nil
}
