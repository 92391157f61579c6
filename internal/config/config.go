package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath        string
	ArtifactsDir        string
	LogLevel            string
	Port                int
	DevMode             bool
	AccuracyThreshold   float64 // Max acceptable percentage error (fraction, default 0.15)
	TrainSplit          float64 // Train partition fraction (default 0.8)
	TrainSeed           int64   // Seed for the deterministic train/test shuffle
	DefaultConfidence   float64 // Used when an algorithm exposes no class probability
	ExpirySweepSchedule string  // Cron schedule for the prediction expiry sweep
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnvAsInt("GO_PORT", 8002),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		DatabasePath:        getEnv("DATABASE_PATH", "./data/predictions.db"),
		ArtifactsDir:        getEnv("ARTIFACTS_DIR", "./data/artifacts"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		AccuracyThreshold:   getEnvAsFloat("ACCURACY_THRESHOLD", 0.15),
		TrainSplit:          getEnvAsFloat("TRAIN_SPLIT", 0.8),
		TrainSeed:           int64(getEnvAsInt("TRAIN_SEED", 42)),
		DefaultConfidence:   getEnvAsFloat("DEFAULT_CONFIDENCE", 0.75),
		ExpirySweepSchedule: getEnv("EXPIRY_SWEEP_SCHEDULE", "@hourly"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.ArtifactsDir == "" {
		return fmt.Errorf("ARTIFACTS_DIR is required")
	}
	if c.AccuracyThreshold <= 0 || c.AccuracyThreshold > 1 {
		return fmt.Errorf("ACCURACY_THRESHOLD must be in (0, 1], got %v", c.AccuracyThreshold)
	}
	if c.TrainSplit <= 0 || c.TrainSplit >= 1 {
		return fmt.Errorf("TRAIN_SPLIT must be in (0, 1), got %v", c.TrainSplit)
	}
	return nil
}

// Helper functions
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
