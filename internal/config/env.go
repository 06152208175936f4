// Package config provides shared configuration utilities.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given files (default ".env") into the
// process environment. Missing files are not an error; variables already set
// in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		log.Debug("loaded environment file", "file", f)
	}
	return nil
}

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt is GetEnv for integers. Unparseable values fall back.
func GetEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn("invalid integer in environment", "key", key, "value", value)
		return fallback
	}
	return n
}

// GetEnvUint64 is GetEnv for unsigned 64-bit values such as seeds.
func GetEnvUint64(key string, fallback uint64) uint64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		log.Warn("invalid unsigned integer in environment", "key", key, "value", value)
		return fallback
	}
	return n
}

// GetEnvFloat is GetEnv for floats.
func GetEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warn("invalid float in environment", "key", key, "value", value)
		return fallback
	}
	return f
}

// GetEnvDuration is GetEnv for durations ("250ms", "2s").
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn("invalid duration in environment", "key", key, "value", value)
		return fallback
	}
	return d
}

// SetupLogging sets the default logger level from LOG_LEVEL (debug, info, warn, error).
func SetupLogging() {
	level, err := log.ParseLevel(GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)
}
