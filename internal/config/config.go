// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults for the analysis parameters.
const (
	DefaultMinPeriods  = 5
	DefaultSampleCount = 500
)

// DefaultRollingWindows are the fixed rolling window sizes rendered as line
// charts, in trading days (one month, one quarter, one year).
var DefaultRollingWindows = []int{21, 63, 252}

// Config holds application configuration
type Config struct {
	SeriesACSV     string // Path to the first price CSV (e.g. SPY)
	SeriesBCSV     string // Path to the second price CSV (e.g. XLF)
	LabelA         string
	LabelB         string
	MinPeriods     int   // Minimum observations for a windowed correlation
	SampleCount    int   // Window-size samples for the full correlation matrix
	RollingWindows []int // Fixed rolling window sizes, in observations
	OutputDir      string
	LogLevel       string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	outputDir := getEnv("CORR_OUTPUT_DIR", "./output")
	absOutputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory path: %w", err)
	}
	if err := os.MkdirAll(absOutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	cfg := &Config{
		SeriesACSV:     getEnv("CORR_SERIES_A_CSV", ""),
		SeriesBCSV:     getEnv("CORR_SERIES_B_CSV", ""),
		LabelA:         getEnv("CORR_LABEL_A", "SPY"),
		LabelB:         getEnv("CORR_LABEL_B", "XLF"),
		MinPeriods:     getEnvAsInt("CORR_MIN_PERIODS", DefaultMinPeriods),
		SampleCount:    getEnvAsInt("CORR_SAMPLE_COUNT", DefaultSampleCount),
		RollingWindows: getEnvAsIntList("CORR_ROLLING_WINDOWS", DefaultRollingWindows),
		OutputDir:      absOutputDir,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.SeriesACSV == "" || c.SeriesBCSV == "" {
		return fmt.Errorf("both CORR_SERIES_A_CSV and CORR_SERIES_B_CSV must be set")
	}
	if c.MinPeriods < 2 {
		return fmt.Errorf("CORR_MIN_PERIODS must be at least 2, got %d", c.MinPeriods)
	}
	if c.SampleCount < 1 {
		return fmt.Errorf("CORR_SAMPLE_COUNT must be positive, got %d", c.SampleCount)
	}
	if len(c.RollingWindows) == 0 {
		return fmt.Errorf("CORR_ROLLING_WINDOWS must name at least one window size")
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

// getEnvAsIntList parses a comma-separated list of integers, e.g. "21,63,252".
func getEnvAsIntList(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []int
	for _, part := range strings.Split(value, ",") {
		intVal, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return defaultValue
		}
		out = append(out, intVal)
	}
	return out
}
