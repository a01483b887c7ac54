package logx

import (
	"io"
	"os"
	"strings"
	"time"
)

// Format represents the output format
type Format string

const (
	// FormatConsole outputs human readable console logs (default)
	FormatConsole Format = "console"
	// FormatJSON outputs one JSON object per line
	FormatJSON Format = "json"
)

// Config holds the logger configuration
type Config struct {
	// Level is the minimum log level to output
	Level Level

	// Format is the output format
	Format Format

	// EnableColors enables colored output (only for console format)
	EnableColors bool

	// EnableCaller adds file and line number to logs
	EnableCaller bool

	// TimeFormat is the time format for console output
	TimeFormat string

	// Output is where to write logs (defaults to os.Stdout)
	Output io.Writer
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Level:        LevelInfo,
		Format:       FormatConsole,
		EnableColors: true,
		TimeFormat:   time.RFC3339,
		Output:       os.Stdout,
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	config := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = ParseLevel(level)
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		switch strings.ToLower(format) {
		case "json", "cloudwatch":
			config.Format = FormatJSON
		case "console":
			config.Format = FormatConsole
		}
	}

	if color := os.Getenv("LOG_COLOR"); color != "" {
		config.EnableColors = envBool(color)
	}

	if caller := os.Getenv("LOG_CALLER"); caller != "" {
		config.EnableCaller = envBool(caller)
	}

	if timeFormat := os.Getenv("LOG_TIME_FORMAT"); timeFormat != "" {
		switch strings.ToUpper(timeFormat) {
		case "RFC3339":
			config.TimeFormat = time.RFC3339
		case "RFC3339NANO":
			config.TimeFormat = time.RFC3339Nano
		case "KITCHEN":
			config.TimeFormat = time.Kitchen
		default:
			config.TimeFormat = timeFormat
		}
	}

	return config
}

func envBool(v string) bool {
	return strings.ToLower(v) == "true" || v == "1"
}
