// Package config provides configuration helpers for go-eyes commands.
package config

import (
	"os"
	"strconv"
)

// Default configuration.
const (
	DefaultLogLevel  = "info"
	DefaultPort      = "8090"
	DefaultOutputDir = "./output"
	DefaultFormat    = "png"
)

// Env returns the value of key, or def if it is unset or empty.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt returns key parsed as an int.
// Falls back to def if unset or malformed.
func EnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// LogLevel returns the log level from EYES_LOG_LEVEL.
func LogLevel() string {
	return Env("EYES_LOG_LEVEL", DefaultLogLevel)
}

// Port returns the web server port from EYES_PORT.
func Port() string {
	return Env("EYES_PORT", DefaultPort)
}

// OutputDir returns the directory processed images are written to.
func OutputDir() string {
	return Env("EYES_OUTPUT_DIR", DefaultOutputDir)
}

// Format returns the output image format ("png" or "jpg") from EYES_FORMAT.
func Format() string {
	return Env("EYES_FORMAT", DefaultFormat)
}

// JPEGQuality returns the JPEG quality used when encoding previews.
func JPEGQuality() int {
	q := EnvInt("EYES_JPEG_QUALITY", 85)
	if q < 1 || q > 100 {
		return 85
	}
	return q
}
