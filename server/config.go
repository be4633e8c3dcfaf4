package server

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds the runtime configuration of the HTTP server.
type Config struct {
	Port            int
	LogLevel        string
	BookTTL         time.Duration // how long an uploaded book is kept after its last use
	MaxUploadBytes  int64
	Workers         int // 0 means one per CPU
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads the configuration from TTX_* environment variables, applies
// defaults, and validates values.
func Load() (*Config, error) {
	port, err := getInt("TTX_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid TTX_PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid TTX_PORT: %d out of range", port)
	}

	logLevel := getStr("TTX_LOG_LEVEL", "info")
	if _, err := ParseLevel(logLevel); err != nil {
		return nil, fmt.Errorf("invalid TTX_LOG_LEVEL: %w", err)
	}

	bookTTL, err := getDuration("TTX_BOOK_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid TTX_BOOK_TTL: %w", err)
	}
	if bookTTL <= 0 {
		return nil, fmt.Errorf("invalid TTX_BOOK_TTL: must be positive")
	}

	maxUpload, err := getInt("TTX_MAX_UPLOAD_BYTES", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid TTX_MAX_UPLOAD_BYTES: %w", err)
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("invalid TTX_MAX_UPLOAD_BYTES: must be positive")
	}

	workers, err := getInt("TTX_WORKERS", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid TTX_WORKERS: %w", err)
	}

	readTimeout, err := getDuration("TTX_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid TTX_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("TTX_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid TTX_WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("TTX_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid TTX_IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("TTX_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid TTX_SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:            port,
		LogLevel:        logLevel,
		BookTTL:         bookTTL,
		MaxUploadBytes:  int64(maxUpload),
		Workers:         workers,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

// ParseLevel returns the slog level of a log level name.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%q, must be one of: debug, info, warn, error", s)
}

// NewLogger returns a JSON logger writing to stdout at the configured level.
func (c *Config) NewLogger() *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}
