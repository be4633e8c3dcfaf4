package server

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"pgregory.net/rapid"
)

var configEnvKeys = []string{
	"TTX_PORT", "TTX_LOG_LEVEL", "TTX_BOOK_TTL", "TTX_MAX_UPLOAD_BYTES", "TTX_WORKERS",
	"TTX_READ_TIMEOUT", "TTX_WRITE_TIMEOUT", "TTX_IDLE_TIMEOUT", "TTX_SHUTDOWN_TIMEOUT",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Config{
		Port:            8080,
		LogLevel:        "info",
		BookTTL:         time.Hour,
		MaxUploadBytes:  32 << 20,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"TTX_PORT", "http"},
		{"TTX_PORT", "70000"},
		{"TTX_LOG_LEVEL", "verbose"},
		{"TTX_BOOK_TTL", "1h30"},
		{"TTX_BOOK_TTL", "-1m"},
		{"TTX_MAX_UPLOAD_BYTES", "0"},
		{"TTX_MAX_UPLOAD_BYTES", "-1"},
		{"TTX_WORKERS", "many"},
		{"TTX_SHUTDOWN_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q expected an error", tt.key, tt.value)
			}
		})
	}
}

func TestProperty_ValidConfigParsing(t *testing.T) {
	clearEnv(t)
	rapid.Check(t, func(rt *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(rt, "port")
		level := rapid.SampledFrom([]string{"debug", "info", "warn", "error"}).Draw(rt, "level")
		ttl := rapid.IntRange(1, 600).Draw(rt, "ttl")

		t.Setenv("TTX_PORT", fmt.Sprint(port))
		t.Setenv("TTX_LOG_LEVEL", level)
		t.Setenv("TTX_BOOK_TTL", fmt.Sprintf("%ds", ttl))

		cfg, err := Load()
		if err != nil {
			rt.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != port || cfg.LogLevel != level || cfg.BookTTL != time.Duration(ttl)*time.Second {
			rt.Fatalf("Load() = %+v", cfg)
		}
	})
}

func TestParseLevel(t *testing.T) {
	got, err := ParseLevel("warn")
	if err != nil || got != slog.LevelWarn {
		t.Errorf("ParseLevel(warn) = %v, %v", got, err)
	}
}
