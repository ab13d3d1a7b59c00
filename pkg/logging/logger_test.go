package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}

	if cfg.Pretty != false {
		t.Error("Expected default pretty to be false")
	}
}

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		logMsg   string
		contains string
	}{
		{
			name:     "debug_cache_decision",
			level:    LevelDebug,
			logMsg:   "Origin unreachable, consulting cache",
			contains: "Origin unreachable, consulting cache",
		},
		{
			name:     "info_bucket_activation",
			level:    LevelInfo,
			logMsg:   "Activated cache bucket",
			contains: "Activated cache bucket",
		},
		{
			name:     "warn_quota_threshold",
			level:    LevelWarn,
			logMsg:   "Cache storage quota warning threshold passed",
			contains: "Cache storage quota warning threshold passed",
		},
		{
			name:     "error_redis_unavailable",
			level:    LevelError,
			logMsg:   "Failed to connect to Redis",
			contains: "Failed to connect to Redis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := Setup(Config{
				Level:  tt.level,
				Pretty: false,
				Output: buf,
			})

			switch tt.level {
			case LevelDebug:
				logger.Debug().Msg(tt.logMsg)
			case LevelInfo:
				logger.Info().Msg(tt.logMsg)
			case LevelWarn:
				logger.Warn().Msg(tt.logMsg)
			case LevelError:
				logger.Error().Msg(tt.logMsg)
			}

			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got %q", tt.contains, output)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel}, // Should default to Info
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewLogger_ComponentField(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: buf,
	})

	// Each package tags its logger with a component field; the gateway,
	// cache, quota, and push managers all follow this pattern.
	for _, component := range []string{"gateway", "quota", "push-manager"} {
		buf.Reset()

		logger := NewLogger(component)
		logger.Info().Msg("component logger check")

		output := buf.String()
		if !strings.Contains(output, `"component":"`+component+`"`) {
			t.Errorf("Expected output to contain component %q, got %q", component, output)
		}
	}
}

func TestNewLogger_StructuredFields(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelDebug,
		Pretty: false,
		Output: buf,
	})

	// Cache events carry the bucket version and request URL as fields
	logger := NewLogger("gateway")
	logger.Debug().Str("bucket", "v2").Str("url", "/negocios?categoria=cafe").Msg("Cached response")

	output := buf.String()
	if !strings.Contains(output, `"bucket":"v2"`) {
		t.Errorf("Expected output to contain bucket field, got %q", output)
	}
	if !strings.Contains(output, "/negocios?categoria=cafe") {
		t.Errorf("Expected output to contain url field, got %q", output)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelWarn,
		Pretty: false,
		Output: buf,
	})

	logger := NewLogger("gateway")

	// These should NOT appear (below warn level)
	logger.Debug().Msg("Prefetched asset")
	logger.Info().Msg("Install complete")

	// These SHOULD appear (warn level and above)
	logger.Warn().Msg("Failed to cache response")
	logger.Error().Msg("Install failed")

	output := buf.String()

	if strings.Contains(output, "Prefetched asset") {
		t.Error("Debug message should be filtered out at Warn level")
	}
	if strings.Contains(output, "Install complete") {
		t.Error("Info message should be filtered out at Warn level")
	}
	if !strings.Contains(output, "Failed to cache response") {
		t.Error("Warn message should be included at Warn level")
	}
	if !strings.Contains(output, "Install failed") {
		t.Error("Error message should be included at Warn level")
	}
}
