package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		result := tt.level.String()
		if result != tt.expected {
			t.Errorf("LogLevel(%d).String() = '%s', expected '%s'", tt.level, result, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"WARNING", LogLevelWarn},
		{"error", LogLevelError},
		{"unknown", LogLevelInfo}, // Default
		{"", LogLevelInfo},        // Default
	}

	for _, tt := range tests {
		result := ParseLogLevel(tt.input)
		if result != tt.expected {
			t.Errorf("ParseLogLevel('%s') = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf})

	logger.Info("hidden")
	logger.WithComponent("store").Warn("shown", "document", "d1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	for _, want := range []string{"shown", "component=store", "document=d1", "service=wordsmith"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Format: LogFormatJSON, Output: &buf})

	logger.Info("session opened", "session", "s1")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "session opened" || line["session"] != "s1" {
		t.Errorf("unexpected record %v", line)
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelError, Output: &buf})

	logger.Debug("before")
	logger.SetLevel(LogLevelDebug)
	logger.Debug("after")

	if logger.Level() != slog.LevelDebug {
		t.Errorf("expected debug level, got %s", logger.Level())
	}
	if strings.Contains(buf.String(), "before") || !strings.Contains(buf.String(), "after") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestOperationError(t *testing.T) {
	err := NewOperationError("save", "doc-1", ErrClosed).WithContext("on close")
	if err.Error() != "save doc-1 (on close): application closed" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.Unwrap() != ErrClosed {
		t.Error("expected Unwrap to return the cause")
	}

	var nilErr *OperationError
	if nilErr.WithContext("x") != nil || nilErr.Error() != "" {
		t.Error("nil receiver should be safe")
	}
}
