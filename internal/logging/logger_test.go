package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{name: "default config", config: nil},
		{
			name: "debug config",
			config: &Config{
				Level:  LevelDebug,
				Output: &bytes.Buffer{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.config)
			if logger == nil {
				t.Error("NewLogger() returned nil")
			}
		})
	}
}

func TestFromVerbosity(t *testing.T) {
	if FromVerbosity(0).level != LevelWarn {
		t.Errorf("verbosity 0 should give LevelWarn, got %v", FromVerbosity(0).level)
	}
	if FromVerbosity(1).level != LevelInfo {
		t.Errorf("verbosity 1 should give LevelInfo, got %v", FromVerbosity(1).level)
	}
	if FromVerbosity(2).level != LevelDebug {
		t.Errorf("verbosity 2 should give LevelDebug, got %v", FromVerbosity(2).level)
	}
	if FromVerbosity(5).level != LevelDebug {
		t.Errorf("verbosity >2 should still give LevelDebug, got %v", FromVerbosity(5).level)
	}
}

func TestLoggerWithKernel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	kernelLogger := logger.WithKernel("inc")
	kernelLogger.Info("launched")

	output := buf.String()
	if !strings.Contains(output, "kernel=inc") {
		t.Errorf("Expected kernel=inc in output, got: %s", output)
	}

	buf.Reset()
	stepLogger := kernelLogger.WithStep(3)
	stepLogger.Info("done")

	output = buf.String()
	if !strings.Contains(output, "kernel=inc") || !strings.Contains(output, "step=3") {
		t.Errorf("Expected both kernel=inc and step=3 in output, got: %s", output)
	}
}

func TestLoggerArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	logger.Debug("processing row", "row", 7, "column", "X")

	output := buf.String()
	if !strings.Contains(output, "row=7") || !strings.Contains(output, "column=X") {
		t.Errorf("Expected row=7 and column=X in output, got: %s", output)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	logger.Info("should not appear")
	if buf.Len() != 0 {
		t.Errorf("Expected no output below configured level, got: %s", buf.String())
	}

	logger.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("Expected warn message to appear, got: %s", buf.String())
	}
}

func TestGlobalLoggerFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(&Config{Level: LevelDebug, Output: &buf}))

	Debug("debug message", "key", "value")
	output := buf.String()
	if !strings.Contains(output, "debug message") {
		t.Errorf("Expected debug message, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Expected key=value, got: %s", output)
	}

	buf.Reset()
	Info("info message")
	output = buf.String()
	if !strings.Contains(output, "info message") {
		t.Errorf("Expected info message, got: %s", output)
	}

	buf.Reset()
	Warn("warning message")
	output = buf.String()
	if !strings.Contains(output, "warning message") {
		t.Errorf("Expected warning message, got: %s", output)
	}

	buf.Reset()
	Error("error message")
	output = buf.String()
	if !strings.Contains(output, "error message") {
		t.Errorf("Expected error message, got: %s", output)
	}
}
