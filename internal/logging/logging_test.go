package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/eugenenazirov/servicekit/internal/config"
)

func TestBootstrap(t *testing.T) {
	logger, err := Bootstrap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatalf("expected logger instance")
	}
	_ = logger.Sync()
}

func TestNewConsoleRespectsVerbosity(t *testing.T) {
	var stderr bytes.Buffer
	logger, closeFn, err := New(Options{
		Verbosity: config.VerbosityWarn,
		Color:     config.ColorNever,
		Stderr:    zapcore.AddSync(&stderr),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	out := stderr.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected console output: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes: %q", out)
	}
}

func TestNewConsoleRange(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, closeFn, err := New(Options{
		Verbosity: config.VerbosityTrace,
		Color:     config.ColorAlways,
		Loggers:   []config.LoggerConfig{config.PresetStdout.Config(), config.PresetStderr.Config()},
		Stdout:    zapcore.AddSync(&stdout),
		Stderr:    zapcore.AddSync(&stderr),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()

	logger.Debug("debug line")
	logger.Error("error line")
	_ = logger.Sync()

	if !strings.Contains(stdout.String(), "debug line") || strings.Contains(stdout.String(), "error line") {
		t.Fatalf("unexpected stdout: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "error line") || strings.Contains(stderr.String(), "debug line") {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "\x1b[") {
		t.Fatalf("expected color codes: %q", stderr.String())
	}
}

func TestNewFileSink(t *testing.T) {
	dir := t.TempDir()
	logger, closeFn, err := New(Options{
		Loggers: []config.LoggerConfig{{
			Directory: dir,
			Name:      "app",
			Level:     config.SingleLevel(config.LogLevelInfo),
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("written")
	logger.Warn("filtered")
	_ = logger.Sync()
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"written"`) || strings.Contains(string(data), "filtered") {
		t.Fatalf("unexpected file content: %s", data)
	}
}

func TestNewRejectsEmptyLogger(t *testing.T) {
	if _, _, err := New(Options{Loggers: []config.LoggerConfig{{}}}); err == nil {
		t.Fatalf("expected error for logger without sink")
	}
}

func TestColorAutoWithoutTerminal(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "")
	t.Setenv("NO_COLOR", "")
	if ColorEnabled(config.ColorAuto, &bytes.Buffer{}) {
		t.Fatalf("expected no color for a plain buffer")
	}
}

func TestThreshold(t *testing.T) {
	tests := map[config.Verbosity]zapcore.Level{
		config.VerbosityOff:   zapcore.ErrorLevel,
		config.VerbosityError: zapcore.ErrorLevel,
		config.VerbosityWarn:  zapcore.WarnLevel,
		config.VerbosityInfo:  zapcore.InfoLevel,
		config.VerbosityTrace: zapcore.DebugLevel,
	}
	for v, want := range tests {
		if got := Threshold(v); got != want {
			t.Fatalf("Threshold(%s) = %s, want %s", v, got, want)
		}
	}
}
