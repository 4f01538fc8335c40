package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerDiscards(t *testing.T) {
	// Must not panic before Init.
	Info("before init")
	Sugar.Debugf("before init %d", 1)
}

func TestSetRestores(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := Set(zap.New(core))

	Warn("torus clamp", zap.Float32("minor", 0.4))
	Info("ignored below level")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	if logs.All()[0].Message != "torus clamp" {
		t.Errorf("unexpected message %q", logs.All()[0].Message)
	}

	restore()
	Warn("after restore")
	if logs.Len() != 1 {
		t.Errorf("restored logger still writes to observer")
	}
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "gpulab.log")

	prev := Log
	defer Set(prev)

	if err := InitWithFileConfig("debug", DefaultFileConfig(logFile), false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	Debug("frame stats", zap.Float64("fps", 60))
	Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"frame stats"`) {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"bogus": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
