package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Output: zapcore.AddSync(&buf)})

	logger.Infow("hidden")
	logger.Warnw("shown", "file", "a.srt")
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "a.srt") {
		t.Errorf("warn entry missing: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("unexpected color codes for non-terminal output: %q", out)
	}
}

func TestVerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "error", Verbose: true, Output: zapcore.AddSync(&buf)})

	logger.Debugw("details")
	_ = logger.Sync()

	if !strings.Contains(buf.String(), "details") {
		t.Errorf("debug entry missing with verbose: %q", buf.String())
	}
}

func TestWithRunAddsField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Output: zapcore.AddSync(&buf)}).WithRun()

	logger.Infow("start")
	_ = logger.Sync()

	if !strings.Contains(buf.String(), `"run"`) {
		t.Errorf("run field missing: %q", buf.String())
	}
}

func TestNilLoggerSugar(t *testing.T) {
	var logger *Logger
	logger.Sugar().Infow("no panic")
}
