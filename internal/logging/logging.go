// Package logging builds the zap logger shared by the CLI and engine.
package logging

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a sugared zap logger so callers can use the key/value
// helpers (Infow, Warnw, ...) directly.
type Logger struct {
	*zap.SugaredLogger
}

type Options struct {
	Level   string // debug, info, warn, error
	Verbose bool   // forces debug
	Output  zapcore.WriteSyncer
	Color   *bool // nil: colored when Output is a terminal
}

func New(opts Options) *Logger {
	level := parseLevel(opts.Level)
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	out := opts.Output
	color := false
	if out == nil {
		out = zapcore.Lock(os.Stderr)
		color = isTerminal(os.Stderr.Fd())
	} else if f, ok := out.(interface{ Fd() uintptr }); ok {
		color = isTerminal(f.Fd())
	}
	if opts.Color != nil {
		color = *opts.Color
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	if color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), out, level)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}

// WithRun tags every entry with a fresh run id so interleaved invocations
// can be told apart in shared logs.
func (l *Logger) WithRun() *Logger {
	return &Logger{SugaredLogger: l.With("run", uuid.NewString()[:8])}
}

// Sugar returns the underlying logger, or a no-op one for a nil receiver.
func (l *Logger) Sugar() *zap.SugaredLogger {
	if l == nil || l.SugaredLogger == nil {
		return zap.NewNop().Sugar()
	}
	return l.SugaredLogger
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
