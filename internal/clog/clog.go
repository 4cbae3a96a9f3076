// Package clog is this compiler's structured logger: one zap.Logger
// configured for human-readable console output in a terminal and JSON
// lines when piped, carrying the fields a build log needs to be
// greppable (source position, compile phase, duration) without forcing
// every caller to repeat them.
package clog

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Phase names one stage of the compile pipeline, attached to every log
// line emitted while that stage runs.
type Phase string

const (
	PhaseLex      Phase = "lex"
	PhaseParse    Phase = "parse"
	PhaseAnalyse  Phase = "analyse"
	PhaseCodegen  Phase = "codegen"
	PhaseFinalise Phase = "finalise"
	PhaseEmit     Phase = "emit"
)

// Logger wraps a zap.SugaredLogger with this compiler's conventions: a
// stable run_id across one invocation, and helpers that attach source
// position and phase fields consistently.
type Logger struct {
	sugar *zap.SugaredLogger
	runID string
}

// New builds a Logger writing to w. Terminal output (per go-isatty) uses
// zap's human-readable console encoder; redirected output uses JSON lines
// so CI log collectors can parse each entry, matching the same
// terminal-detection split internal/diagnostics uses for colourised
// diagnostic output.
func New(w *os.File, runID string) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zapcore.DebugLevel)
	base := zap.New(core).With(zap.String("run_id", runID))
	return &Logger{sugar: base.Sugar(), runID: runID}
}

// RunID is the identifier attached to every line this Logger emits,
// shared with internal/batch's per-unit run id when a Logger is built for
// one unit of a batch compile.
func (l *Logger) RunID() string { return l.runID }

// Position is a source location a log line can be anchored to.
type Position struct {
	File string
	Line int
	Col  int
}

// Phase returns a child logger with phase and, when non-zero, source
// position fields attached — used at the start of each pipeline stage so
// every line it emits carries those fields without repeating them.
func (l *Logger) Phase(phase Phase, pos Position) *Logger {
	fields := []any{"phase", phase}
	if pos.File != "" {
		fields = append(fields, "file", pos.File, "line", pos.Line, "col", pos.Col)
	}
	return &Logger{sugar: l.sugar.With(fields...), runID: l.runID}
}

// Duration logs a phase's elapsed time at Info level, the line a build
// summary greps for to report per-stage timing.
func (l *Logger) Duration(phase Phase, d time.Duration) {
	l.sugar.Infow("phase complete", "phase", phase, "duration_ms", d.Milliseconds())
}

func (l *Logger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, kv...) }

// Sync flushes buffered log entries; callers defer this at the end of a
// compile invocation.
func (l *Logger) Sync() error { return l.sugar.Sync() }
