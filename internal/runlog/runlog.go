// Package runlog provides the per-run pipeline log: an append-only,
// in-memory sequence of leveled, timestamped entries with named timers.
// The entire sequence is returned to the caller alongside the generated
// article; retention and storage are the caller's responsibility.
package runlog

import (
	"time"

	"github.com/google/uuid"
)

// Level classifies a log entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelDebug   Level = "debug"
)

// Entry is one event in a pipeline run. Detail is a permissive debug
// surface, not a typed contract: values should stay within serializable
// scalars, slices and maps.
type Entry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      Level          `json:"level"`
	Stage      string         `json:"stage"`
	Message    string         `json:"message"`
	Detail     map[string]any `json:"detail,omitempty"`
	DurationMS int64          `json:"duration_ms,omitempty"`
}

// Logger accumulates entries for a single pipeline run. It is not safe
// for concurrent use across runs; every run gets its own instance.
type Logger struct {
	runID   string
	entries []Entry
}

// New creates a run logger with a fresh run ID.
func New() *Logger {
	return &Logger{runID: uuid.NewString()}
}

// RunID returns the identifier correlating all entries of this run.
func (l *Logger) RunID() string {
	return l.runID
}

// Entries returns the accumulated log sequence in append order.
func (l *Logger) Entries() []Entry {
	return l.entries
}

func (l *Logger) append(level Level, stage, msg string, detail map[string]any, durationMS int64) {
	l.entries = append(l.entries, Entry{
		Timestamp:  time.Now().UTC(),
		Level:      level,
		Stage:      stage,
		Message:    msg,
		Detail:     detail,
		DurationMS: durationMS,
	})
}

// Info records an informational entry.
func (l *Logger) Info(stage, msg string, detail map[string]any) {
	l.append(LevelInfo, stage, msg, detail, 0)
}

// Success records a completion entry.
func (l *Logger) Success(stage, msg string, detail map[string]any) {
	l.append(LevelSuccess, stage, msg, detail, 0)
}

// Warning records a non-fatal problem.
func (l *Logger) Warning(stage, msg string, detail map[string]any) {
	l.append(LevelWarning, stage, msg, detail, 0)
}

// Error records a failure. The run may still continue if the stage is
// fault-tolerant.
func (l *Logger) Error(stage, msg string, detail map[string]any) {
	l.append(LevelError, stage, msg, detail, 0)
}

// Debug records diagnostic detail.
func (l *Logger) Debug(stage, msg string, detail map[string]any) {
	l.append(LevelDebug, stage, msg, detail, 0)
}

// StartTimer starts a named timer for a stage and returns a stop function.
// The stop function appends a success entry carrying the elapsed duration
// in milliseconds and also returns it, so stages can reuse the value.
func (l *Logger) StartTimer(stage string) func(msg string, detail map[string]any) int64 {
	start := time.Now()
	return func(msg string, detail map[string]any) int64 {
		elapsed := time.Since(start).Milliseconds()
		l.append(LevelSuccess, stage, msg, detail, elapsed)
		return elapsed
	}
}
