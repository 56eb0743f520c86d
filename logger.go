package bezray

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/bezray/internal/pencil"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for bezray and its sub-packages.
// By default, bezray produces no log output. Call SetLogger to enable it.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by bezray:
//   - [slog.LevelDebug]: internal diagnostics (M-rep shapes, pencil
//     staircase steps, per-tile render progress)
//   - [slog.LevelInfo]: lifecycle events (scene built, frame rendered)
//   - [slog.LevelWarn]: non-fatal issues (patches skipped at render time)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	bezray.SetLogger(slog.Default())
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// Share the sink with the pencil reduction diagnostics.
	pencil.SetLogger(l)
}

// Logger returns the current logger used by bezray.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
