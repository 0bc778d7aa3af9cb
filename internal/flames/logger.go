package flames

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler drops every record. It is the default so the library stays silent
// until SetLogger is called.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs l as the package logger. A nil l restores the silent default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

func DebugLog(format string, args ...any) {
	if !Debug {
		return
	}
	Logger().Debug(fmt.Sprintf(format, args...))
}

var loggedOnce sync.Map

// DebugLogOnce logs only the first message for each format string.
func DebugLogOnce(format string, args ...any) {
	if !Debug {
		return
	}
	if _, dup := loggedOnce.LoadOrStore(format, struct{}{}); dup {
		return
	}
	Logger().Debug(fmt.Sprintf(format, args...))
}
