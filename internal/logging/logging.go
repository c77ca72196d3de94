// Package logging holds the logger shared by every glstate package.
//
// The root package exposes SetLogger/Logger; sub-packages log through L so
// that a single SetLogger call reaches the whole module without import
// cycles.
package logging

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically for thread safety.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// L returns the current logger.
func L() *slog.Logger { return loggerPtr.Load() }

// Set replaces the current logger. A nil logger restores silence.
func Set(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Once logs a warning the first time key is seen and drops every later
// record for the same key. Used for capability-absent diagnostics that
// would otherwise repeat every frame.
type Once struct {
	seen sync.Map
}

// Warn logs msg at warn level unless key has already been reported.
func (o *Once) Warn(key any, msg string, args ...any) {
	if _, loaded := o.seen.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	L().Warn(msg, args...)
}

// Reset forgets every reported key.
func (o *Once) Reset() {
	o.seen.Clear()
}
