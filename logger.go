package glstate

import (
	"log/slog"

	"github.com/gogpu/glstate/internal/logging"
)

// SetLogger configures the logger for glstate and all its sub-packages.
// By default, glstate produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by glstate:
//   - [slog.LevelDebug]: per-frame diagnostics (FBO rebinds, chosen render target)
//   - [slog.LevelInfo]: lifecycle events (context registered, capabilities queried)
//   - [slog.LevelWarn]: degraded paths (missing extension, clamped samples,
//     incomplete framebuffer, state stack underflow)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	glstate.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	glstate.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by glstate.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.L()
}
