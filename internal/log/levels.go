// Package log provides structured logging with verbosity levels for yoshidev.
// It wraps log/slog and maps the -v=N flag onto slog levels.
package log

import "log/slog"

// LevelTrace sits below slog.LevelDebug for per-line scan output.
const LevelTrace = slog.Level(-8)

// Verbosity level constants for -v=N.
const (
	VerbosityError = 0 // Errors only (quiet)
	VerbosityWarn  = 1 // + Warnings
	VerbosityInfo  = 2 // + Info (config loaded, files rewritten)
	VerbosityDebug = 3 // + Debug (offsets, lock waits, datagram sizes)
	VerbosityTrace = 4 // + Trace (every scanned line)
)

// VerbosityToLevel maps -v=N to a slog level.
func VerbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError
	case v == 1:
		return slog.LevelWarn
	case v == 2:
		return slog.LevelInfo
	case v == 3:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// LevelName returns the display name for a level, including TRACE.
func LevelName(l slog.Level) string {
	if l == LevelTrace {
		return "TRACE"
	}
	return l.String()
}
