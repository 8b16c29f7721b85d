// Package tracelog is a minimal io.Writer-wrapping logger, mirroring the
// teacher's log/logger.go, used for both ambient diagnostics and the
// solver's step-by-step trace facility (SPEC_FULL §3).
package tracelog

import (
	"fmt"
	"io"
)

// Logger wraps an io.Writer with a couple of line-oriented helpers.
type Logger struct {
	io.Writer
}

// New returns a Logger that writes to w.
func New(w io.Writer) *Logger {
	return &Logger{Writer: w}
}

// Logln logs a line.
func (l *Logger) Logln(args ...interface{}) {
	fmt.Fprintln(l, args...)
}

// Logf logs a formatted string, no trailing newline added.
func (l *Logger) Logf(format string, args ...interface{}) {
	fmt.Fprintf(l, format, args...)
}

// Tracef logs a formatted line prefixed with "opkg: ", for solver/transact
// trace output (spec.md §9 Design Note on making state transitions
// observable).
func (l *Logger) Tracef(format string, args ...interface{}) {
	fmt.Fprintf(l, "opkg: "+format+"\n", args...)
}
