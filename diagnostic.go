package alog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Internal diagnostics never go through the logger's own pipeline: a failing
// file cannot be used to report that it is failing. They are written with a
// small zerolog console logger, stderr unless SetDiagnosticOutput says otherwise.

func newDiagnosticLogger(w io.Writer) *zerolog.Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.DateTime,
	}).With().Timestamp().Str("component", "alog").Logger()
	return &zl
}

// SetDiagnosticOutput redirects internal diagnostics. A nil writer restores stderr.
func (l *Logger) SetDiagnosticOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	l.diagnostics.Store(newDiagnosticLogger(w))
}

// internalLog returns an event for an internal diagnostic at the given
// level, or nil when internal_errors_to_stderr is off. zerolog treats a nil
// event as a no-op, so callers chain fields unconditionally.
func (l *Logger) internalLog(level zerolog.Level) *zerolog.Event {
	if !l.getConfig().InternalErrorsToStderr {
		return nil
	}
	return l.diagnostics.Load().WithLevel(level)
}
