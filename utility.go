package alog

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrNotStarted is returned by operations that need a running writer.
	ErrNotStarted = errors.New("alog: logger not started")
	// ErrFileUnavailable wraps failures to open the configured log file.
	// The logger keeps running without the file when it is returned from Start.
	ErrFileUnavailable = errors.New("alog: log file unavailable")
	// ErrStopTimeout is returned by a bounded Stop whose deadline expired before the drain finished.
	ErrStopTimeout = errors.New("alog: stop timed out before drain completed")
)

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "alog: ") {
		format = "alog: " + format
	}
	return fmt.Errorf(format, args...)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// ParseLevel converts a level name to its Level constant.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical":
		return LevelCritical, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use trace, debug, info, warning, error, critical)", levelStr)
	}
}

// callerLocation returns the base file name and short function name of the
// frame skip levels above its caller.
func callerLocation(skip int) (file, function string) {
	pc, path, _, ok := runtime.Caller(skip + 1) // +1 for callerLocation itself
	if !ok {
		return "", ""
	}
	file = filepath.Base(path)
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		// github.com/x/pkg.(*T).Method -> (*T).Method
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		if i := strings.Index(name, "."); i >= 0 {
			name = name[i+1:]
		}
		function = name
	}
	return file, function
}
