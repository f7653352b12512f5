package alog

import (
	"time"
)

// Level is the severity of a log event. Levels are ordered; an event is
// written only when its level is at or above the configured minimum.
type Level int64

// Log level constants
const (
	LevelTrace    Level = -8
	LevelDebug    Level = -4
	LevelInfo     Level = 0
	LevelWarning  Level = 4
	LevelError    Level = 8
	LevelCritical Level = 12
)

// Template placeholders and the built-in templates
const (
	PlaceholderTimestamp = "<TIMESTAMP>"
	PlaceholderLevel     = "<LEVEL>"
	PlaceholderMessage   = "<MESSAGE>"
	PlaceholderFile      = "<FILE>"
	PlaceholderFunction  = "<FUNCTION>"

	DefaultTemplate = "<TIMESTAMP> [<LEVEL>] <MESSAGE>"
	VerboseTemplate = "<TIMESTAMP> [<LEVEL>] [<FILE>::<FUNCTION>] <MESSAGE>"
)

// Rotation
const (
	// Default cap for the active file (5 MB)
	defaultMaxSizeBytes int64 = 5 * 1024 * 1024
)

// Timers
const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
	// Delay between attempts to reopen an unavailable log file
	reopenInterval = time.Second
)
