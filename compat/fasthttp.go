package compat

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/alog"
	"github.com/valyala/fasthttp"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter wraps alog.Logger to implement the fasthttp Logger interface
type FastHTTPAdapter struct {
	logger        *alog.Logger
	defaultLevel  alog.Level
	levelDetector func(string) (alog.Level, bool) // Detects a level from message content
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(logger *alog.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		defaultLevel:  alog.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when no level is detected
func WithDefaultLevel(level alog.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content
func WithLevelDetector(detector func(string) (alog.Level, bool)) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected, ok := a.levelDetector(msg); ok {
			level = detected
		}
	}

	a.logger.Log(level, "fasthttp: "+msg)
}

// DetectLogLevel guesses a level from keywords in msg
func DetectLogLevel(msg string) (alog.Level, bool) {
	msgLower := strings.ToLower(msg)

	switch {
	case strings.Contains(msgLower, "panic"),
		strings.Contains(msgLower, "fatal"):
		return alog.LevelCritical, true

	case strings.Contains(msgLower, "error"),
		strings.Contains(msgLower, "failed"):
		return alog.LevelError, true

	case strings.Contains(msgLower, "warn"),
		strings.Contains(msgLower, "deprecated"):
		return alog.LevelWarning, true

	case strings.Contains(msgLower, "debug"):
		return alog.LevelDebug, true

	case strings.Contains(msgLower, "trace"):
		return alog.LevelTrace, true
	}

	return alog.LevelInfo, false
}
