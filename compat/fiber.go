package compat

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lixenwraith/alog"
)

// FiberAdapter implements the plain and printf-style method sets of Fiber's
// CommonLogger without importing Fiber. Key-value methods are not provided;
// alog writes text lines only.
type FiberAdapter struct {
	logger       *alog.Logger
	fatalHandler func(msg string)
	panicHandler func(msg string)
}

// NewFiberAdapter creates a new Fiber-compatible logger adapter
func NewFiberAdapter(logger *alog.Logger, opts ...FiberOption) *FiberAdapter {
	adapter := &FiberAdapter{
		logger: logger,
		fatalHandler: func(msg string) {
			os.Exit(1)
		},
		panicHandler: func(msg string) {
			panic(msg)
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FiberOption allows customizing adapter behavior
type FiberOption func(*FiberAdapter)

// WithFiberFatalHandler sets a custom fatal handler
func WithFiberFatalHandler(handler func(string)) FiberOption {
	return func(a *FiberAdapter) {
		a.fatalHandler = handler
	}
}

// WithFiberPanicHandler sets a custom panic handler
func WithFiberPanicHandler(handler func(string)) FiberOption {
	return func(a *FiberAdapter) {
		a.panicHandler = handler
	}
}

func (a *FiberAdapter) emit(level alog.Level, msg string) {
	a.logger.Log(level, "fiber: "+msg)
}

// terminal logs msg at critical level and flushes before handing over to handler
func (a *FiberAdapter) terminal(msg string, handler func(string)) {
	a.emit(alog.LevelCritical, msg)
	_ = a.logger.Flush(100 * time.Millisecond)
	if handler != nil {
		handler(msg)
	}
}

func (a *FiberAdapter) Trace(v ...any) { a.emit(alog.LevelTrace, fmt.Sprint(v...)) }
func (a *FiberAdapter) Debug(v ...any) { a.emit(alog.LevelDebug, fmt.Sprint(v...)) }
func (a *FiberAdapter) Info(v ...any)  { a.emit(alog.LevelInfo, fmt.Sprint(v...)) }
func (a *FiberAdapter) Warn(v ...any)  { a.emit(alog.LevelWarning, fmt.Sprint(v...)) }
func (a *FiberAdapter) Error(v ...any) { a.emit(alog.LevelError, fmt.Sprint(v...)) }
func (a *FiberAdapter) Fatal(v ...any) { a.terminal(fmt.Sprint(v...), a.fatalHandler) }
func (a *FiberAdapter) Panic(v ...any) { a.terminal(fmt.Sprint(v...), a.panicHandler) }

func (a *FiberAdapter) Tracef(format string, v ...any) {
	a.emit(alog.LevelTrace, fmt.Sprintf(format, v...))
}

func (a *FiberAdapter) Debugf(format string, v ...any) {
	a.emit(alog.LevelDebug, fmt.Sprintf(format, v...))
}

func (a *FiberAdapter) Infof(format string, v ...any) {
	a.emit(alog.LevelInfo, fmt.Sprintf(format, v...))
}

func (a *FiberAdapter) Warnf(format string, v ...any) {
	a.emit(alog.LevelWarning, fmt.Sprintf(format, v...))
}

func (a *FiberAdapter) Errorf(format string, v ...any) {
	a.emit(alog.LevelError, fmt.Sprintf(format, v...))
}

func (a *FiberAdapter) Fatalf(format string, v ...any) {
	a.terminal(fmt.Sprintf(format, v...), a.fatalHandler)
}

func (a *FiberAdapter) Panicf(format string, v ...any) {
	a.terminal(fmt.Sprintf(format, v...), a.panicHandler)
}

// Write lets the adapter stand in as an io.Writer, e.g. for Fiber's access log
// middleware output. Each call is one info event, trailing newline trimmed.
func (a *FiberAdapter) Write(p []byte) (n int, err error) {
	a.emit(alog.LevelInfo, strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
