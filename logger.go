package alog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Logger is an asynchronous file logger. Callers submit events from any
// goroutine; one writer goroutine per Logger formats them, rotates the file
// and echoes to the console. The zero value is not usable; call New.
type Logger struct {
	currentConfig atomic.Pointer[Config]
	state         State
	initMu        sync.Mutex // serializes Start, Stop and ApplyConfig

	queue       atomic.Pointer[DeliveryQueue] // nil before the first Start
	console     atomic.Pointer[sink]          // overrides console_target when set
	diagnostics atomic.Pointer[zerolog.Logger]
	abandon     atomic.Bool // set when a bounded Stop expires

	flushMu       sync.Mutex
	flushRequests chan chan struct{}
	done          chan struct{} // closed when the current writer exits; guarded by initMu
}

// New creates a stopped Logger with the default configuration
func New() *Logger {
	l := &Logger{
		flushRequests: make(chan chan struct{}),
	}
	l.currentConfig.Store(DefaultConfig())
	l.diagnostics.Store(newDiagnosticLogger(os.Stderr))
	l.state.WriterState.Store(int32(WriterStopped))
	l.state.LoggerStartTime.Store(time.Time{})
	return l
}

// ApplyConfig validates cfg and makes a copy of it the active snapshot.
// A running writer picks it up at its next batch: a new path reopens the
// file, a new template is recompiled, new rotation limits apply to the next check.
func (l *Logger) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	l.currentConfig.Store(cfg.Clone())
	return nil
}

// Configure sets the common options in one call, keeping every other option as it is.
func (l *Logger) Configure(path string, minLevel Level, maxSizeBytes, maxBackups int64, consoleEcho bool, template string) error {
	cfg := l.GetConfig()
	cfg.Path = path
	cfg.Level = minLevel
	cfg.MaxSizeBytes = maxSizeBytes
	cfg.MaxBackups = maxBackups
	cfg.EnableConsole = consoleEcho
	cfg.Template = template
	return l.ApplyConfig(cfg)
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// getConfig returns the current snapshot; callers must not modify it
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load()
}

// SetConsoleOutput replaces the console echo destination. A nil writer
// restores the configured console_target.
func (l *Logger) SetConsoleOutput(w io.Writer) {
	if w == nil {
		l.console.Store(nil)
		return
	}
	l.console.Store(&sink{w: w})
}

// consoleWriter resolves the echo destination for cfg, nil when echo is off
func (l *Logger) consoleWriter(cfg *Config) io.Writer {
	if !cfg.EnableConsole {
		return nil
	}
	if s := l.console.Load(); s != nil {
		return s.w
	}
	if cfg.ConsoleTarget == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

// Start opens the log file and starts the writer. Calling Start on a running
// logger is a no-op.
//
// If the file cannot be opened, Start returns an error wrapping
// ErrFileUnavailable but the logger still runs: events are echoed to the
// console when enabled, and the writer retries the file periodically.
func (l *Logger) Start() error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if l.state.Started.Load() {
		return nil
	}

	if l.done != nil {
		select {
		case <-l.done:
		default:
			return fmtErrorf("previous writer has not exited yet")
		}
	}

	cfg := l.getConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	w := newWriter(l, cfg)
	var startErr error
	if err := w.open(); err != nil {
		startErr = fmt.Errorf("%w: %w", ErrFileUnavailable, err)
	}

	q := NewDeliveryQueue(int(cfg.QueueCapacity))
	done := make(chan struct{})

	l.abandon.Store(false)
	l.done = done
	l.state.LoggerStartTime.Store(time.Now())
	l.state.WriterState.Store(int32(WriterIdle))
	l.queue.Store(q)
	l.state.Started.Store(true)

	go w.run(q, done)

	return startErr
}

// Stop closes the queue and waits for the writer to drain it. Without a
// timeout it waits as long as the drain takes and nothing submitted before
// Stop is lost. With a timeout, events still unwritten at the deadline are
// discarded, counted, and ErrStopTimeout is returned. The logger can be
// started again afterwards.
func (l *Logger) Stop(timeout ...time.Duration) error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if !l.state.Started.CompareAndSwap(true, false) {
		return nil
	}

	l.queue.Load().Close()
	done := l.done

	if len(timeout) == 0 || timeout[0] <= 0 {
		<-done
		return nil
	}

	deadline := time.NewTimer(timeout[0])
	defer deadline.Stop()

	select {
	case <-done:
		return nil
	case <-deadline.C:
	}

	// The writer checks the flag between events; give it one write to notice
	l.abandon.Store(true)
	grace := time.NewTimer(reopenInterval)
	defer grace.Stop()
	select {
	case <-done:
	case <-grace.C:
	}

	return fmt.Errorf("%w (%v)", ErrStopTimeout, timeout[0])
}

// Flush writes every event queued so far, syncs the file, and waits for
// completion or timeout.
func (l *Logger) Flush(timeout time.Duration) error {
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	if !l.state.Started.Load() {
		return ErrNotStarted
	}

	confirm := make(chan struct{})
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.flushRequests <- confirm:
	case <-timer.C:
		return fmtErrorf("timeout sending flush request (%v)", timeout)
	}

	select {
	case <-confirm:
		return nil
	case <-timer.C:
		return fmtErrorf("timeout waiting for flush confirmation (%v)", timeout)
	}
}
