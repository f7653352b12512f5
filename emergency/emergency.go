//go:build unix

// Package emergency is the crash path: a raw, append-only file descriptor
// and a fixed set of literal lines written with single write(2) calls.
//
// Nothing here allocates, locks, formats or touches the asynchronous
// logger. The descriptor is opened once before any signal is registered,
// is never reopened, and is closed only during normal shutdown. After a
// fatal signal has been recorded the process exits immediately; pending
// events in the asynchronous logger are deliberately abandoned.
//
// Signal lines are only produced for signals delivered from outside the
// process, such as kill -SEGV. The Go runtime turns a synchronous fault in
// Go code (nil dereference, integer division by zero, bad memory access)
// into a panic, so it never reaches Notify. Use CaptureRuntimeCrashes to
// record those in the crash log as runtime tracebacks.
package emergency

import (
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// System calls, replaceable in tests. Tests that swap them must not run in parallel.
var (
	openFn  = unix.Open
	writeFn = unix.Write
	closeFn = unix.Close
	dupFn   = unix.Dup
	exitFn  = unix.Exit
)

// Precomputed lines, one per expected signal
var (
	lineSIGSEGV  = []byte("SIGSEGV (Segmentation Fault)\n")
	lineSIGABRT  = []byte("SIGABRT (Abort)\n")
	lineSIGFPE   = []byte("SIGFPE (Floating Point Exception)\n")
	lineSIGILL   = []byte("SIGILL (Illegal Instruction)\n")
	lineSIGBUS   = []byte("SIGBUS (Bus Error)\n")
	lineSIGTERM  = []byte("SIGTERM (Termination Request)\n")
	lineSIGINT   = []byte("SIGINT (Interrupt)\n")
	lineUnknown  = []byte("UNKNOWN SIGNAL\n")
	defaultFatal = []os.Signal{unix.SIGSEGV, unix.SIGABRT, unix.SIGFPE, unix.SIGILL, unix.SIGBUS}
)

// Sink is the emergency crash log.
type Sink struct {
	fd     int
	path   string
	closed atomic.Bool
}

// Open opens path for appending, creating it if needed. Call it at startup,
// before Notify.
func Open(path string) (*Sink, error) {
	fd, err := openFn(path, unix.O_WRONLY|unix.O_CREAT|unix.O_APPEND|unix.O_CLOEXEC, 0644)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return &Sink{fd: fd, path: path}, nil
}

// Path returns the crash log path.
func (s *Sink) Path() string { return s.path }

// WriteLiteral writes b with a single write call. Errors are ignored: there
// is nothing left to report them to.
func (s *Sink) WriteLiteral(b []byte) {
	if s.closed.Load() {
		return
	}
	_, _ = writeFn(s.fd, b)
}

// Write records sig as one fixed line, e.g. "SIGSEGV (Segmentation Fault)".
func (s *Sink) Write(sig unix.Signal) {
	s.WriteLiteral(lineFor(sig))
}

func lineFor(sig unix.Signal) []byte {
	switch sig {
	case unix.SIGSEGV:
		return lineSIGSEGV
	case unix.SIGABRT:
		return lineSIGABRT
	case unix.SIGFPE:
		return lineSIGFPE
	case unix.SIGILL:
		return lineSIGILL
	case unix.SIGBUS:
		return lineSIGBUS
	case unix.SIGTERM:
		return lineSIGTERM
	case unix.SIGINT:
		return lineSIGINT
	default:
		return lineUnknown
	}
}

// Handle records sig and terminates the process with status 128+sig,
// skipping deferred functions and every other cleanup.
func (s *Sink) Handle(sig unix.Signal) {
	s.Write(sig)
	exitFn(128 + int(sig))
}

// CaptureRuntimeCrashes routes Go runtime fatal errors and unrecovered
// panics to the crash log in addition to stderr.
func (s *Sink) CaptureRuntimeCrashes() error {
	// SetCrashOutput keeps its own duplicate; ours is only a carrier
	fd, err := dupFn(s.fd)
	if err != nil {
		return &os.PathError{Op: "dup", Path: s.path, Err: err}
	}
	f := os.NewFile(uintptr(fd), s.path)
	defer f.Close()
	return debug.SetCrashOutput(f, debug.CrashOptions{})
}

// Close closes the descriptor. Normal shutdown only.
func (s *Sink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := closeFn(s.fd); err != nil {
		return &os.PathError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}

// Notify registers sigs (the fatal set when none are given) and hands the
// first one received to s.Handle. The returned stop function unregisters.
//
// Only asynchronous deliveries arrive here. A SIGSEGV, SIGBUS or SIGFPE
// raised by a fault in Go code becomes a runtime panic instead; pair Notify
// with CaptureRuntimeCrashes to keep those in the crash log.
func Notify(s *Sink, sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = defaultFatal
	}

	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sigs...)

	go func() {
		select {
		case sig := <-ch:
			if us, ok := sig.(unix.Signal); ok {
				s.Handle(us)
				return
			}
			s.WriteLiteral(lineUnknown)
			exitFn(128)
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}
