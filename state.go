package alog

import (
	"io"
	"sync/atomic"
	"time"
)

// WriterState is the lifecycle phase of the writer goroutine.
type WriterState int32

const (
	// WriterIdle: running and waiting for events.
	WriterIdle WriterState = iota
	// WriterDraining: the queue is closed; buffered events are being written.
	WriterDraining
	// WriterStopped: no writer is running. The file is synced and closed.
	WriterStopped
)

func (s WriterState) String() string {
	switch s {
	case WriterIdle:
		return "idle"
	case WriterDraining:
		return "draining"
	case WriterStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// State encapsulates the runtime state of the logger
type State struct {
	Started     atomic.Bool
	WriterState atomic.Int32 // holds a WriterState

	DroppedLogs      atomic.Uint64 // Rejected at submission: logger not running
	TotalEvicted     atomic.Uint64 // Removed by the bounded queue's drop-oldest policy
	TotalDiscarded   atomic.Uint64 // Abandoned by a bounded Stop
	TotalWritten     atomic.Uint64 // Appended to the log file
	TotalLost        atomic.Uint64 // Reached the writer but could not be appended to the file
	TotalRotations   atomic.Uint64 // Successful rotations
	RotationFailures atomic.Uint64 // Aborted rotations
	CurrentSize      atomic.Int64  // Mirror of the rotation counter, for stats

	HeartbeatSequence atomic.Uint64
	LoggerStartTime   atomic.Value // time.Time
}

// Stats is a point-in-time snapshot of the logger's counters.
type Stats struct {
	Written          uint64
	Dropped          uint64
	Evicted          uint64
	Discarded        uint64
	Lost             uint64
	Rotations        uint64
	RotationFailures uint64
	QueueLength      int
	FileSize         int64
	WriterState      WriterState
	StartTime        time.Time
}

// Stats returns the current counters. Counters are cumulative across restarts.
func (l *Logger) Stats() Stats {
	s := Stats{
		Written:          l.state.TotalWritten.Load(),
		Dropped:          l.state.DroppedLogs.Load(),
		Evicted:          l.state.TotalEvicted.Load(),
		Discarded:        l.state.TotalDiscarded.Load(),
		Lost:             l.state.TotalLost.Load(),
		Rotations:        l.state.TotalRotations.Load(),
		RotationFailures: l.state.RotationFailures.Load(),
		FileSize:         l.state.CurrentSize.Load(),
		WriterState:      l.WriterState(),
	}
	if q := l.queue.Load(); q != nil {
		s.QueueLength = q.Len()
	}
	if t, ok := l.state.LoggerStartTime.Load().(time.Time); ok {
		s.StartTime = t
	}
	return s
}

// WriterState reports the writer goroutine's lifecycle phase.
func (l *Logger) WriterState() WriterState {
	return WriterState(l.state.WriterState.Load())
}

// sink is a wrapper around an io.Writer, atomic value type change workaround
type sink struct {
	w io.Writer
}
