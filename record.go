package alog

import (
	"time"
)

// Event is a single log entry as submitted by a caller. It is an immutable
// value; formatting happens later on the writer goroutine.
type Event struct {
	Time     time.Time // time.Now at submission, keeps the monotonic reading
	Level    Level
	Message  string
	File     string // optional source file
	Function string // optional function name
}

// callerSkip is the number of frames between log and the user's call site:
// callerLocation <- log <- exported method <- caller.
const callerSkip = 2

// log filters by level, fills in the caller location when verbose output is
// enabled, and hands the event to the queue. It never blocks on I/O.
func (l *Logger) log(level Level, msg, file, function string) {
	if !level.Valid() && !releaseBuild {
		panic(fmtErrorf("invalid log level %d", int64(level)))
	}

	cfg := l.getConfig()
	if level < cfg.Level {
		return
	}

	if cfg.Verbose && file == "" && function == "" {
		file, function = callerLocation(callerSkip)
	}

	ev := Event{
		Time:     time.Now(),
		Level:    level,
		Message:  msg,
		File:     file,
		Function: function,
	}

	q := l.queue.Load()
	if q == nil || !q.Push(ev) {
		// Not started, or stopped: the event has nowhere to go
		l.state.DroppedLogs.Add(1)
	}
}
