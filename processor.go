package alog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// writer is the single consumer of a DeliveryQueue. It owns the log file,
// the rotation counter and the line encoder; nothing else touches them
// while it runs.
type writer struct {
	l        *Logger
	cfg      *Config // snapshot currently in effect
	enc      *lineEncoder
	rotation *RotationManager
	file     *os.File
	console  io.Writer // nil when echo is off
	timers   *TimerSet
	batch    []Event

	dirty           bool // bytes written since the last sync
	lastOpenAttempt time.Time
	evictedSeen     uint64

	// Each failure class is reported once until the next success
	openErrReported   bool
	writeErrReported  bool
	rotateErrReported bool
}

func newWriter(l *Logger, cfg *Config) *writer {
	return &writer{
		l:        l,
		cfg:      cfg,
		enc:      newLineEncoder(cfg.effectiveTemplate(), cfg.Sanitize),
		rotation: NewRotationManager(cfg.Path, cfg.MaxSizeBytes, cfg.MaxBackups),
		batch:    make([]Event, 0, 256),
	}
}

// open opens the configured file. Used by Start before the goroutine runs
// and by the writer itself when reopening.
func (w *writer) open() error {
	w.lastOpenAttempt = time.Now()
	file, size, err := openLogFile(w.rotation.Path())
	if err != nil {
		w.file = nil
		if !w.openErrReported {
			w.openErrReported = true
			w.l.internalLog(zerolog.ErrorLevel).
				Str("op", "open").
				Str("path", w.rotation.Path()).
				Err(err).
				Msgf("Error opening log file: %s", w.rotation.Path())
		}
		return err
	}

	if w.openErrReported {
		w.openErrReported = false
		w.l.internalLog(zerolog.InfoLevel).Str("op", "open").Str("path", w.rotation.Path()).Msg("log file available again")
	}
	w.file = file
	w.rotation.Reset(size)
	w.l.state.CurrentSize.Store(size)
	return nil
}

// run is the writer loop; done is closed when it returns.
func (w *writer) run(q *DeliveryQueue, done chan struct{}) {
	defer close(done)
	defer w.l.state.WriterState.Store(int32(WriterStopped))
	defer w.closeFile()

	w.timers = setupTimers(w.cfg)
	defer w.timers.stop()

	for {
		select {
		case <-q.Ready():
			if w.drain(q) {
				return
			}

		case <-w.timers.flushTicker.C:
			w.sync()

		case confirm := <-w.l.flushRequests:
			finished := w.drain(q)
			w.sync()
			close(confirm)
			if finished {
				return
			}

		case <-w.timers.heartbeatChan:
			w.heartbeat()
		}
	}
}

// drain writes everything currently queued. It returns true once the queue
// is closed and empty, or the remainder was abandoned by a bounded Stop.
func (w *writer) drain(q *DeliveryQueue) bool {
	var closed bool
	w.batch, closed = q.PopAll(w.batch[:0])
	defer func() {
		clear(w.batch)
		w.batch = w.batch[:0]
	}()

	if closed {
		w.l.state.WriterState.Store(int32(WriterDraining))
	}

	w.refresh()
	w.reportEvictions(q)

	for i := range w.batch {
		if w.l.abandon.Load() {
			w.discard(q, len(w.batch)-i)
			return true
		}
		w.process(&w.batch[i])
	}

	// A closed queue accepts nothing more, so this batch was the last one
	return closed
}

// discard drops the unwritten remainder after a bounded Stop expired.
func (w *writer) discard(q *DeliveryQueue, pending int) {
	var rest []Event
	rest, _ = q.PopAll(nil)
	n := uint64(pending + len(rest))
	w.l.state.TotalDiscarded.Add(n)
	w.l.internalLog(zerolog.WarnLevel).
		Str("op", "stop").
		Uint64("discarded", n).
		Msg("stop deadline expired, discarding undelivered events")
}

// refresh picks up a new configuration snapshot, once per batch.
func (w *writer) refresh() {
	cfg := w.l.getConfig()
	if cfg != w.cfg {
		w.applySnapshot(cfg)
	}
	w.console = w.l.consoleWriter(w.cfg)
}

func (w *writer) applySnapshot(cfg *Config) {
	old := w.cfg
	w.cfg = cfg

	if old.Path != cfg.Path {
		w.closeFile()
		w.rotation = NewRotationManager(cfg.Path, cfg.MaxSizeBytes, cfg.MaxBackups)
		w.openErrReported = false
		w.writeErrReported = false
		w.rotateErrReported = false
		_ = w.open()
	} else {
		w.rotation.SetLimits(cfg.MaxSizeBytes, cfg.MaxBackups)
	}

	if old.effectiveTemplate() != cfg.effectiveTemplate() || old.Sanitize != cfg.Sanitize {
		w.enc = newLineEncoder(cfg.effectiveTemplate(), cfg.Sanitize)
	}

	if w.timers != nil {
		w.timers.reset(old, cfg)
	}
}

// reportEvictions emits a diagnostic when the bounded queue dropped events.
func (w *writer) reportEvictions(q *DeliveryQueue) {
	total := q.Dropped()
	if total <= w.evictedSeen {
		return
	}
	n := total - w.evictedSeen
	w.evictedSeen = total
	w.l.state.TotalEvicted.Add(n)
	w.l.internalLog(zerolog.WarnLevel).
		Str("op", "enqueue").
		Uint64("dropped", n).
		Int64("capacity", w.cfg.QueueCapacity).
		Msg("queue full, oldest events dropped")
}

// process renders one event and delivers it to the file and the console.
func (w *writer) process(ev *Event) {
	line := w.enc.encode(ev)

	if w.writeFile(line) {
		w.l.state.TotalWritten.Add(1)
	} else {
		w.l.state.TotalLost.Add(1)
	}

	if w.console != nil {
		_, _ = w.console.Write(line)
	}
}

// writeFile appends line to the active file, rotating first when the size
// limit was reached by earlier appends.
func (w *writer) writeFile(line []byte) bool {
	if w.file == nil && !w.reopen() {
		return false
	}

	if w.rotation.Check() == RotateNow {
		w.rotate()
		if w.file == nil {
			return false
		}
	}

	n, err := w.file.Write(line)
	w.rotation.Observe(int64(n))
	w.l.state.CurrentSize.Store(w.rotation.Size())
	if err != nil {
		if !w.writeErrReported {
			w.writeErrReported = true
			w.l.internalLog(zerolog.ErrorLevel).
				Str("op", "write").
				Str("path", w.rotation.Path()).
				Err(err).
				Msg("failed to write to log file")
		}
		return false
	}

	if w.writeErrReported {
		w.writeErrReported = false
		w.l.internalLog(zerolog.InfoLevel).Str("op", "write").Str("path", w.rotation.Path()).Msg("log file writes recovered")
	}
	w.dirty = true
	return true
}

// reopen retries an unavailable file, at most once per reopenInterval.
func (w *writer) reopen() bool {
	if time.Since(w.lastOpenAttempt) < reopenInterval {
		return false
	}
	return w.open() == nil
}

// rotate closes the active file, shifts the backup chain and reopens the
// path. A failed shift leaves the old file in place; appends continue there.
func (w *writer) rotate() {
	size := w.rotation.Size()
	w.closeFile()

	if err := w.rotation.Rotate(); err != nil {
		w.l.state.RotationFailures.Add(1)
		if !w.rotateErrReported {
			w.rotateErrReported = true
			w.l.internalLog(zerolog.ErrorLevel).
				Str("op", "rotate").
				Str("path", w.rotation.Path()).
				Int64("size", size).
				Err(err).
				Msg("rotation failed, continuing with the current file")
		}
	} else {
		w.rotateErrReported = false
		w.l.state.TotalRotations.Add(1)
	}

	// The byte count is the manager's, not the reopened file's: a failed
	// rotation must keep its retry threshold
	file, _, err := openLogFile(w.rotation.Path())
	w.lastOpenAttempt = time.Now()
	if err != nil {
		w.file = nil
		if !w.openErrReported {
			w.openErrReported = true
			w.l.internalLog(zerolog.ErrorLevel).Str("op", "open").Str("path", w.rotation.Path()).Err(err).
				Msgf("Error opening log file: %s", w.rotation.Path())
		}
		return
	}
	w.file = file
	w.l.state.CurrentSize.Store(w.rotation.Size())
}

// sync flushes the file to stable storage if anything was written since the last sync.
func (w *writer) sync() {
	if w.file == nil || !w.dirty {
		return
	}
	if err := w.file.Sync(); err != nil {
		w.l.internalLog(zerolog.WarnLevel).Str("op", "sync").Str("path", w.rotation.Path()).Err(err).Msg("log file sync failed")
		return
	}
	w.dirty = false
}

// closeFile syncs and closes the active file, if any.
func (w *writer) closeFile() {
	if w.file == nil {
		return
	}
	w.dirty = true
	w.sync()
	if err := w.file.Close(); err != nil {
		w.l.internalLog(zerolog.WarnLevel).Str("op", "close").Str("path", w.rotation.Path()).Err(err).Msg("failed to close log file")
	}
	w.file = nil
}
