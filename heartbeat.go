package alog

import (
	"fmt"
	"runtime"
	"time"
)

// heartbeat writes a statistics line straight to the file and console,
// bypassing the queue and the level filter. It does not count as a written event.
func (w *writer) heartbeat() {
	w.refresh()

	sequence := w.l.state.HeartbeatSequence.Add(1)

	var uptimeHours float64
	if startTime, ok := w.l.state.LoggerStartTime.Load().(time.Time); ok && !startTime.IsZero() {
		uptimeHours = time.Since(startTime).Hours()
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	ev := Event{
		Time:  time.Now(),
		Level: LevelInfo,
		Message: fmt.Sprintf(
			"heartbeat sequence=%d uptime_hours=%.2f written=%d dropped=%d evicted=%d lost=%d rotations=%d rotation_failures=%d file_size=%d alloc_mb=%.2f num_goroutine=%d",
			sequence,
			uptimeHours,
			w.l.state.TotalWritten.Load(),
			w.l.state.DroppedLogs.Load(),
			w.l.state.TotalEvicted.Load(),
			w.l.state.TotalLost.Load(),
			w.l.state.TotalRotations.Load(),
			w.l.state.RotationFailures.Load(),
			w.rotation.Size(),
			float64(memStats.Alloc)/(1024*1024),
			runtime.NumGoroutine(),
		),
	}

	line := w.enc.encode(&ev)
	w.writeFile(line)
	if w.console != nil {
		_, _ = w.console.Write(line)
	}
}
