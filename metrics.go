package alog

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports a Logger's Stats as Prometheus metrics. Values are read
// at scrape time, so the logging hot path carries no metric updates.
type Collector struct {
	l *Logger

	written          *prometheus.Desc
	dropped          *prometheus.Desc
	evicted          *prometheus.Desc
	discarded        *prometheus.Desc
	lost             *prometheus.Desc
	rotations        *prometheus.Desc
	rotationFailures *prometheus.Desc
	queueLength      *prometheus.Desc
	fileSize         *prometheus.Desc
	running          *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for l. Register it with a prometheus.Registerer.
func NewCollector(l *Logger) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("alog", "", name), help, nil, nil)
	}
	return &Collector{
		l:                l,
		written:          desc("events_written_total", "Events appended to the log file."),
		dropped:          desc("events_dropped_total", "Events rejected because the logger was not running."),
		evicted:          desc("events_evicted_total", "Events removed by the bounded queue's drop-oldest policy."),
		discarded:        desc("events_discarded_total", "Events abandoned by a bounded stop."),
		lost:             desc("events_lost_total", "Events that reached the writer but could not be written to the file."),
		rotations:        desc("rotations_total", "Completed log file rotations."),
		rotationFailures: desc("rotation_failures_total", "Aborted log file rotations."),
		queueLength:      desc("queue_length", "Events waiting in the delivery queue."),
		fileSize:         desc("file_size_bytes", "Bytes in the active log file."),
		running:          desc("writer_running", "1 while the writer goroutine is running."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.written
	ch <- c.dropped
	ch <- c.evicted
	ch <- c.discarded
	ch <- c.lost
	ch <- c.rotations
	ch <- c.rotationFailures
	ch <- c.queueLength
	ch <- c.fileSize
	ch <- c.running
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.l.Stats()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}

	counter(c.written, s.Written)
	counter(c.dropped, s.Dropped)
	counter(c.evicted, s.Evicted)
	counter(c.discarded, s.Discarded)
	counter(c.lost, s.Lost)
	counter(c.rotations, s.Rotations)
	counter(c.rotationFailures, s.RotationFailures)
	gauge(c.queueLength, float64(s.QueueLength))
	gauge(c.fileSize, float64(s.FileSize))

	running := 0.0
	if s.WriterState != WriterStopped {
		running = 1
	}
	gauge(c.running, running)
}
