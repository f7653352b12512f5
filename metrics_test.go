package alog

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	logger, _ := createTestLogger(t)
	c := NewCollector(logger)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	logger.Info("one")
	logger.Info("two")
	logger.Info("three")
	require.NoError(t, logger.Stop())
	logger.Info("dropped")

	assert.Equal(t, 10, testutil.CollectAndCount(c))

	expected := `
# HELP alog_events_written_total Events appended to the log file.
# TYPE alog_events_written_total counter
alog_events_written_total 3
# HELP alog_events_dropped_total Events rejected because the logger was not running.
# TYPE alog_events_dropped_total counter
alog_events_dropped_total 1
# HELP alog_writer_running 1 while the writer goroutine is running.
# TYPE alog_writer_running gauge
alog_writer_running 0
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"alog_events_written_total", "alog_events_dropped_total", "alog_writer_running")
	assert.NoError(t, err)
}
