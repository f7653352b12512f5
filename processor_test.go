package alog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRotationFailureReportedOnce verifies that repeated rotation failures keep every event and report once
func TestRotationFailureReportedOnce(t *testing.T) {
	orig := renameFile
	renameFile = func(string, string) error { return errors.New("rename denied") }
	t.Cleanup(func() { renameFile = orig })

	diag := &syncBuffer{}
	logger, logPath := createTestLogger(t, func(cfg *Config) {
		cfg.MaxSizeBytes = 10
		cfg.MaxBackups = 2
	})
	logger.SetDiagnosticOutput(diag)

	for i := 1; i <= 10; i++ {
		logger.Info(fmt.Sprintf("%04d", i))
	}
	require.NoError(t, logger.Stop())

	assert.Len(t, readLines(t, logPath), 10, "nothing is lost when rotation fails")
	assert.NoFileExists(t, logPath+".1")

	s := logger.Stats()
	assert.Equal(t, uint64(10), s.Written)
	assert.Zero(t, s.Rotations)
	// Attempts at 10, 20, 30 and 40 bytes
	assert.Equal(t, uint64(4), s.RotationFailures)
	assert.Equal(t, 1, strings.Count(diag.String(), "rotation failed"))
}

// TestEvictionDiagnostic verifies that drop-oldest evictions are counted and reported
func TestEvictionDiagnostic(t *testing.T) {
	diag := &syncBuffer{}
	blocker := newBlockingWriter()

	logger, logPath := createTestLogger(t, func(cfg *Config) {
		cfg.EnableConsole = true
		cfg.QueueCapacity = 2
	})
	logger.SetConsoleOutput(blocker)
	logger.SetDiagnosticOutput(diag)

	logger.Info("held")
	<-blocker.entered
	for i := 0; i < 10; i++ {
		logger.Info(fmt.Sprintf("queued %d", i))
	}
	close(blocker.release)
	require.NoError(t, logger.Stop())

	assert.Equal(t, []string{"held", "queued 8", "queued 9"}, readLines(t, logPath))
	s := logger.Stats()
	assert.Equal(t, uint64(8), s.Evicted)
	assert.Equal(t, uint64(3), s.Written)
	assert.Contains(t, diag.String(), "queue full, oldest events dropped")
}

// TestFileRecovery verifies that the writer reopens a file that becomes available
func TestFileRecovery(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	diag := &syncBuffer{}
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(blocker, "app.log")
	cfg.Template = "<MESSAGE>"
	cfg.EnableConsole = false

	logger := New()
	logger.SetDiagnosticOutput(diag)
	require.NoError(t, logger.ApplyConfig(cfg))
	require.ErrorIs(t, logger.Start(), ErrFileUnavailable)
	t.Cleanup(func() { _ = logger.Stop() })

	logger.Info("lost")
	require.NoError(t, logger.Flush(time.Second))

	require.NoError(t, os.Remove(blocker))
	time.Sleep(reopenInterval + 50*time.Millisecond)

	logger.Info("recovered")
	require.NoError(t, logger.Stop())

	assert.Equal(t, []string{"recovered"}, readLines(t, cfg.Path))
	s := logger.Stats()
	assert.Equal(t, uint64(1), s.Lost)
	assert.Equal(t, uint64(1), s.Written)
	assert.Equal(t, 1, strings.Count(diag.String(), "Error opening log file"))
	assert.Contains(t, diag.String(), "log file available again")
}

// TestDiagnosticsDisabled verifies that internal errors can be silenced
func TestDiagnosticsDisabled(t *testing.T) {
	diag := &syncBuffer{}
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "file", "app.log")
	cfg.InternalErrorsToStderr = false
	cfg.EnableConsole = false
	require.NoError(t, os.WriteFile(filepath.Dir(cfg.Path), nil, 0644))

	logger := New()
	logger.SetDiagnosticOutput(diag)
	require.NoError(t, logger.ApplyConfig(cfg))
	require.ErrorIs(t, logger.Start(), ErrFileUnavailable)
	require.NoError(t, logger.Stop())

	assert.Empty(t, diag.String())
}

// TestHeartbeat verifies that heartbeat lines bypass the level filter and counters
func TestHeartbeat(t *testing.T) {
	logger, logPath := createTestLogger(t, func(cfg *Config) {
		cfg.Level = LevelError
		cfg.HeartbeatIntervalS = 1
	})

	logger.Error("counted")
	require.Eventually(t, func() bool {
		return logger.state.HeartbeatSequence.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, logger.Stop())

	lines := readLines(t, logPath)
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "counted", lines[0])
	assert.Contains(t, lines[1], "heartbeat sequence=1")
	assert.Contains(t, lines[1], "uptime_hours=")
	assert.Contains(t, lines[1], "num_goroutine=")
	assert.Equal(t, uint64(1), logger.Stats().Written)
}

// TestTimerReset verifies ticker changes from a new snapshot
func TestTimerReset(t *testing.T) {
	oldCfg := DefaultConfig()
	timers := setupTimers(oldCfg)
	defer timers.stop()
	assert.Nil(t, timers.heartbeatChan)

	newCfg := oldCfg.Clone()
	newCfg.HeartbeatIntervalS = 5
	newCfg.FlushIntervalMs = 1
	timers.reset(oldCfg, newCfg)
	assert.NotNil(t, timers.heartbeatChan)
	assert.Equal(t, minWaitTime, flushInterval(newCfg))

	timers.reset(newCfg, oldCfg)
	assert.Nil(t, timers.heartbeatChan)
	assert.Nil(t, timers.heartbeatTicker)
}
