package alog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWatchConfig verifies that edits to the watched file are applied and invalid edits rejected
func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "alog.toml")
	logPath := filepath.Join(dir, "app.log")

	diag := &syncBuffer{}
	logger := New()
	logger.SetDiagnosticOutput(diag)

	ctx, cancel := context.WithCancel(context.Background())
	watchErr := make(chan error, 1)
	go func() { watchErr <- logger.WatchConfig(ctx, cfgPath) }()

	// Allow the watcher to register the directory
	time.Sleep(100 * time.Millisecond)

	valid := "[log]\npath = \"" + filepath.ToSlash(logPath) + "\"\ntemplate = \"<MESSAGE>\"\nmax_backups = 2\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(valid), 0644))

	assert.Eventually(t, func() bool {
		cfg := logger.GetConfig()
		return cfg.Template == "<MESSAGE>" && cfg.MaxBackups == 2
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, filepath.ToSlash(logPath), logger.GetConfig().Path)

	require.NoError(t, os.WriteFile(cfgPath, []byte("[log]\nmax_backups = 5000\n"), 0644))
	assert.Eventually(t, func() bool {
		return strings.Contains(diag.String(), "config reload rejected")
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, int64(2), logger.GetConfig().MaxBackups, "rejected version leaves the snapshot")

	cancel()
	select {
	case err := <-watchErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("WatchConfig did not return after cancel")
	}
}

// TestWatchConfigMissingDirectory verifies that setup failures are returned
func TestWatchConfigMissingDirectory(t *testing.T) {
	logger := New()
	err := logger.WatchConfig(context.Background(), filepath.Join(t.TempDir(), "absent", "alog.toml"))
	assert.Error(t, err)
}

// TestReloadConfigLayers verifies that layers run over every reload and can reject it
func TestReloadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "alog.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[log]\npath = \"from-file.log\"\nmax_backups = 2\n"), 0644))

	diag := &syncBuffer{}
	logger := New()
	logger.SetDiagnosticOutput(diag)

	keepPath := func(cfg *Config) error {
		cfg.Path = filepath.Join(dir, "from-flag.log")
		return nil
	}
	logger.reloadConfig(cfgPath, []ConfigLayer{keepPath})

	cfg := logger.GetConfig()
	assert.Equal(t, filepath.Join(dir, "from-flag.log"), cfg.Path, "layer wins over the file")
	assert.Equal(t, int64(2), cfg.MaxBackups, "file values without a layer override survive")

	require.NoError(t, os.WriteFile(cfgPath, []byte("[log]\nmax_backups = 4\n"), 0644))
	logger.reloadConfig(cfgPath, []ConfigLayer{keepPath, func(*Config) error { return errors.New("bad override") }})

	assert.Contains(t, diag.String(), "bad override")
	assert.Equal(t, int64(2), logger.GetConfig().MaxBackups, "failed layer leaves the snapshot")
}
