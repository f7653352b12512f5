package alog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig verifies the default values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "./logs/app.log", cfg.Path)
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxSizeBytes)
	assert.Equal(t, int64(5), cfg.MaxBackups)
	assert.True(t, cfg.EnableConsole)
	assert.Equal(t, "stdout", cfg.ConsoleTarget)
	assert.Equal(t, DefaultTemplate, cfg.Template)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "raw", cfg.Sanitize)
	assert.Zero(t, cfg.QueueCapacity)
	assert.Equal(t, int64(100), cfg.FlushIntervalMs)
	assert.Zero(t, cfg.HeartbeatIntervalS)
	assert.True(t, cfg.InternalErrorsToStderr)
	assert.NoError(t, cfg.Validate())

	// Each call returns an independent copy
	cfg.Path = "changed.log"
	assert.Equal(t, "./logs/app.log", DefaultConfig().Path)
}

// TestConfigClone verifies that a clone is independent of its source
func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.MaxBackups = 9

	assert.Equal(t, int64(5), cfg.MaxBackups)
	assert.NotSame(t, cfg, clone)
}

// TestEffectiveTemplate verifies the verbose upgrade of the default template only
func TestEffectiveTemplate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultTemplate, cfg.effectiveTemplate())

	cfg.Verbose = true
	assert.Equal(t, VerboseTemplate, cfg.effectiveTemplate())

	cfg.Template = "<MESSAGE>"
	assert.Equal(t, "<MESSAGE>", cfg.effectiveTemplate())
}

// TestConfigValidate verifies field constraints and their error messages
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"empty path", func(c *Config) { c.Path = "" }, "path"},
		{"blank path", func(c *Config) { c.Path = "   " }, "path: cannot be blank"},
		{"directory path", func(c *Config) { c.Path = "logs/" }, "names a directory"},
		{"negative max size", func(c *Config) { c.MaxSizeBytes = -1 }, "max_size_bytes: failed 'gte=0'"},
		{"too many backups", func(c *Config) { c.MaxBackups = 1025 }, "max_backups: failed 'lte=1024'"},
		{"negative backups", func(c *Config) { c.MaxBackups = -1 }, "max_backups"},
		{"bad console target", func(c *Config) { c.ConsoleTarget = "stdlog" }, "console_target: failed 'oneof=stdout stderr'"},
		{"empty template", func(c *Config) { c.Template = "" }, "template: failed 'required'"},
		{"bad sanitize policy", func(c *Config) { c.Sanitize = "html" }, "sanitize"},
		{"negative queue capacity", func(c *Config) { c.QueueCapacity = -5 }, "queue_capacity"},
		{"zero flush interval", func(c *Config) { c.FlushIntervalMs = 0 }, "flush_interval_ms: failed 'gt=0'"},
		{"negative heartbeat", func(c *Config) { c.HeartbeatIntervalS = -1 }, "heartbeat_interval_s"},
		{"undefined level", func(c *Config) { c.Level = Level(1) }, "level: unknown level 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("zero size and backups are valid", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxSizeBytes = 0
		cfg.MaxBackups = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("nil config", func(t *testing.T) {
		var cfg *Config
		assert.Error(t, cfg.Validate())
	})
}

// TestNewConfigFromFile verifies loading the [log] table over the defaults
func TestNewConfigFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("partial file", func(t *testing.T) {
		path := filepath.Join(dir, "alog.toml")
		content := `
[log]
path = "/var/log/app/app.log"
max_size_bytes = 2048
max_backups = 3
enable_console = false
template = "<LEVEL> <MESSAGE>"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := NewConfigFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "/var/log/app/app.log", cfg.Path)
		assert.Equal(t, int64(2048), cfg.MaxSizeBytes)
		assert.Equal(t, int64(3), cfg.MaxBackups)
		assert.False(t, cfg.EnableConsole)
		assert.Equal(t, "<LEVEL> <MESSAGE>", cfg.Template)
		assert.Equal(t, defaultConfig.FlushIntervalMs, cfg.FlushIntervalMs, "absent keys keep defaults")
	})

	t.Run("missing file keeps defaults", func(t *testing.T) {
		cfg, err := NewConfigFromFile(filepath.Join(dir, "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[log]\nmax_backups = 5000\n"), 0644))

		_, err := NewConfigFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_backups")
	})
}

// TestNewConfigFromFileIgnoresEnvironment verifies that unprefixed variables never reach a file load
func TestNewConfigFromFileIgnoresEnvironment(t *testing.T) {
	t.Setenv("PATH", "/usr/local/bin:/usr/bin:/bin")
	t.Setenv("LEVEL", "error")
	t.Setenv("TEMPLATE", "hijacked")
	t.Setenv("MAX_BACKUPS", "9")
	dir := t.TempDir()

	t.Run("file values", func(t *testing.T) {
		path := filepath.Join(dir, "alog.toml")
		require.NoError(t, os.WriteFile(path, []byte("[log]\npath = \"/var/log/app/app.log\"\n"), 0644))

		cfg, err := NewConfigFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "/var/log/app/app.log", cfg.Path)
		assert.Equal(t, LevelInfo, cfg.Level)
		assert.Equal(t, DefaultTemplate, cfg.Template)
		assert.Equal(t, int64(5), cfg.MaxBackups)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := NewConfigFromFile(filepath.Join(dir, "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})
}

// TestApplyEnv verifies the ALOG_ environment overlay
func TestApplyEnv(t *testing.T) {
	t.Setenv("ALOG_PATH", "/tmp/env/app.log")
	t.Setenv("ALOG_LEVEL", "debug")
	t.Setenv("ALOG_MAX_BACKUPS", "7")
	t.Setenv("ALOG_ENABLE_CONSOLE", "false")
	t.Setenv("ALOG_SANITIZE", "escape")

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, "/tmp/env/app.log", cfg.Path)
	assert.Equal(t, LevelDebug, cfg.Level)
	assert.Equal(t, int64(7), cfg.MaxBackups)
	assert.False(t, cfg.EnableConsole)
	assert.Equal(t, "escape", cfg.Sanitize)
	assert.Equal(t, DefaultTemplate, cfg.Template, "unset variables leave fields untouched")
	assert.NoError(t, cfg.Validate())
}

// TestApplyEnvInvalid verifies that malformed variables are reported
func TestApplyEnvInvalid(t *testing.T) {
	t.Run("integer", func(t *testing.T) {
		t.Setenv("ALOG_MAX_SIZE_BYTES", "lots")
		assert.Error(t, ApplyEnv(DefaultConfig()))
	})

	t.Run("level", func(t *testing.T) {
		t.Setenv("ALOG_LEVEL", "loud")
		assert.Error(t, ApplyEnv(DefaultConfig()))
	})
}

// TestSetFieldValue verifies loader value conversion
func TestSetFieldValue(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name    string
		value   any
		check   func() bool
		wantErr bool
	}{
		{"level by name", "warning", func() bool { return cfg.Level == LevelWarning }, false},
		{"level by value", LevelError, func() bool { return cfg.Level == LevelError }, false},
		{"level by number", int64(-4), func() bool { return cfg.Level == LevelDebug }, false},
		{"bad level name", "loud", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := reflectField(cfg, "Level")
			err := setFieldValue(field, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.check())
		})
	}

	t.Run("integral float", func(t *testing.T) {
		require.NoError(t, setFieldValue(reflectField(cfg, "MaxBackups"), float64(4)))
		assert.Equal(t, int64(4), cfg.MaxBackups)
		assert.Error(t, setFieldValue(reflectField(cfg, "MaxBackups"), 4.5))
	})

	t.Run("type mismatch", func(t *testing.T) {
		assert.Error(t, setFieldValue(reflectField(cfg, "Path"), 3))
		assert.Error(t, setFieldValue(reflectField(cfg, "Verbose"), "yes"))
	})
}

func reflectField(cfg *Config, name string) reflect.Value {
	return reflect.ValueOf(cfg).Elem().FieldByName(name)
}
