package alog

// Builder provides a fluent API for building logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new, not yet started Logger with the built configuration.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	logger := New()

	if err := logger.ApplyConfig(b.cfg); err != nil {
		return nil, err
	}

	return logger, nil
}

// Config returns a copy of the configuration built so far.
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.cfg.Clone(), nil
}

// Path sets the active log file path.
func (b *Builder) Path(path string) *Builder {
	b.cfg.Path = path
	return b
}

// Level sets the minimum level.
func (b *Builder) Level(level Level) *Builder {
	b.cfg.Level = level
	return b
}

// LevelString sets the minimum level from a string.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	levelVal, err := ParseLevel(level)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = levelVal
	return b
}

// MaxSizeBytes sets the rotation threshold in bytes; 0 disables rotation.
func (b *Builder) MaxSizeBytes(size int64) *Builder {
	b.cfg.MaxSizeBytes = size
	return b
}

// MaxSizeMB sets the rotation threshold in MB. Convenience.
func (b *Builder) MaxSizeMB(size int64) *Builder {
	b.cfg.MaxSizeBytes = size * 1024 * 1024
	return b
}

// MaxBackups sets the number of retained backups.
func (b *Builder) MaxBackups(n int64) *Builder {
	b.cfg.MaxBackups = n
	return b
}

// EnableConsole enables mirroring lines to stdout/stderr.
func (b *Builder) EnableConsole(enable bool) *Builder {
	b.cfg.EnableConsole = enable
	return b
}

// ConsoleTarget selects "stdout" or "stderr".
func (b *Builder) ConsoleTarget(target string) *Builder {
	b.cfg.ConsoleTarget = target
	return b
}

// Template sets the line template.
func (b *Builder) Template(tpl string) *Builder {
	b.cfg.Template = tpl
	return b
}

// Verbose enables caller file/function capture.
func (b *Builder) Verbose(enable bool) *Builder {
	b.cfg.Verbose = enable
	return b
}

// Sanitize sets the message sanitizer policy.
func (b *Builder) Sanitize(policy string) *Builder {
	b.cfg.Sanitize = policy
	return b
}

// QueueCapacity bounds the queue; 0 is unbounded.
func (b *Builder) QueueCapacity(n int64) *Builder {
	b.cfg.QueueCapacity = n
	return b
}

// FlushIntervalMs sets the periodic sync interval.
func (b *Builder) FlushIntervalMs(ms int64) *Builder {
	b.cfg.FlushIntervalMs = ms
	return b
}

// HeartbeatIntervalS enables heartbeat lines every n seconds; 0 disables.
func (b *Builder) HeartbeatIntervalS(interval int64) *Builder {
	b.cfg.HeartbeatIntervalS = interval
	return b
}

// InternalErrorsToStderr toggles internal diagnostics.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Example usage:
// logger, err := alog.NewBuilder().
//
//	Path("/var/log/app/app.log").
//	LevelString("debug").
//	MaxSizeMB(5).
//	MaxBackups(3).
//	Build()
//
// if err == nil {
//
//	 _ = logger.Start()
//	 defer logger.Stop()
//	 logger.Info("Logger initialized successfully")
//
// }
