package alog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchDebounce coalesces the burst of events an editor save produces
const watchDebounce = 100 * time.Millisecond

// ConfigLayer modifies a freshly loaded Config, e.g. with environment or flag overrides.
type ConfigLayer func(*Config) error

// WatchConfig reloads the [log] table of the TOML file at path whenever it
// changes, applying each valid version with ApplyConfig. Each reload starts
// from file plus defaults, then runs layers in order, so overrides applied at
// startup must be passed again here to survive a reload. Invalid versions are
// reported as diagnostics and leave the active configuration untouched.
// It blocks until ctx is done and returns nil then; it returns an error only
// when the watch cannot be set up.
func (l *Logger) WatchConfig(ctx context.Context, path string, layers ...ConfigLayer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmtErrorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file rather than write it
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmtErrorf("failed to watch config directory '%s': %w", dir, err)
	}

	target := filepath.Clean(path)

	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			debounce.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.internalLog(zerolog.WarnLevel).Str("op", "watch").Str("path", path).Err(err).Msg("config watcher error")

		case <-debounce.C:
			l.reloadConfig(path, layers)
		}
	}
}

// reloadConfig loads path, runs layers and applies the result, reporting failures as diagnostics.
func (l *Logger) reloadConfig(path string, layers []ConfigLayer) {
	cfg, err := NewConfigFromFile(path)
	for _, layer := range layers {
		if err != nil {
			break
		}
		err = layer(cfg)
	}
	if err == nil {
		err = l.ApplyConfig(cfg)
	}
	if err != nil {
		l.internalLog(zerolog.ErrorLevel).Str("op", "reload").Str("path", path).Err(err).Msg("config reload rejected")
		return
	}
	l.internalLog(zerolog.InfoLevel).Str("op", "reload").Str("path", path).Msg("config reloaded")
}
