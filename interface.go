package alog

// Log submits msg at level. It returns immediately; the event is written by
// the writer goroutine. Events below the configured level are discarded
// before they reach the queue.
func (l *Logger) Log(level Level, msg string) {
	l.log(level, msg, "", "")
}

// LogAt submits msg with an explicit source location.
func (l *Logger) LogAt(level Level, msg, file, function string) {
	l.log(level, msg, file, function)
}

// Trace logs a message at trace level.
func (l *Logger) Trace(msg string) {
	l.log(LevelTrace, msg, "", "")
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string) {
	l.log(LevelDebug, msg, "", "")
}

// Info logs a message at info level.
func (l *Logger) Info(msg string) {
	l.log(LevelInfo, msg, "", "")
}

// Warn logs a message at warning level.
func (l *Logger) Warn(msg string) {
	l.log(LevelWarning, msg, "", "")
}

// Error logs a message at error level.
func (l *Logger) Error(msg string) {
	l.log(LevelError, msg, "", "")
}

// Critical logs a message at critical level.
func (l *Logger) Critical(msg string) {
	l.log(LevelCritical, msg, "", "")
}
