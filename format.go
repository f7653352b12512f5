package alog

import (
	"github.com/lixenwraith/alog/formatter"
	"github.com/lixenwraith/alog/sanitizer"
)

// String returns the fixed upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		if !releaseBuild {
			panic(fmtErrorf("invalid log level %d", int64(l)))
		}
		return "UNKNOWN"
	}
}

// Valid reports whether l is one of the defined level constants.
func (l Level) Valid() bool {
	switch l {
	case LevelTrace, LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmtErrorf("invalid log level %d", int64(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the env and file loaders.
func (l *Level) UnmarshalText(text []byte) error {
	lvl, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}

// Render renders a single event with the given template. The result carries no line terminator.
func Render(template string, ev Event) string {
	rec := ev.record()
	return formatter.Render(template, rec)
}

// record converts an event to the formatter's plain record.
func (ev Event) record() formatter.Record {
	return formatter.Record{
		Time:     ev.Time,
		Level:    ev.Level.String(),
		Message:  ev.Message,
		File:     ev.File,
		Function: ev.Function,
	}
}

// lineEncoder renders events into a reusable buffer. Owned by the writer goroutine.
type lineEncoder struct {
	source    string
	tpl       *formatter.Template
	sanitizer *sanitizer.Sanitizer
	buf       []byte
}

// newLineEncoder compiles the template and selects the message sanitizer policy.
func newLineEncoder(template, policy string) *lineEncoder {
	return &lineEncoder{
		source:    template,
		tpl:       formatter.Compile(template),
		sanitizer: sanitizer.New(sanitizer.PolicyPreset(policy)),
		buf:       make([]byte, 0, 1024),
	}
}

// encode returns the rendered line followed by '\n'. The slice is valid until the next call.
func (e *lineEncoder) encode(ev *Event) []byte {
	rec := ev.record()
	if !e.sanitizer.Passthrough() {
		rec.Message = e.sanitizer.Sanitize(rec.Message)
	}
	e.buf = e.tpl.Append(e.buf[:0], &rec)
	e.buf = append(e.buf, '\n')
	return e.buf
}
