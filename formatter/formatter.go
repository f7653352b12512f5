// Package formatter renders log records through placeholder templates.
//
// A template is plain text with placeholders: <TIMESTAMP>, <LEVEL>, <MESSAGE>,
// <FILE> and <FUNCTION>. Compile scans the template once, left to right, and
// splits it into literal and placeholder segments. Rendering only walks the
// segments, so substituted values are never scanned again and the order of
// placeholders in the template does not matter. Anything between '<' and '>'
// that is not a known placeholder is kept verbatim.
package formatter

import (
	"strings"
	"time"
)

// TimestampLayout is the fixed layout of <TIMESTAMP>, rendered in the record's location.
const TimestampLayout = "2006-01-02 15:04:05"

// Record is the formatter's view of a log event. Level is the already-mapped level name.
type Record struct {
	Time     time.Time
	Level    string
	Message  string
	File     string
	Function string
}

type field uint8

const (
	fieldLiteral field = iota
	fieldTimestamp
	fieldLevel
	fieldMessage
	fieldFile
	fieldFunction
)

var placeholders = map[string]field{
	"TIMESTAMP": fieldTimestamp,
	"LEVEL":     fieldLevel,
	"MESSAGE":   fieldMessage,
	"FILE":      fieldFile,
	"FUNCTION":  fieldFunction,
}

type segment struct {
	kind field
	lit  string
}

// Template is a compiled template. It is immutable and safe for concurrent use.
type Template struct {
	src      string
	segments []segment
}

// Compile parses src into a Template. It never fails; malformed or unknown
// placeholders become literal text.
func Compile(src string) *Template {
	t := &Template{src: src}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{kind: fieldLiteral, lit: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(src); {
		if src[i] == '<' {
			if end := strings.IndexByte(src[i+1:], '>'); end >= 0 {
				if f, ok := placeholders[src[i+1:i+1+end]]; ok {
					flush()
					t.segments = append(t.segments, segment{kind: f})
					i += end + 2
					continue
				}
			}
		}
		// Not a placeholder start: emit one byte and keep scanning, so "<<LEVEL>" still finds <LEVEL>
		lit.WriteByte(src[i])
		i++
	}
	flush()
	return t
}

// String returns the template source.
func (t *Template) String() string {
	return t.src
}

// Append renders r and appends the result to dst.
func (t *Template) Append(dst []byte, r *Record) []byte {
	for _, s := range t.segments {
		switch s.kind {
		case fieldLiteral:
			dst = append(dst, s.lit...)
		case fieldTimestamp:
			dst = r.Time.AppendFormat(dst, TimestampLayout)
		case fieldLevel:
			dst = append(dst, r.Level...)
		case fieldMessage:
			dst = append(dst, r.Message...)
		case fieldFile:
			dst = append(dst, r.File...)
		case fieldFunction:
			dst = append(dst, r.Function...)
		}
	}
	return dst
}

// Render compiles src and renders r in one call.
func Render(src string, r Record) string {
	return string(Compile(src).Append(make([]byte, 0, len(src)+len(r.Message)+32), &r))
}
