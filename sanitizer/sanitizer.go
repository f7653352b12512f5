// Package sanitizer rewrites message text so that one log event always stays
// on one output line. Rules pair a character filter with a transform and are
// checked in order; the first matching rule wins.
package sanitizer

import (
	"encoding/hex"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // Runes not printable per strconv.IsPrint
	FilterControl                         // Control characters (unicode.IsControl)
	FilterLineBreak                       // '\n' and '\r'
)

// Transform flags for character transformation
const (
	TransformStrip     uint64 = 1 << iota // Removes the character
	TransformHexEncode                    // Encodes the rune's UTF-8 bytes as "<XXYY>"
	TransformEscape                       // Backslash escape ('\n', '\t', '\u0000')
)

// PolicyPreset names a pre-configured rule set
type PolicyPreset string

const (
	PolicyRaw    PolicyPreset = "raw"    // Passthrough
	PolicyTxt    PolicyPreset = "txt"    // Hex-encode non-printable runes
	PolicyEscape PolicyPreset = "escape" // Backslash-escape control characters
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw:    {},
	PolicyTxt:    {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyEscape: {{filter: FilterControl | FilterLineBreak, transform: TransformEscape}},
}

// filterOrder fixes the evaluation order of filter bits
var filterOrder = []struct {
	flag  uint64
	check func(rune) bool
}{
	{FilterLineBreak, func(r rune) bool { return r == '\n' || r == '\r' }},
	{FilterControl, unicode.IsControl},
	{FilterNonPrintable, func(r rune) bool { return !strconv.IsPrint(r) }},
}

// Sanitizer applies its rules to message text. Not safe for concurrent use;
// the logger's writer goroutine owns its instance.
type Sanitizer struct {
	rules []rule
	buf   []byte
}

// New creates a sanitizer with the given preset. An unknown preset yields a passthrough sanitizer.
func New(preset PolicyPreset) *Sanitizer {
	s := &Sanitizer{buf: make([]byte, 0, 256)}
	return s.Policy(preset)
}

// Policy appends the rules of a preset
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Rule appends a custom rule
func (s *Sanitizer) Rule(filter, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Passthrough reports whether the sanitizer leaves every input unchanged.
func (s *Sanitizer) Passthrough() bool {
	return len(s.rules) == 0
}

// Sanitize returns data with all rules applied.
func (s *Sanitizer) Sanitize(data string) string {
	if s.Passthrough() {
		return data
	}
	s.buf = s.Append(s.buf[:0], data)
	return string(s.buf)
}

// Append appends the sanitized form of data to dst.
func (s *Sanitizer) Append(dst []byte, data string) []byte {
	for _, r := range data {
		matched := false
		for _, rl := range s.rules {
			if matches(r, rl.filter) {
				dst = transform(dst, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			dst = utf8.AppendRune(dst, r)
		}
	}
	return dst
}

func matches(r rune, mask uint64) bool {
	for _, f := range filterOrder {
		if mask&f.flag != 0 && f.check(r) {
			return true
		}
	}
	return false
}

func transform(dst []byte, r rune, mask uint64) []byte {
	switch {
	case mask&TransformStrip != 0:
		return dst

	case mask&TransformHexEncode != 0:
		var rb [utf8.UTFMax]byte
		n := utf8.EncodeRune(rb[:], r)
		dst = append(dst, '<')
		dst = hex.AppendEncode(dst, rb[:n])
		return append(dst, '>')

	case mask&TransformEscape != 0:
		switch r {
		case '\n':
			return append(dst, '\\', 'n')
		case '\r':
			return append(dst, '\\', 'r')
		case '\t':
			return append(dst, '\\', 't')
		case '\b':
			return append(dst, '\\', 'b')
		case '\f':
			return append(dst, '\\', 'f')
		}
		if r < 0x10000 {
			dst = append(dst, '\\', 'u')
			return appendHex4(dst, uint16(r))
		}
		return utf8.AppendRune(dst, r)
	}
	return utf8.AppendRune(dst, r)
}

const hexDigits = "0123456789abcdef"

func appendHex4(dst []byte, v uint16) []byte {
	return append(dst, hexDigits[v>>12&0xF], hexDigits[v>>8&0xF], hexDigits[v>>4&0xF], hexDigits[v&0xF])
}
