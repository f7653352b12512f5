package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicies(t *testing.T) {
	tests := []struct {
		name   string
		policy PolicyPreset
		input  string
		want   string
	}{
		{"raw keeps newline", PolicyRaw, "a\nb", "a\nb"},
		{"txt hex-encodes newline", PolicyTxt, "a\nb", "a<0a>b"},
		{"txt keeps multibyte printable", PolicyTxt, "Hello │ 世界", "Hello │ 世界"},
		{"txt encodes multibyte control", PolicyTxt, "line1\u0085line2", "line1<c285>line2"},
		{"escape newline and tab", PolicyEscape, "a\n\tb", `a\n\tb`},
		{"escape nul", PolicyEscape, "x\x00y", `x\u0000y`},
		{"unknown policy is passthrough", PolicyPreset("nope"), "a\nb", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.policy)
			assert.Equal(t, tt.want, s.Sanitize(tt.input))
		})
	}
}

func TestPassthrough(t *testing.T) {
	assert.True(t, New(PolicyRaw).Passthrough())
	assert.False(t, New(PolicyTxt).Passthrough())
}

func TestCustomRuleOrder(t *testing.T) {
	// Strip line breaks first, hex-encode any other non-printable
	s := New(PolicyRaw).
		Rule(FilterLineBreak, TransformStrip).
		Rule(FilterNonPrintable, TransformHexEncode)

	assert.Equal(t, "ab<07>c", s.Sanitize("a\r\nb\x07c"))
}

func TestAppendReusesBuffer(t *testing.T) {
	s := New(PolicyTxt)
	dst := []byte("prefix:")
	dst = s.Append(dst, "x\x01")
	assert.Equal(t, "prefix:x<01>", string(dst))
}
