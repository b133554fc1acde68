package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDirective(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantType  DirectiveType
		wantArg   string
		wantClean string
	}{
		{
			name:      "no directive",
			raw:       "The stairs are in Yotsuya, near the station!",
			wantType:  DirectiveNone,
			wantClean: "The stairs are in Yotsuya, near the station!",
		},
		{
			name:      "navigate tag",
			raw:       "Let me show you! [NAVIGATE:Suga Shrine] It's beautiful at sunset.",
			wantType:  DirectiveNavigate,
			wantArg:   "Suga Shrine",
			wantClean: "Let me show you! It's beautiful at sunset.",
		},
		{
			name:      "filter tag",
			raw:       "Here are all the spots! [FILTER:Your Name]",
			wantType:  DirectiveFilter,
			wantArg:   "Your Name",
			wantClean: "Here are all the spots!",
		},
		{
			name:      "navigate wins over filter",
			raw:       "[FILTER:Your Name] Actually, go here: [NAVIGATE:Suga Shrine]",
			wantType:  DirectiveNavigate,
			wantArg:   "Suga Shrine",
			wantClean: "Actually, go here:",
		},
		{
			name:      "duplicate tags all stripped",
			raw:       "[NAVIGATE:A] and [NAVIGATE:B] too",
			wantType:  DirectiveNavigate,
			wantArg:   "A",
			wantClean: "and too",
		},
		{
			name:      "whitespace-only argument is no directive",
			raw:       "Hmm [NAVIGATE:   ] not sure",
			wantType:  DirectiveNone,
			wantClean: "Hmm not sure",
		},
		{
			name:      "malformed tag left alone",
			raw:       "What about [NAVIGATE:missing bracket",
			wantType:  DirectiveNone,
			wantClean: "What about [NAVIGATE:missing bracket",
		},
		{
			name:      "argument trimmed",
			raw:       "[FILTER:  Higurashi  ]",
			wantType:  DirectiveFilter,
			wantArg:   "Higurashi",
			wantClean: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, clean := ExtractDirective(tc.raw)
			assert.Equal(t, tc.wantType, d.Type)
			assert.Equal(t, tc.wantArg, d.Arg)
			assert.Equal(t, tc.wantClean, clean)
		})
	}
}

func TestChatRequestValidate(t *testing.T) {
	req := ChatRequest{Message: "hello"}
	assert.Error(t, req.Validate(), "session id required")
}
