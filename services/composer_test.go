package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTemplate_ReplacesKnownVariables(t *testing.T) {
	out := FormatTemplate("Hi {{customerName}}", map[string]string{"customerName": "Ann"})
	assert.Equal(t, "Hi Ann", out)
}

func TestFormatTemplate_LeavesUnknownPlaceholders(t *testing.T) {
	out := FormatTemplate("Hi {{missing}}", map[string]string{})
	assert.Equal(t, "Hi {{missing}}", out)
}

func TestFormatTemplate_ReplacesEveryOccurrence(t *testing.T) {
	out := FormatTemplate("{{name}} and {{name}} again", map[string]string{"name": "Bob"})
	assert.Equal(t, "Bob and Bob again", out)
}

func TestFormatTemplate_MixedKnownAndUnknown(t *testing.T) {
	out := FormatTemplate("{{customerName}} review {{companyName}} at {{reviewLink}}", map[string]string{
		"customerName": "Ann",
		"companyName":  "Acme Plumbing",
	})
	assert.Equal(t, "Ann review Acme Plumbing at {{reviewLink}}", out)
}

func TestComposeMessage(t *testing.T) {
	msg := ComposeMessage(
		"How was it, {{customerName}}?",
		"Tell {{companyName}}: {{reviewLink}}",
		map[string]string{
			"customerName": "Ann",
			"companyName":  "Acme Plumbing",
			"reviewLink":   "http://example.com/review/abc",
		},
	)

	assert.Equal(t, "How was it, Ann?", msg.Subject)
	assert.Equal(t, "Tell Acme Plumbing: http://example.com/review/abc", msg.Body)
}
