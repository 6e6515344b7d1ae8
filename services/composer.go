package services

import (
	"strings"
)

// FormatTemplate replaces every {{key}} placeholder that has an entry in
// vars. Placeholders without a matching entry are left verbatim so a typo in
// a tenant template degrades visibly instead of erroring.
func FormatTemplate(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// ComposedMessage is one rendered subject+body pair ready for dispatch
type ComposedMessage struct {
	Subject string
	Body    string
}

// ComposeMessage renders a stage's subject and message templates with the
// given variables.
func ComposeMessage(subjectTemplate, messageTemplate string, vars map[string]string) ComposedMessage {
	return ComposedMessage{
		Subject: FormatTemplate(subjectTemplate, vars),
		Body:    FormatTemplate(messageTemplate, vars),
	}
}
