// Package redact provides utilities for redacting sensitive information from strings
// before they are logged. It keeps connection credentials, signing secrets,
// bearer tokens, and data file locations out of log output.
package redact

import (
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedStackTracePlaceholder = "[STACK_TRACE_REDACTED]"
)

// rule pairs a pattern with the placeholder that replaces its matches.
type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules are applied in order.
var rules = []rule{
	// Stack trace fragments. First, so the paths inside them do not break the match
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), RedactedStackTracePlaceholder},

	// Database and cache connection strings with user info
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|rediss?|file)://[^@\s]+@`), RedactedCredentialPlaceholder},

	// Credentials and secrets in key=value or key: value form
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*['"]?[^'"&\s]+`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)(jwt_secret|api[_-]?key|secret)\s*[=:]\s*['"]?[^'"&\s]+`), RedactedKeyPlaceholder},

	// JWT token pattern - three base64url segments, header and claims starting with {"
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), RedactedJWTPlaceholder},

	// File paths
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), RedactedPathPlaceholder},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
