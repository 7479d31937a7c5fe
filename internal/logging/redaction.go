package logging

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Redacted replaces masked values.
const Redacted = "***REDACTED***"

var (
	passwordPattern   = regexp.MustCompile(`(?i)(password[=:]\s*)([^\s"',}]+)`)
	bearerPattern     = regexp.MustCompile(`(?i)(Bearer\s+)([A-Za-z0-9\-_.]{20,})`)
	credentialsInURL  = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@`)
	secretEnvPattern  = regexp.MustCompile(`(?i)([A-Z_]*SECRET[A-Z_]*[=:]\s*)([^\s"',}]+)`)
	sensitiveKeyParts = []string{"password", "secret", "token", "key", "credential", "auth"}
)

// RedactString masks credentials embedded in free-form text.
func RedactString(s string) string {
	if s == "" {
		return s
	}
	s = passwordPattern.ReplaceAllString(s, "${1}"+Redacted)
	s = bearerPattern.ReplaceAllString(s, "${1}"+Redacted)
	s = credentialsInURL.ReplaceAllString(s, "://"+Redacted+"@")
	s = secretEnvPattern.ReplaceAllString(s, "${1}"+Redacted)
	return s
}

// IsSensitiveKey reports whether a field name looks like it carries a secret.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// RedactFields masks values under sensitive keys and scrubs the rest.
func RedactFields(fields map[string]string) map[string]string {
	if fields == nil {
		return nil
	}
	redacted := make(map[string]string, len(fields))
	for k, v := range fields {
		if IsSensitiveKey(k) {
			redacted[k] = Redacted
			continue
		}
		redacted[k] = RedactString(v)
	}
	return redacted
}

// Fields converts a string map into zap fields after redaction.
func Fields(fields map[string]string) []zap.Field {
	redacted := RedactFields(fields)
	out := make([]zap.Field, 0, len(redacted))
	for k, v := range redacted {
		out = append(out, zap.String(k, v))
	}
	return out
}
