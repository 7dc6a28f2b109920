package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue is the canonical placeholder used for sensitive fields in logs.
const RedactedValue = "[REDACTED]"

// Keys whose values MaskField passes through untouched.
var redactionAllowlist = map[string]struct{}{
	"service":    {},
	"env":        {},
	"message":    {},
	"severity":   {},
	"timestamp":  {},
	"error":      {},
	"reason":     {},
	"component":  {},
	"method":     {},
	"selector":   {},
	"height":     {},
	"status":     {},
	"request_id": {},
}

// Keys the handler masks even when a caller logs them with a plain slog.String.
var credentialKeys = map[string]struct{}{
	"authorization": {},
	"bearer":        {},
	"token":         {},
	"jwt":           {},
	"jwt_secret":    {},
	"secret":        {},
	"private_key":   {},
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func allowlisted(key string) bool {
	_, ok := redactionAllowlist[normalizeKey(key)]
	return ok
}

func isCredentialKey(key string) bool {
	_, ok := credentialKeys[normalizeKey(key)]
	return ok
}

// MaskField returns a slog.Attr that redacts the supplied value unless the key is
// explicitly allowlisted. The original key casing is preserved for readability.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || allowlisted(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}

// MaskCredential redacts an Authorization header value but keeps its scheme,
// so "Bearer abc" becomes "Bearer [REDACTED]".
func MaskCredential(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	scheme, _, ok := strings.Cut(trimmed, " ")
	if !ok {
		return RedactedValue
	}
	return scheme + " " + RedactedValue
}

// redactAttr is applied by the JSON handler to every attribute.
func redactAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindString || !isCredentialKey(attr.Key) {
		return attr
	}
	value := attr.Value.String()
	if value == "" || value == RedactedValue || strings.HasSuffix(value, " "+RedactedValue) {
		return attr
	}
	return slog.String(attr.Key, RedactedValue)
}
