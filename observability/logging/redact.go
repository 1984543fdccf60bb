package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces credential material in log output.
const RedactedValue = "[REDACTED]"

// sensitiveKeys names the config and env fields that must never reach the
// log stream verbatim: the RPC bearer token, database DSNs (which may embed
// passwords), and OTLP auth headers.
var sensitiveKeys = map[string]struct{}{
	"token":      {},
	"auth_token": {},
	"dsn":        {},
	"password":   {},
	"secret":     {},
	"headers":    {},
}

// IsSensitive reports whether a log key carries credential material. Suffix
// matching catches derived keys like rpc_token without enumerating them.
func IsSensitive(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if _, ok := sensitiveKeys[normalized]; ok {
		return true
	}
	return strings.HasSuffix(normalized, "_token") || strings.HasSuffix(normalized, "_secret")
}

// MaskValue returns the redacted placeholder for non-empty values. Empty
// values pass through so an absent secret stays visibly absent.
func MaskValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	return RedactedValue
}

// MaskField builds a slog.Attr whose value is redacted when the key names
// credential material.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || !IsSensitive(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}
