// Package logging provides log hygiene for values that arrive from links.
//
// Query parameters are attacker-controlled. Before they reach a log line they
// pass through SafeValue, which strips control characters (so a value cannot
// forge extra log lines), truncates long values, and redacts signatures and
// private key material. FilteringWriter applies the redaction patterns again
// at the file sink.
//
// Import rules:
//   - CAN import: internal/constants, std lib, zerolog
//   - MUST NOT import: any other internal package
package logging

import (
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/mrz1836/trustlink/internal/constants"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// truncationSuffix marks values cut at constants.MaxLoggedValueLength.
const truncationSuffix = "...(truncated)"

// sensitivePatterns match secrets that may appear inside free-form strings.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// Signature parameter inside a raw query or URL.
	regexp.MustCompile(`([?&]s=)[A-Za-z0-9_%-]{16,}(%3D|=)*`),

	// Private key armor.
	regexp.MustCompile(`-----BEGIN[A-Z ]*PRIVATE KEY-----[^-]*(-----END[A-Z ]*PRIVATE KEY-----)?`),

	// Bearer tokens in forwarded headers.
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/-]{20,}=*`),
}

// sensitiveFieldNames are field names whose values are always redacted.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	constants.ParamSignature,
	"signature",
	"private_key",
	"privatekey",
	"private-key",
	"authorization",
	"cookie",
}

// SensitiveDataHook flags log entries whose message carried sensitive content.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook. Messages cannot be rewritten from a hook, so
// the entry is only marked; FilteringWriter does the redaction.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces sensitive pattern matches with RedactedValue.
// A signature parameter keeps its key so the log still shows it was present.
func FilterSensitiveValue(value string) string {
	result := value
	for i, pattern := range sensitivePatterns {
		if i == 0 {
			result = pattern.ReplaceAllString(result, "${1}"+RedactedValue)
			continue
		}
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName reports whether a field's value must never be logged.
// "s" only matches exactly; longer names match by substring.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if lowerName == sensitive {
			return true
		}
		if len(sensitive) > 1 && strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// StripControl removes control and format characters, replacing line breaks
// and tabs with a single space.
func StripControl(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		default:
			return r
		}
	}, value)
}

// Truncate shortens value to at most constants.MaxLoggedValueLength runes.
func Truncate(value string) string {
	limit := constants.MaxLoggedValueLength
	if len(value) <= limit {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + truncationSuffix
}

// SafeValue returns a value that is safe to attach to a log field.
//
// Usage:
//
//	logger.Debug().Str("title", logging.SafeValue("title", title)).Msg("trusted fields")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		if value == "" {
			return ""
		}
		return RedactedValue
	}
	return Truncate(FilterSensitiveValue(StripControl(value)))
}

// FilteringWriter wraps an io.Writer and redacts sensitive patterns from
// everything written through it.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter that wraps the given writer.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports len(p) on success so callers do not
// see a short write when redaction changed the length.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
