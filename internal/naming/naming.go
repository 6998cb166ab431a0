// Package naming derives the identifiers every generator agrees on: the
// component enable flag, the sanitized upper-case component token and the
// lower-case variant slug.
package naming

import (
	"strings"
)

// EnablePrefix namespaces every component enable flag.
const EnablePrefix = "PORIS_ENABLE_"

// FallbackUpper is used when a name sanitizes to nothing.
const FallbackUpper = "COMPONENT"

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// UpperToken upper-cases s, maps every non-alphanumeric rune to '_',
// collapses runs of '_' and trims them from both ends. The result may be
// empty.
func UpperToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true
	for _, r := range s {
		if isAlnum(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.ToUpper(strings.TrimRight(b.String(), "_"))
}

// UpperSanitized is UpperToken with FallbackUpper for empty results.
func UpperSanitized(s string) string {
	if u := UpperToken(s); u != "" {
		return u
	}
	return FallbackUpper
}

// EnableFlag returns PORIS_ENABLE_<TOKEN> for a component, or "" when the
// component name has no alphanumeric content.
func EnableFlag(component string) string {
	u := UpperToken(component)
	if u == "" {
		return ""
	}
	return EnablePrefix + u
}

// Slug lower-cases s and drops everything that is not [a-z0-9].
// "S3WifiLCD" becomes "s3wifilcd".
func Slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildDir is the per-variant build directory referenced by the IDE
// configuration.
func BuildDir(variantID string) string {
	return "./build_" + Slug(variantID)
}
