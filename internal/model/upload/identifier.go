package upload

import (
	"regexp"
	"strings"
)

// MaxImageBytes is the hard cap imgbb enforces on uploads. It applies to the
// incoming file and to the converted PNG alike.
const MaxImageBytes = 32 << 20

// identifierPattern accepts letters, digits, underscore and hyphen, 2 to 64
// characters. Path separators and extension dots never pass.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,64}$`)

// SanitizeIdentifier trims the raw text and reports whether it is usable as a
// remote filename stem.
func SanitizeIdentifier(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	if !identifierPattern.MatchString(id) {
		return "", false
	}
	return id, true
}
