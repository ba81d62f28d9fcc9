// Package ids generates and resolves the short IDs shown for tasks and projects.
package ids

import (
	"crypto/sha256"
	"encoding/base32"
	"time"

	internalstrings "github.com/amonks/pomo/internal/strings"
)

// DefaultLength is the standard length for generated IDs.
const DefaultLength = 8

// Generate creates a deterministic, lowercase base32 ID derived from input.
func Generate(input string, length int) string {
	hash := sha256.Sum256([]byte(input))
	encoded := base32.StdEncoding.EncodeToString(hash[:])
	if length <= 0 {
		return ""
	}
	if length > len(encoded) {
		length = len(encoded)
	}
	return internalstrings.NormalizeLowerTrimSpace(encoded[:length])
}

// ForEntity derives an ID for a named entity of the given kind created at createdAt.
func ForEntity(kind, name string, createdAt time.Time) string {
	return Generate(kind+":"+name+"@"+createdAt.Format(time.RFC3339Nano), DefaultLength)
}
