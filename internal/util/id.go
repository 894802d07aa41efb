package util

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}

// NewDraftID returns a lowercase canonical v4 UUID.
func NewDraftID() string {
	return uuid.NewString()
}

// ValidDraftID reports whether s is a canonical lowercase v4 UUID. Drafts
// are addressed straight from the URL, so anything else is rejected before
// it reaches storage.
func ValidDraftID(s string) bool {
	if len(s) != 36 || s != strings.ToLower(s) {
		return false
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return parsed.Version() == 4
}
