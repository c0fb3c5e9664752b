package service

import (
	"regexp"
	"strings"

	cryptoDomain "github.com/rentaldesk/searchsync/internal/crypto/domain"
)

var hexSegment = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// IsEncrypted reports whether value has the EncryptedField shape: exactly one
// separator with a non-empty hex segment on each side.
//
// This is a shape check, not a tag. Plaintext such as "ab:cd" or "cafe:babe" is
// reported as encrypted; decryption of such values fails and falls back to the
// original string, which Open reports as StatusUndecryptable.
func IsEncrypted(value string) bool {
	ivHex, cipherHex, ok := splitEnvelope(value)
	if !ok {
		return false
	}
	return isHex(ivHex) && isHex(cipherHex)
}

func splitEnvelope(value string) (string, string, bool) {
	if strings.Count(value, cryptoDomain.EnvelopeSeparator) != 1 {
		return "", "", false
	}
	return strings.Cut(value, cryptoDomain.EnvelopeSeparator)
}

func isHex(s string) bool {
	return hexSegment.MatchString(s)
}
