// Package invitecode produces the short codes users type to join a group.
package invitecode

import (
	"crypto/rand"
	"strings"
)

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length of every generated code.
const Length = 8

// Generate returns a random uppercase alphanumeric code. Uniqueness across
// groups is not guaranteed here; callers must retry against the invite_code
// unique index until an unused code is found.
func Generate() (string, error) {
	bytes := make([]byte, Length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(Length)
	for _, v := range bytes {
		b.WriteByte(charset[int(v)%len(charset)])
	}
	return b.String(), nil
}

// Normalize uppercases a user-supplied code so lookups are case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
