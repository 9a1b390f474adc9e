// Package invitecode generates the short shared secrets that let a second
// party attach to a service.
//
// Codes are 8 characters drawn uniformly from a lowercase alphanumeric
// alphabet (36^8 combinations) using crypto/rand. Generation does not check
// for collisions; the services collection enforces uniqueness with an index
// and callers regenerate on a duplicate-key insert.
package invitecode

import (
	"crypto/rand"
	"fmt"
)

const (
	// Alphabet is the fixed symbol set codes are drawn from.
	Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// Length is the number of symbols in a code.
	Length = 8
)

// maxUnbiased is the largest byte value usable without modulo bias:
// the greatest multiple of len(Alphabet) that fits in a byte.
const maxUnbiased = 256 / len(Alphabet) * len(Alphabet)

// Generate returns a fresh invite code. Bytes outside the unbiased range
// are rejected so every symbol is drawn uniformly.
func Generate() (string, error) {
	out := make([]byte, 0, Length)
	buf := make([]byte, Length*2)
	for len(out) < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("invitecode: read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == Length {
				break
			}
		}
	}
	return string(out), nil
}

// Valid reports whether a string has the shape of an invite code. It is a
// cheap pre-check before hitting the database on a join attempt.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
