package encoder

import (
	"crypto/subtle"
	"strings"
)

// PlaintextEncoder stores credentials as-is and verifies by constant-time
// comparison.  It exists for tests and for legacy data migrations — never
// use it for real credentials.
//
// With ignoreCase enabled, both sides are lower-cased before comparison.
type PlaintextEncoder struct {
	ignoreCase bool
}

// NewPlaintextEncoder constructs a PlaintextEncoder.
func NewPlaintextEncoder(ignoreCase bool) *PlaintextEncoder {
	return &PlaintextEncoder{ignoreCase: ignoreCase}
}

// IgnoreCase reports whether comparisons are case-insensitive.
func (e *PlaintextEncoder) IgnoreCase() bool { return e.ignoreCase }

// Hash returns raw unchanged.
func (e *PlaintextEncoder) Hash(raw string) (string, error) {
	if len(raw) > MaxCredentialLength {
		return "", ErrCredentialTooLong
	}
	return raw, nil
}

// Verify compares raw against encoded in constant time.
func (e *PlaintextEncoder) Verify(raw, encoded string) (bool, error) {
	if len(raw) > MaxCredentialLength {
		return false, nil
	}
	if e.ignoreCase {
		raw = strings.ToLower(raw)
		encoded = strings.ToLower(encoded)
	}
	return subtle.ConstantTimeCompare([]byte(raw), []byte(encoded)) == 1, nil
}
