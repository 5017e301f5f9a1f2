package encoder

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BCryptEncoder hashes credentials with bcrypt.
//
// Bcrypt internally generates and stores a 128-bit random salt, so the
// output string is fully self-contained.  Note that bcrypt only considers
// the first 72 bytes of input; prefer the Argon2 encoders for new systems.
//
// BCryptEncoder is immutable after construction and safe for concurrent use.
type BCryptEncoder struct {
	cost int
}

// NewBCryptEncoder constructs a BCryptEncoder with the given work factor.
// Returns [ErrInvalidOption] if cost is outside [bcrypt.MinCost, bcrypt.MaxCost].
func NewBCryptEncoder(cost int) (*BCryptEncoder, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d must be in [%d, %d]",
			ErrInvalidOption, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BCryptEncoder{cost: cost}, nil
}

// Cost returns the configured work factor.
func (e *BCryptEncoder) Cost() int { return e.cost }

// Hash encodes raw with bcrypt and returns the Modular Crypt Format string
// (e.g., "$2a$13$...").
func (e *BCryptEncoder) Hash(raw string) (string, error) {
	if len(raw) > MaxCredentialLength {
		return "", ErrCredentialTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), e.cost)
	if err != nil {
		return "", fmt.Errorf("encoder: bcrypt: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether raw matches the bcrypt-encoded hash.
// Returns (false, nil) on a plain mismatch.
func (e *BCryptEncoder) Verify(raw, encoded string) (bool, error) {
	if len(raw) > MaxCredentialLength {
		return false, nil
	}
	if kind, ok := DetectEncoder(encoded); !ok || kind != KindBCrypt {
		return false, fmt.Errorf("%w: hash does not appear to be bcrypt", ErrAlgorithmMismatch)
	}
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(raw))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return true, nil
}
