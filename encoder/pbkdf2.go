package encoder

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const pbkdf2SaltLength = 16

// Pbkdf2Encoder hashes credentials with PBKDF2 over a configurable digest.
//
// Output is a self-contained string carrying the digest name, iteration
// count, key length, and salt:
//
//	$pbkdf2-sha512$i=1000,l=40$<salt_base64>$<key>
//
// encodeAsBase64 selects how the derived key itself is written: unpadded
// base64 (the default) or lowercase hex.
//
// The digest name is validated lazily, at Hash/Verify time, so a spec naming
// an unknown digest still constructs; see [ErrUnsupportedAlgorithm].
//
// Pbkdf2Encoder is immutable after construction and safe for concurrent use.
type Pbkdf2Encoder struct {
	algorithm  string
	base64     bool
	iterations int
	keyLength  int
}

// NewPbkdf2Encoder constructs a Pbkdf2Encoder.  Returns [ErrInvalidOption]
// when iterations or keyLength is not positive.
func NewPbkdf2Encoder(algorithm string, encodeAsBase64 bool, iterations, keyLength int) (*Pbkdf2Encoder, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("%w: pbkdf2 iterations must be ≥ 1, got %d", ErrInvalidOption, iterations)
	}
	if keyLength < 1 {
		return nil, fmt.Errorf("%w: pbkdf2 key_length must be ≥ 1, got %d", ErrInvalidOption, keyLength)
	}
	return &Pbkdf2Encoder{
		algorithm:  algorithm,
		base64:     encodeAsBase64,
		iterations: iterations,
		keyLength:  keyLength,
	}, nil
}

// Algorithm returns the configured digest name.
func (e *Pbkdf2Encoder) Algorithm() string { return e.algorithm }

// Iterations returns the configured iteration count.
func (e *Pbkdf2Encoder) Iterations() int { return e.iterations }

// KeyLength returns the configured derived-key length in bytes.
func (e *Pbkdf2Encoder) KeyLength() int { return e.keyLength }

// Hash derives a key from raw with a fresh random salt and returns the
// self-contained hash string.
func (e *Pbkdf2Encoder) Hash(raw string) (string, error) {
	if len(raw) > MaxCredentialLength {
		return "", ErrCredentialTooLong
	}
	digest, err := digestFunc(e.algorithm)
	if err != nil {
		return "", err
	}
	salt, err := randomSalt(pbkdf2SaltLength)
	if err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(raw), salt, e.iterations, e.keyLength, digest)
	return fmt.Sprintf("$pbkdf2-%s$i=%d,l=%d$%s$%s",
		e.algorithm, e.iterations, e.keyLength,
		base64.RawStdEncoding.EncodeToString(salt),
		e.encodeKey(key),
	), nil
}

// Verify re-derives the key using the digest, iteration count, and salt
// embedded in encoded and compares in constant time.
func (e *Pbkdf2Encoder) Verify(raw, encoded string) (bool, error) {
	if len(raw) > MaxCredentialLength {
		return false, nil
	}
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" || !strings.HasPrefix(parts[1], "pbkdf2-") {
		return false, fmt.Errorf("%w: not a pbkdf2 hash string", ErrInvalidHash)
	}
	algorithm := strings.TrimPrefix(parts[1], "pbkdf2-")
	digest, err := digestFunc(algorithm)
	if err != nil {
		return false, err
	}

	var iterations, keyLength int
	if _, err := fmt.Sscanf(parts[2], "i=%d,l=%d", &iterations, &keyLength); err != nil {
		return false, fmt.Errorf("%w: bad parameter segment %q", ErrInvalidHash, parts[2])
	}
	if iterations < 1 || keyLength < 1 {
		return false, fmt.Errorf("%w: non-positive pbkdf2 parameters in %q", ErrInvalidHash, parts[2])
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, fmt.Errorf("%w: invalid salt base64: %v", ErrInvalidHash, err)
	}
	key, err := e.decodeKey(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: invalid key encoding: %v", ErrInvalidHash, err)
	}

	computed := pbkdf2.Key([]byte(raw), salt, iterations, keyLength, digest)
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

func (e *Pbkdf2Encoder) encodeKey(key []byte) string {
	if e.base64 {
		return base64.RawStdEncoding.EncodeToString(key)
	}
	return hex.EncodeToString(key)
}

func (e *Pbkdf2Encoder) decodeKey(s string) ([]byte, error) {
	if e.base64 {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return hex.DecodeString(s)
}
