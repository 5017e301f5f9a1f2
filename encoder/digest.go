package encoder

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

const digestSaltLength = 16

// digestFunc maps a digest name to its stdlib constructor.  Unknown names
// return [ErrUnsupportedAlgorithm].
func digestFunc(name string) (func() hash.Hash, error) {
	switch strings.ToLower(name) {
	case "sha512":
		return sha512.New, nil
	case "sha384":
		return sha512.New384, nil
	case "sha256":
		return sha256.New, nil
	case "sha224":
		return sha256.New224, nil
	case "sha1":
		return sha1.New, nil
	case "md5":
		return md5.New, nil
	}
	return nil, fmt.Errorf("%w: %q (supported: sha512, sha384, sha256, sha224, sha1, md5)",
		ErrUnsupportedAlgorithm, name)
}

// MessageDigestEncoder hashes credentials by iterating a plain message
// digest over the salted input.  It is the target of the fallback preset:
// any algorithm name without a dedicated preset row constructs one of these,
// carrying the literal name through.
//
// Output is a self-contained string:
//
//	$digest-sha256$i=5000$<salt_base64>$<out>
//
// encodeAsBase64 selects unpadded base64 or lowercase hex for the digest
// output.  As with [Pbkdf2Encoder], the algorithm name is validated lazily
// at Hash/Verify time, so an unrecognised name constructs fine and fails on
// first use with [ErrUnsupportedAlgorithm].
//
// Plain digests — even iterated — are far weaker than bcrypt or Argon2;
// this encoder exists for verifying legacy credential stores during
// migration, not for new hashes.
type MessageDigestEncoder struct {
	algorithm  string
	base64     bool
	iterations int
}

// NewMessageDigestEncoder constructs a MessageDigestEncoder.  Returns
// [ErrInvalidOption] when iterations is not positive.
func NewMessageDigestEncoder(algorithm string, encodeAsBase64 bool, iterations int) (*MessageDigestEncoder, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("%w: message_digest iterations must be ≥ 1, got %d", ErrInvalidOption, iterations)
	}
	return &MessageDigestEncoder{
		algorithm:  algorithm,
		base64:     encodeAsBase64,
		iterations: iterations,
	}, nil
}

// Algorithm returns the configured digest name (possibly unsupported; see
// the type comment).
func (e *MessageDigestEncoder) Algorithm() string { return e.algorithm }

// Iterations returns the configured iteration count.
func (e *MessageDigestEncoder) Iterations() int { return e.iterations }

// Hash digests raw with a fresh random salt and returns the self-contained
// hash string.
func (e *MessageDigestEncoder) Hash(raw string) (string, error) {
	if len(raw) > MaxCredentialLength {
		return "", ErrCredentialTooLong
	}
	newDigest, err := digestFunc(e.algorithm)
	if err != nil {
		return "", err
	}
	salt, err := randomSalt(digestSaltLength)
	if err != nil {
		return "", err
	}
	out := iterateDigest(newDigest, raw, salt, e.iterations)
	return fmt.Sprintf("$digest-%s$i=%d$%s$%s",
		e.algorithm, e.iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		e.encodeOut(out),
	), nil
}

// Verify recomputes the digest chain using the algorithm, iteration count,
// and salt embedded in encoded and compares in constant time.
func (e *MessageDigestEncoder) Verify(raw, encoded string) (bool, error) {
	if len(raw) > MaxCredentialLength {
		return false, nil
	}
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" || !strings.HasPrefix(parts[1], "digest-") {
		return false, fmt.Errorf("%w: not a message-digest hash string", ErrInvalidHash)
	}
	algorithm := strings.TrimPrefix(parts[1], "digest-")
	newDigest, err := digestFunc(algorithm)
	if err != nil {
		return false, err
	}

	var iterations int
	if _, err := fmt.Sscanf(parts[2], "i=%d", &iterations); err != nil || iterations < 1 {
		return false, fmt.Errorf("%w: bad iteration segment %q", ErrInvalidHash, parts[2])
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, fmt.Errorf("%w: invalid salt base64: %v", ErrInvalidHash, err)
	}
	want, err := e.decodeOut(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: invalid digest encoding: %v", ErrInvalidHash, err)
	}

	got := iterateDigest(newDigest, raw, salt, iterations)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// iterateDigest computes digest(raw‖salt), then re-digests the running
// value concatenated with the salted input for the remaining iterations.
func iterateDigest(newDigest func() hash.Hash, raw string, salt []byte, iterations int) []byte {
	salted := append([]byte(raw), salt...)

	h := newDigest()
	h.Write(salted)
	out := h.Sum(nil)
	for i := 1; i < iterations; i++ {
		h.Reset()
		h.Write(out)
		h.Write(salted)
		out = h.Sum(out[:0])
	}
	return out
}

func (e *MessageDigestEncoder) encodeOut(out []byte) string {
	if e.base64 {
		return base64.RawStdEncoding.EncodeToString(out)
	}
	return hex.EncodeToString(out)
}

func (e *MessageDigestEncoder) decodeOut(s string) ([]byte, error) {
	if e.base64 {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return hex.DecodeString(s)
}
