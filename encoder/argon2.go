package encoder

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2KeyLength  = 32
	argon2SaltLength = 16
)

// argon2Encoder carries the shared state and logic of the two Argon2
// variants; the exported types pin the variant.
type argon2Encoder struct {
	variant string // "argon2i" or "argon2id"
	memory  uint32 // KiB
	time    uint32
	threads uint8
}

func newArgon2Encoder(variant string, memoryKiB, timeCost, threads int) (argon2Encoder, error) {
	if timeCost < 1 {
		return argon2Encoder{}, fmt.Errorf("%w: argon2 time_cost must be ≥ 1, got %d", ErrInvalidOption, timeCost)
	}
	if threads < 1 || threads > 255 {
		return argon2Encoder{}, fmt.Errorf("%w: argon2 threads must be in [1, 255], got %d", ErrInvalidOption, threads)
	}
	if memoryKiB < 8*threads {
		return argon2Encoder{}, fmt.Errorf("%w: argon2 memory_cost (%d KiB) must be ≥ 8×threads (%d KiB)",
			ErrInvalidOption, memoryKiB, 8*threads)
	}
	return argon2Encoder{
		variant: variant,
		memory:  uint32(memoryKiB),
		time:    uint32(timeCost),
		threads: uint8(threads),
	}, nil
}

// Parameters returns the configured memory cost (KiB), time cost, and
// degree of parallelism.
func (e *argon2Encoder) Parameters() (memoryKiB, timeCost uint32, threads uint8) {
	return e.memory, e.time, e.threads
}

func (e *argon2Encoder) key(raw string, salt []byte, time, memory uint32, threads uint8, keyLen uint32) []byte {
	if e.variant == KindArgon2id {
		return argon2.IDKey([]byte(raw), salt, time, memory, threads, keyLen)
	}
	return argon2.Key([]byte(raw), salt, time, memory, threads, keyLen)
}

func (e *argon2Encoder) hash(raw string) (string, error) {
	if len(raw) > MaxCredentialLength {
		return "", ErrCredentialTooLong
	}
	salt, err := randomSalt(argon2SaltLength)
	if err != nil {
		return "", err
	}
	key := e.key(raw, salt, e.time, e.memory, e.threads, argon2KeyLength)
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		e.variant, argon2.Version, e.memory, e.time, e.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// verify re-reads all parameters from the hash string itself, so hashes
// produced under an older configuration keep verifying after a tuning
// change.
func (e *argon2Encoder) verify(raw, encoded string) (bool, error) {
	if len(raw) > MaxCredentialLength {
		return false, nil
	}
	p, err := parseArgon2Hash(encoded)
	if err != nil {
		return false, err
	}
	if p.variant != e.variant {
		return false, fmt.Errorf("%w: hash is %s, not %s", ErrAlgorithmMismatch, p.variant, e.variant)
	}
	computed := e.key(raw, p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(computed, p.key) == 1, nil
}

// argon2Hash holds the components of a PHC-formatted Argon2 string:
//
//	$argon2i$v=19$m=1024,t=2,p=2$<salt_base64>$<key_base64>
type argon2Hash struct {
	variant string
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseArgon2Hash(encoded string) (*argon2Hash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("%w: expected 5-segment PHC string", ErrInvalidHash)
	}
	if parts[1] != KindArgon2i && parts[1] != KindArgon2id {
		return nil, fmt.Errorf("%w: unknown argon2 variant %q", ErrInvalidHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("%w: bad version segment %q", ErrInvalidHash, parts[2])
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported argon2 version %d", ErrInvalidHash, version)
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, fmt.Errorf("%w: bad parameter segment %q", ErrInvalidHash, parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid salt base64: %v", ErrInvalidHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid key base64: %v", ErrInvalidHash, err)
	}

	return &argon2Hash{
		variant: parts[1],
		memory:  memory,
		time:    time,
		threads: threads,
		salt:    salt,
		key:     key,
	}, nil
}

// randomSalt returns n cryptographically random bytes.
func randomSalt(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("encoder: failed to generate salt: %w", err)
	}
	return b, nil
}

// Argon2iEncoder hashes credentials with Argon2i.
//
// Argon2i uses data-independent memory access, resisting side-channel
// attacks; [Argon2idEncoder] is the better default for new systems.  Output
// is a self-contained PHC string.
//
// Argon2iEncoder is immutable after construction and safe for concurrent use.
type Argon2iEncoder struct {
	argon2Encoder
}

// NewArgon2iEncoder constructs an Argon2iEncoder.  memoryKiB is the memory
// cost in KiB; it must be at least 8×threads.  Returns [ErrInvalidOption]
// for out-of-range parameters.
func NewArgon2iEncoder(memoryKiB, timeCost, threads int) (*Argon2iEncoder, error) {
	inner, err := newArgon2Encoder(KindArgon2i, memoryKiB, timeCost, threads)
	if err != nil {
		return nil, err
	}
	return &Argon2iEncoder{inner}, nil
}

// Hash encodes raw with Argon2i using a fresh random salt.
func (e *Argon2iEncoder) Hash(raw string) (string, error) { return e.hash(raw) }

// Verify reports whether raw matches the Argon2i PHC hash.
func (e *Argon2iEncoder) Verify(raw, encoded string) (bool, error) { return e.verify(raw, encoded) }

// Argon2idEncoder hashes credentials with Argon2id, the RFC 9106
// recommendation for password hashing.  Output is a self-contained PHC
// string.
//
// Argon2idEncoder is immutable after construction and safe for concurrent use.
type Argon2idEncoder struct {
	argon2Encoder
}

// NewArgon2idEncoder constructs an Argon2idEncoder with the same parameter
// rules as [NewArgon2iEncoder].
func NewArgon2idEncoder(memoryKiB, timeCost, threads int) (*Argon2idEncoder, error) {
	inner, err := newArgon2Encoder(KindArgon2id, memoryKiB, timeCost, threads)
	if err != nil {
		return nil, err
	}
	return &Argon2idEncoder{inner}, nil
}

// Hash encodes raw with Argon2id using a fresh random salt.
func (e *Argon2idEncoder) Hash(raw string) (string, error) { return e.hash(raw) }

// Verify reports whether raw matches the Argon2id PHC hash.
func (e *Argon2idEncoder) Verify(raw, encoded string) (bool, error) { return e.verify(raw, encoded) }
