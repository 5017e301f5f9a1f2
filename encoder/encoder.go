package encoder

import "strings"

// MaxCredentialLength is the maximum accepted length, in bytes, of a raw
// credential.  Hashing arbitrarily long input is a denial-of-service vector
// (an attacker submits megabyte-sized "passwords" to burn CPU), so every
// built-in encoder rejects anything longer: Hash returns
// [ErrCredentialTooLong] and Verify reports a plain mismatch.
const MaxCredentialLength = 4096

// Kind identifiers for the built-in encoder constructors.  A [Spec] names
// one of these in its Class field; presets expand to them.
const (
	// KindPlaintext selects [PlaintextEncoder].
	KindPlaintext = "plaintext"
	// KindPbkdf2 selects [Pbkdf2Encoder].
	KindPbkdf2 = "pbkdf2"
	// KindBCrypt selects [BCryptEncoder].
	KindBCrypt = "bcrypt"
	// KindArgon2i selects [Argon2iEncoder].
	KindArgon2i = "argon2i"
	// KindArgon2id selects [Argon2idEncoder].  Available as a constructor
	// kind only; it is deliberately not a preset, so unrecognised algorithm
	// names keep falling through to the message-digest preset.
	KindArgon2id = "argon2id"
	// KindMessageDigest selects [MessageDigestEncoder], the target of the
	// fallback preset.
	KindMessageDigest = "message_digest"
)

// PasswordEncoder is the strategy capability every realized registry entry
// exposes.  It is the Go equivalent of Symfony's PasswordEncoderInterface.
//
// All implementations must be safe for concurrent use by multiple
// goroutines; the built-in encoders are immutable after construction.
type PasswordEncoder interface {
	// Hash encodes a raw credential and returns the encoded hash string.
	// Salting encoders generate a fresh cryptographic salt per call and
	// embed it (with their parameters) in the output, so two calls with the
	// same credential produce different strings that both verify.
	Hash(raw string) (string, error)

	// Verify reports whether raw matches the previously encoded hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or
	// (false, err) if the hash string is structurally invalid or was
	// produced by a different algorithm.
	//
	// Comparison is performed in constant time to prevent timing attacks.
	Verify(raw, encoded string) (bool, error)
}

// EncoderAware is the optional entity capability for picking an encoder by
// name, the equivalent of Symfony's EncoderAwareInterface.  An entity that
// implements it and returns a non-empty name short-circuits type matching:
// the name must be a registry key, otherwise [Registry.Resolve] fails with
// [ErrUnknownEncoderName].  Returning "" means "no preference" and falls
// back to the type scan.
type EncoderAware interface {
	PreferredEncoderName() string
}

// DetectEncoder inspects an encoded hash string and returns the Kind of the
// built-in encoder that produced it.  It is a best-effort heuristic based on
// the hash prefix and does not verify the hash itself; useful for auditing
// and migration tooling.
//
// The second return value is false when the format is not recognised.
func DetectEncoder(encoded string) (string, bool) {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return KindArgon2id, true
	case strings.HasPrefix(encoded, "$argon2i$"):
		return KindArgon2i, true
	// bcrypt hashes start with $2a$, $2b$, or $2y$
	case strings.HasPrefix(encoded, "$2a$"),
		strings.HasPrefix(encoded, "$2b$"),
		strings.HasPrefix(encoded, "$2y$"):
		return KindBCrypt, true
	case strings.HasPrefix(encoded, "$pbkdf2-"):
		return KindPbkdf2, true
	case strings.HasPrefix(encoded, "$digest-"):
		return KindMessageDigest, true
	default:
		return "", false
	}
}
