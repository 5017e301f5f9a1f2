package encoder

import "errors"

// Sentinel errors returned by the encoder registry and the built-in encoders.
//
// Use [errors.Is] for comparisons:
//
//	enc, err := reg.Resolve(user)
//	if errors.Is(err, encoder.ErrNoEncoderConfigured) {
//	    // the registry has no entry matching this user's type
//	}
var (
	// ErrUnknownEncoderName is returned by [Registry.Resolve] when an entity
	// declares a preferred encoder name (via [EncoderAware]) that is not a
	// key of the registry.  This is a deployment-time misconfiguration, not
	// a transient condition; it is never retried internally.
	ErrUnknownEncoderName = errors.New("encoder: unknown encoder name")

	// ErrNoEncoderConfigured is returned by [Registry.Resolve] when neither
	// the explicit-name tier nor the type scan produced a match for the
	// entity.  The error message carries the entity descriptor (runtime type
	// for instances, the literal identifier for bare names).
	ErrNoEncoderConfigured = errors.New("encoder: no encoder configured")

	// ErrInvalidSpec is returned when a declarative [Spec] cannot be turned
	// into an encoder: a required field is missing, the kind is not in the
	// constructor table, or the arguments do not match the constructor's
	// arity or types.  The error message echoes the offending spec.
	ErrInvalidSpec = errors.New("encoder: invalid encoder spec")

	// ErrInvalidEntry is returned by [New] when a registry [Entry] is
	// malformed (no name or type, both or neither of Encoder/Spec set, or a
	// duplicate name).
	ErrInvalidEntry = errors.New("encoder: invalid registry entry")

	// ErrInvalidOption is returned by an encoder constructor when a
	// parameter value falls outside the allowed range (e.g., a bcrypt cost
	// below 4 or above 31).
	ErrInvalidOption = errors.New("encoder: invalid option value")

	// ErrInvalidHash is returned by Verify when the encoded hash string has
	// an unrecognised format, missing fields, or invalid encoding.
	ErrInvalidHash = errors.New("encoder: invalid or unrecognised hash string")

	// ErrAlgorithmMismatch is returned by Verify when the encoded hash was
	// produced by a different algorithm than the one implemented by the
	// encoder it was handed to.
	ErrAlgorithmMismatch = errors.New("encoder: hash was produced by a different algorithm")

	// ErrUnsupportedAlgorithm is returned by the message-digest and PBKDF2
	// encoders when their configured digest name is not provided by the
	// underlying hashing primitives.  The check is deferred to Hash/Verify
	// so that a spec naming an unknown digest still constructs.
	ErrUnsupportedAlgorithm = errors.New("encoder: unsupported digest algorithm")

	// ErrCredentialTooLong is returned by Hash when the raw credential
	// exceeds [MaxCredentialLength].  Verify treats an over-long credential
	// as a plain mismatch instead.
	ErrCredentialTooLong = errors.New("encoder: credential exceeds maximum length")
)
