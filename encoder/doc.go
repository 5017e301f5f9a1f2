// Package encoder provides credential-encoder resolution modelled after
// Symfony's Security/Core/Encoder component.
//
// # Architecture
//
// The central abstraction is the [PasswordEncoder] interface (Hash/Verify),
// the strategy every hashing algorithm implements.  Six encoders ship with
// this package:
//
//   - [PlaintextEncoder] — stored as-is, constant-time compare (tests and migrations only)
//   - [BCryptEncoder] — bcrypt
//   - [Argon2iEncoder], [Argon2idEncoder] — Argon2 (PHC string output)
//   - [Pbkdf2Encoder] — PBKDF2 over a configurable digest
//   - [MessageDigestEncoder] — iterated plain digest, for legacy stores
//
// The [Registry] is the Go equivalent of Symfony's EncoderFactory.  It is
// built once, at startup, from an ordered list of entries mapping a selector
// key — a type or a type-name string — to either a pre-built encoder or a
// declarative [Spec].  [Registry.Resolve] then picks the encoder for an
// authenticated entity in two tiers: an explicit [EncoderAware] preference
// first, otherwise the first entry (in registration order) whose type the
// entity satisfies.  Specs are realized lazily on first use and memoized, so
// each key constructs its encoder at most once.
//
// # Quick start
//
//	reg, err := encoder.New([]encoder.Entry{
//	    {
//	        Type: encoder.TypeOf[acme.AdminUser](),
//	        Spec: &encoder.Spec{Algorithm: "bcrypt", Options: map[string]any{"cost": 12}},
//	    },
//	    {
//	        Type: encoder.TypeOf[acme.User](),
//	        Spec: &encoder.Spec{Algorithm: "argon2i"},
//	    },
//	})
//	if err != nil { log.Fatal(err) }
//
//	enc, err := reg.Resolve(user)           // first matching entry wins
//	ok, _ := enc.Verify(password, stored)
//
// Order the entries most-specific-first: the scan stops at the first match,
// so an entry for a general interface registered before a narrower one
// shadows it.
//
// # Declarative specs and presets
//
// A [Spec] either names a constructor kind with positional arguments
// ({class, arguments}) or a preset algorithm with named options
// ({algorithm, options}); see [Spec.Normalize] for the preset table.
// Algorithm names without a preset row fall through to the generic
// message-digest encoder, so "sha256" or "md5" work without dedicated
// configuration.  Unknown kinds, wrong arities, and wrong argument types
// surface as [ErrInvalidSpec] with the offending spec echoed — registry
// misconfiguration is a deployment defect and is never retried internally.
//
// # Thread safety
//
// The registry's key set is immutable after [New]; realization is guarded
// per entry, so concurrent resolves of the same key observe one shared
// instance and resolves of different keys never block each other.  All
// built-in encoders are immutable and safe for concurrent use.
package encoder
