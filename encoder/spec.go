package encoder

import "fmt"

// Spec declaratively describes how to construct an encoder.  It is authored
// in one of two forms:
//
//   - normalized: Class names a constructor kind and Arguments carries its
//     positional arguments, e.g. {Class: "bcrypt", Arguments: []any{12}};
//   - preset: Algorithm names a shorthand that [Spec.Normalize] expands into
//     the normalized form, reading algorithm-specific named parameters from
//     Options, e.g. {Algorithm: "bcrypt", Options: map[string]any{"cost": 12}}.
//
// A Spec is read once during realization and never mutated; the same spec
// always normalizes to the same class and argument order.
type Spec struct {
	Class     string
	Arguments []any

	Algorithm string
	Options   map[string]any
}

// Constructor builds an encoder from ordered positional arguments.  The
// registry holds a table of constructors keyed by kind name, so specs never
// name Go types — the closed table replaces reflective instantiation.
type Constructor func(args []any) (PasswordEncoder, error)

// String renders the spec for diagnostics, echoing whichever form it was
// authored in.
func (s *Spec) String() string {
	if s == nil {
		return "<nil spec>"
	}
	if s.Algorithm != "" {
		return fmt.Sprintf("{algorithm: %q, options: %v}", s.Algorithm, s.Options)
	}
	return fmt.Sprintf("{class: %q, arguments: %v}", s.Class, s.Arguments)
}

// Preset defaults, matching the security component this package ports.
const (
	defaultPbkdf2Digest     = "sha512"
	defaultPbkdf2Iterations = 1000
	defaultPbkdf2KeyLength  = 40
	defaultBCryptCost       = 13
	defaultArgon2MemoryKiB  = 1024
	defaultArgon2TimeCost   = 2
	defaultArgon2Threads    = 2
	defaultDigestIterations = 5000
)

// Normalize expands the spec into its {class, arguments} form.
//
// When Algorithm is set, the preset table below applies; an algorithm name
// with no dedicated row falls through to the message-digest preset, passing
// the literal name as the first argument so any digest supported by the
// underlying primitive works without its own row.  Expansion is pure: the
// same algorithm and options always yield the same class and argument order.
//
//	plaintext  → plaintext(ignore_case=false)
//	pbkdf2     → pbkdf2(hash_algorithm="sha512", encode_as_base64=true, iterations=1000, key_length=40)
//	bcrypt     → bcrypt(cost=13)
//	argon2i    → argon2i(memory_cost=1024, time_cost=2, threads=2)
//	<other>    → message_digest(algorithm=<name>, encode_as_base64=true, iterations=5000)
//
// When Algorithm is empty the spec must already carry Class and Arguments;
// a missing field is an [ErrInvalidSpec] naming it.
func (s *Spec) Normalize() (class string, args []any, err error) {
	if s == nil {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidSpec, s.String())
	}

	if s.Algorithm != "" {
		return s.expandPreset()
	}

	if s.Class == "" {
		return "", nil, fmt.Errorf("%w: missing field \"class\" in %s", ErrInvalidSpec, s)
	}
	if s.Arguments == nil {
		return "", nil, fmt.Errorf("%w: missing field \"arguments\" in %s", ErrInvalidSpec, s)
	}
	return s.Class, s.Arguments, nil
}

func (s *Spec) expandPreset() (string, []any, error) {
	switch s.Algorithm {
	case KindPlaintext:
		ignoreCase, err := s.optBool("ignore_case", false)
		if err != nil {
			return "", nil, err
		}
		return KindPlaintext, []any{ignoreCase}, nil

	case KindPbkdf2:
		digest, err := s.optString("hash_algorithm", defaultPbkdf2Digest)
		if err != nil {
			return "", nil, err
		}
		base64, err := s.optBool("encode_as_base64", true)
		if err != nil {
			return "", nil, err
		}
		iterations, err := s.optInt("iterations", defaultPbkdf2Iterations)
		if err != nil {
			return "", nil, err
		}
		keyLength, err := s.optInt("key_length", defaultPbkdf2KeyLength)
		if err != nil {
			return "", nil, err
		}
		return KindPbkdf2, []any{digest, base64, iterations, keyLength}, nil

	case KindBCrypt:
		cost, err := s.optInt("cost", defaultBCryptCost)
		if err != nil {
			return "", nil, err
		}
		return KindBCrypt, []any{cost}, nil

	case KindArgon2i:
		memory, err := s.optInt("memory_cost", defaultArgon2MemoryKiB)
		if err != nil {
			return "", nil, err
		}
		time, err := s.optInt("time_cost", defaultArgon2TimeCost)
		if err != nil {
			return "", nil, err
		}
		threads, err := s.optInt("threads", defaultArgon2Threads)
		if err != nil {
			return "", nil, err
		}
		return KindArgon2i, []any{memory, time, threads}, nil

	default:
		// Fallback: treat the algorithm name as a generic message digest.
		base64, err := s.optBool("encode_as_base64", true)
		if err != nil {
			return "", nil, err
		}
		iterations, err := s.optInt("iterations", defaultDigestIterations)
		if err != nil {
			return "", nil, err
		}
		return KindMessageDigest, []any{s.Algorithm, base64, iterations}, nil
	}
}

// construct normalizes the spec and runs the matching constructor from the
// table.  Constructor failures (wrong arity, wrong types, out-of-range
// values) all surface wrapping [ErrInvalidSpec] with the spec echoed.
func (s *Spec) construct(table map[string]Constructor) (PasswordEncoder, error) {
	class, args, err := s.Normalize()
	if err != nil {
		return nil, err
	}
	fn, ok := table[class]
	if !ok {
		return nil, fmt.Errorf("%w: no constructor for class %q in %s", ErrInvalidSpec, class, s)
	}
	enc, err := fn(args)
	if err != nil {
		return nil, fmt.Errorf("%w: constructing %s: %w", ErrInvalidSpec, s, err)
	}
	return enc, nil
}

// defaultConstructors returns the built-in kind → constructor table.  Each
// constructor checks arity and argument types itself, so errors name the
// exact offending position.
func defaultConstructors() map[string]Constructor {
	return map[string]Constructor{
		KindPlaintext: func(args []any) (PasswordEncoder, error) {
			if err := wantArgs(KindPlaintext, args, 1); err != nil {
				return nil, err
			}
			ignoreCase, err := argBool(KindPlaintext, args, 0)
			if err != nil {
				return nil, err
			}
			return NewPlaintextEncoder(ignoreCase), nil
		},
		KindPbkdf2: func(args []any) (PasswordEncoder, error) {
			if err := wantArgs(KindPbkdf2, args, 4); err != nil {
				return nil, err
			}
			digest, err := argString(KindPbkdf2, args, 0)
			if err != nil {
				return nil, err
			}
			base64, err := argBool(KindPbkdf2, args, 1)
			if err != nil {
				return nil, err
			}
			iterations, err := argInt(KindPbkdf2, args, 2)
			if err != nil {
				return nil, err
			}
			keyLength, err := argInt(KindPbkdf2, args, 3)
			if err != nil {
				return nil, err
			}
			return NewPbkdf2Encoder(digest, base64, iterations, keyLength)
		},
		KindBCrypt: func(args []any) (PasswordEncoder, error) {
			if err := wantArgs(KindBCrypt, args, 1); err != nil {
				return nil, err
			}
			cost, err := argInt(KindBCrypt, args, 0)
			if err != nil {
				return nil, err
			}
			return NewBCryptEncoder(cost)
		},
		KindArgon2i: func(args []any) (PasswordEncoder, error) {
			memory, time, threads, err := argon2Args(KindArgon2i, args)
			if err != nil {
				return nil, err
			}
			return NewArgon2iEncoder(memory, time, threads)
		},
		KindArgon2id: func(args []any) (PasswordEncoder, error) {
			memory, time, threads, err := argon2Args(KindArgon2id, args)
			if err != nil {
				return nil, err
			}
			return NewArgon2idEncoder(memory, time, threads)
		},
		KindMessageDigest: func(args []any) (PasswordEncoder, error) {
			if err := wantArgs(KindMessageDigest, args, 3); err != nil {
				return nil, err
			}
			algorithm, err := argString(KindMessageDigest, args, 0)
			if err != nil {
				return nil, err
			}
			base64, err := argBool(KindMessageDigest, args, 1)
			if err != nil {
				return nil, err
			}
			iterations, err := argInt(KindMessageDigest, args, 2)
			if err != nil {
				return nil, err
			}
			return NewMessageDigestEncoder(algorithm, base64, iterations)
		},
	}
}

func argon2Args(kind string, args []any) (memory, time, threads int, err error) {
	if err = wantArgs(kind, args, 3); err != nil {
		return 0, 0, 0, err
	}
	if memory, err = argInt(kind, args, 0); err != nil {
		return 0, 0, 0, err
	}
	if time, err = argInt(kind, args, 1); err != nil {
		return 0, 0, 0, err
	}
	if threads, err = argInt(kind, args, 2); err != nil {
		return 0, 0, 0, err
	}
	return memory, time, threads, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Typed argument and option access
// ──────────────────────────────────────────────────────────────────────────────

func wantArgs(kind string, args []any, want int) error {
	if len(args) != want {
		return fmt.Errorf("%s takes %d arguments, got %d", kind, want, len(args))
	}
	return nil
}

func argString(kind string, args []any, i int) (string, error) {
	v, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%s argument %d must be a string, got %T", kind, i, args[i])
	}
	return v, nil
}

func argBool(kind string, args []any, i int) (bool, error) {
	v, ok := args[i].(bool)
	if !ok {
		return false, fmt.Errorf("%s argument %d must be a bool, got %T", kind, i, args[i])
	}
	return v, nil
}

// argInt accepts the integer shapes a materialized configuration typically
// carries: native ints, int64, and integral float64 (JSON numbers).
func argInt(kind string, args []any, i int) (int, error) {
	n, ok := asInt(args[i])
	if !ok {
		return 0, fmt.Errorf("%s argument %d must be an integer, got %v (%T)", kind, i, args[i], args[i])
	}
	return n, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func (s *Spec) optString(key, def string) (string, error) {
	v, ok := s.Options[key]
	if !ok {
		return def, nil
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: option %q must be a string in %s", ErrInvalidSpec, key, s)
	}
	return str, nil
}

func (s *Spec) optBool(key string, def bool) (bool, error) {
	v, ok := s.Options[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: option %q must be a bool in %s", ErrInvalidSpec, key, s)
	}
	return b, nil
}

func (s *Spec) optInt(key string, def int) (int, error) {
	v, ok := s.Options[key]
	if !ok {
		return def, nil
	}
	n, ok := asInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: option %q must be an integer in %s", ErrInvalidSpec, key, s)
	}
	return n, nil
}
