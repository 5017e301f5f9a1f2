package encoder

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

// Entry describes one registry slot at construction time.  Exactly one of
// Encoder (a pre-built strategy) or Spec (a declarative description realized
// on first use) must be set.
//
// Type, when non-nil, lets object entities match the entry through Go's
// "is-a" relation: an interface type matches any entity implementing it, a
// concrete type matches identical or assignable entities (a pointer to the
// concrete type counts).  Use [TypeOf] to capture interface types without an
// instance.
//
// Name is the selector key.  It defaults to Type.String() when omitted, and
// is what bare-name (legacy) callers and [EncoderAware] entities address.
type Entry struct {
	Name    string
	Type    reflect.Type
	Encoder PasswordEncoder
	Spec    *Spec
}

// TypeOf returns the [reflect.Type] of T without needing an instance.
// Unlike reflect.TypeOf on a value, it works for interface types:
//
//	encoder.TypeOf[acme.AdminUser]()
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// entry is the mutable registry slot.  spec and enc transition exactly once
// (unrealized → realized) under mu; a failed construction leaves the slot
// unrealized so a later resolve can retry.
type entry struct {
	name string
	typ  reflect.Type

	mu   sync.RWMutex
	enc  PasswordEncoder
	spec *Spec
}

// Registry maps selector keys to credential encoders and lazily realizes
// declarative specs on first use.  It is the Go equivalent of Symfony's
// EncoderFactory.
//
// The key set is fixed at construction: [New] receives an ordered entry
// slice and nothing is added or removed afterwards, only the unrealized →
// realized transition of individual slots.  Entry order is significant —
// the type scan in [Registry.Resolve] walks entries first-registered-first
// and the first match wins, so callers wanting most-general-last semantics
// must order the slice accordingly.
//
// # Thread safety
//
// All methods are safe for concurrent use.  The entry table itself is
// immutable after New; realization is guarded per entry, so resolving
// different keys never contends and a realized key is only ever observed
// fully constructed.
type Registry struct {
	entries      []*entry
	byName       map[string]*entry
	hierarchy    *Hierarchy
	constructors map[string]Constructor
}

// Option configures a [Registry] at construction time.
type Option func(*Registry)

// WithHierarchy attaches a startup-built ancestry table used to match bare
// type names against registry keys.  See [Hierarchy].
func WithHierarchy(h *Hierarchy) Option {
	return func(r *Registry) { r.hierarchy = h }
}

// WithConstructor adds (or replaces) a constructor for the given kind in the
// registry's constructor table, on top of the built-in kinds.  Specs whose
// Class names the kind will be realized through fn.
func WithConstructor(kind string, fn Constructor) Option {
	return func(r *Registry) { r.constructors[kind] = fn }
}

// New builds a Registry from an ordered entry slice.
//
// Each entry must carry a Name or a Type (the name defaults to the type's
// string form) and exactly one of Encoder or Spec.  Duplicate names are
// rejected.  Specs are not constructed here — realization is deferred to the
// first [Registry.Resolve] that selects the entry.
func New(entries []Entry, opts ...Option) (*Registry, error) {
	r := &Registry{
		entries:      make([]*entry, 0, len(entries)),
		byName:       make(map[string]*entry, len(entries)),
		constructors: defaultConstructors(),
	}
	for _, fn := range opts {
		fn(r)
	}

	for i, in := range entries {
		name := in.Name
		if name == "" {
			if in.Type == nil {
				return nil, fmt.Errorf("%w: entry %d has neither a name nor a type", ErrInvalidEntry, i)
			}
			name = in.Type.String()
		}
		if (in.Encoder == nil) == (in.Spec == nil) {
			return nil, fmt.Errorf("%w: entry %q must set exactly one of Encoder or Spec", ErrInvalidEntry, name)
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidEntry, name)
		}
		e := &entry{name: name, typ: in.Type, enc: in.Encoder, spec: in.Spec}
		r.entries = append(r.entries, e)
		r.byName[name] = e
	}
	return r, nil
}

// Names returns the selector keys in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Has reports whether name is a key of the registry.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Resolve selects and returns the encoder for entity.
//
// entity is either an object instance or — for legacy callers — a bare type
// name string.  Selection runs in two tiers:
//
//  1. If the entity implements [EncoderAware] and declares a non-empty
//     preferred name, that name is used directly; an unregistered name fails
//     with [ErrUnknownEncoderName].
//  2. Otherwise the entries are scanned in registration order.  An instance
//     matches the first entry whose Type it is or implements; a bare name
//     matches the first entry it equals or descends from in the registry's
//     [Hierarchy].
//
// The selected entry is realized on first use and the constructed encoder is
// memoized: repeated resolves for the same key return the identical
// instance.  A realization failure is returned as-is (usually wrapping
// [ErrInvalidSpec]) and is not cached — a later resolve retries.
func (r *Registry) Resolve(entity any) (PasswordEncoder, error) {
	e, err := r.selectEntry(entity)
	if err != nil {
		return nil, err
	}
	return e.realize(r.constructors)
}

// selectEntry implements the two-tier selection without touching entry state.
func (r *Registry) selectEntry(entity any) (*entry, error) {
	if aware, ok := entity.(EncoderAware); ok {
		if name := aware.PreferredEncoderName(); name != "" {
			e, ok := r.byName[name]
			if !ok {
				return nil, fmt.Errorf("%w: %q declared by %s", ErrUnknownEncoderName, name, describe(entity))
			}
			return e, nil
		}
	}

	if name, ok := entity.(string); ok {
		for _, e := range r.entries {
			if name == e.name || r.hierarchy.IsA(name, e.name) {
				return e, nil
			}
		}
		return nil, fmt.Errorf("%w for %s", ErrNoEncoderConfigured, describe(entity))
	}

	if t := reflect.TypeOf(entity); t != nil {
		for _, e := range r.entries {
			if e.typ != nil && isA(t, e.typ) {
				return e, nil
			}
		}
	}
	return nil, fmt.Errorf("%w for %s", ErrNoEncoderConfigured, describe(entity))
}

// realize returns the entry's encoder, constructing and caching it on first
// use.  The fast path takes only a read lock; construction serializes on the
// entry's write lock so at most one construction per key ever runs, and a
// failure leaves the slot unrealized.
func (e *entry) realize(constructors map[string]Constructor) (PasswordEncoder, error) {
	e.mu.RLock()
	enc := e.enc
	e.mu.RUnlock()
	if enc != nil {
		return enc, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.enc != nil {
		return e.enc, nil
	}
	enc, err := e.spec.construct(constructors)
	if err != nil {
		return nil, err
	}
	e.enc = enc
	e.spec = nil
	return enc, nil
}

// isA reports whether an entity of type t matches registry key type key.
// Assignability covers identity and interface satisfaction; a pointer to a
// concrete key type also counts, since entities are commonly passed by
// pointer.
func isA(t, key reflect.Type) bool {
	if t.AssignableTo(key) {
		return true
	}
	return t.Kind() == reflect.Pointer && t.Elem().AssignableTo(key)
}

// describe renders an entity for error messages: the quoted literal for bare
// names, the runtime type for instances.
func describe(entity any) string {
	switch v := entity.(type) {
	case nil:
		return "<nil>"
	case string:
		return strconv.Quote(v)
	default:
		return reflect.TypeOf(v).String()
	}
}
