package encoder_test

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hasbyte1/go-symfony-utils/encoder"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entity fixtures
// ──────────────────────────────────────────────────────────────────────────────

// user is a plain entity with no capabilities.
type user struct {
	name string
}

// adminUser is the "parent type" interface; superAdmin is its subtype.
type adminUser interface {
	AdminLevel() int
}

type superAdmin struct {
	user
}

func (superAdmin) AdminLevel() int { return 9 }

// auditable is a second interface superAdmin satisfies, for first-match-wins
// tests.
type auditable interface {
	AdminLevel() int
}

// awareUser declares an explicit encoder preference; an empty name means no
// preference.
type awareUser struct {
	pref string
}

func (u awareUser) PreferredEncoderName() string { return u.pref }

// ──────────────────────────────────────────────────────────────────────────────
// New
// ──────────────────────────────────────────────────────────────────────────────

func TestNew_EntryWithoutNameOrType(t *testing.T) {
	_, err := encoder.New([]encoder.Entry{
		{Spec: &encoder.Spec{Algorithm: "plaintext"}},
	})
	if !errors.Is(err, encoder.ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestNew_EntryWithBothEncoderAndSpec(t *testing.T) {
	_, err := encoder.New([]encoder.Entry{
		{
			Name:    "both",
			Encoder: encoder.NewPlaintextEncoder(false),
			Spec:    &encoder.Spec{Algorithm: "plaintext"},
		},
	})
	if !errors.Is(err, encoder.ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestNew_EntryWithNeitherEncoderNorSpec(t *testing.T) {
	_, err := encoder.New([]encoder.Entry{{Name: "empty"}})
	if !errors.Is(err, encoder.ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestNew_DuplicateName(t *testing.T) {
	_, err := encoder.New([]encoder.Entry{
		{Name: "dup", Encoder: encoder.NewPlaintextEncoder(false)},
		{Name: "dup", Encoder: encoder.NewPlaintextEncoder(true)},
	})
	if !errors.Is(err, encoder.ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestNew_NameDefaultsToTypeString(t *testing.T) {
	reg, err := encoder.New([]encoder.Entry{
		{Type: encoder.TypeOf[adminUser](), Encoder: encoder.NewPlaintextEncoder(false)},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !reg.Has(encoder.TypeOf[adminUser]().String()) {
		t.Errorf("registry names = %v, want the type string as default name", reg.Names())
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolve — explicit preferred name
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_PreferredNameWinsOverTypeScan(t *testing.T) {
	legacy := encoder.NewPlaintextEncoder(true)
	reg, err := encoder.New([]encoder.Entry{
		// A type entry that would match the entity is registered first; the
		// explicit preference must still win.
		{Type: encoder.TypeOf[awareUser](), Encoder: encoder.NewPlaintextEncoder(false)},
		{Name: "legacy", Encoder: legacy},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	enc, err := reg.Resolve(awareUser{pref: "legacy"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if enc != legacy {
		t.Error("expected the instance registered under the preferred name")
	}
}

func TestResolve_PreferredNameUnknown(t *testing.T) {
	reg, err := encoder.New([]encoder.Entry{
		{Name: "bcrypt", Spec: &encoder.Spec{Algorithm: "bcrypt"}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = reg.Resolve(awareUser{pref: "legacy"})
	if !errors.Is(err, encoder.ErrUnknownEncoderName) {
		t.Fatalf("expected ErrUnknownEncoderName, got %v", err)
	}
	if !strings.Contains(err.Error(), `"legacy"`) {
		t.Errorf("error should name the missing key, got %q", err)
	}
	if !strings.Contains(err.Error(), "awareUser") {
		t.Errorf("error should carry the entity descriptor, got %q", err)
	}
}

func TestResolve_EmptyPreferenceFallsBackToTypeScan(t *testing.T) {
	want := encoder.NewPlaintextEncoder(false)
	reg, err := encoder.New([]encoder.Entry{
		{Type: encoder.TypeOf[awareUser](), Encoder: want},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	enc, err := reg.Resolve(awareUser{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if enc != want {
		t.Error("empty preference should fall back to the type scan")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolve — type scan
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_SubtypeMatchesInterfaceEntry(t *testing.T) {
	// superAdmin implements adminUser; the entry is keyed by the interface
	// with a declarative bcrypt spec.
	reg, err := encoder.New([]encoder.Entry{
		{
			Type: encoder.TypeOf[adminUser](),
			Spec: &encoder.Spec{Algorithm: "bcrypt", Options: map[string]any{"cost": 12}},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	enc, err := reg.Resolve(superAdmin{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	bc, ok := enc.(*encoder.BCryptEncoder)
	if !ok {
		t.Fatalf("expected *BCryptEncoder, got %T", enc)
	}
	if bc.Cost() != 12 {
		t.Errorf("cost = %d, want 12", bc.Cost())
	}
}

func TestResolve_PointerEntityMatchesConcreteEntry(t *testing.T) {
	want := encoder.NewPlaintextEncoder(false)
	reg, err := encoder.New([]encoder.Entry{
		{Type: encoder.TypeOf[user](), Encoder: want},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, entity := range []any{user{name: "n"}, &user{name: "n"}} {
		enc, err := reg.Resolve(entity)
		if err != nil {
			t.Fatalf("Resolve(%T): %v", entity, err)
		}
		if enc != want {
			t.Errorf("Resolve(%T) did not return the registered encoder", entity)
		}
	}
}

func TestResolve_FirstMatchWins(t *testing.T) {
	first := encoder.NewPlaintextEncoder(false)
	second := encoder.NewPlaintextEncoder(true)
	// superAdmin satisfies both interfaces; registration order decides.
	reg, err := encoder.New([]encoder.Entry{
		{Name: "general", Type: encoder.TypeOf[auditable](), Encoder: first},
		{Name: "specific", Type: encoder.TypeOf[adminUser](), Encoder: second},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	enc, err := reg.Resolve(superAdmin{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if enc != first {
		t.Error("the first-registered matching entry must win")
	}
}

func TestResolve_NoMatch(t *testing.T) {
	reg, err := encoder.New([]encoder.Entry{
		{Type: encoder.TypeOf[adminUser](), Encoder: encoder.NewPlaintextEncoder(false)},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = reg.Resolve(user{name: "nobody"})
	if !errors.Is(err, encoder.ErrNoEncoderConfigured) {
		t.Fatalf("expected ErrNoEncoderConfigured, got %v", err)
	}
	if !strings.Contains(err.Error(), "user") {
		t.Errorf("error should carry the runtime type, got %q", err)
	}
}

func TestResolve_NilEntity(t *testing.T) {
	reg, err := encoder.New([]encoder.Entry{
		{Name: "any", Encoder: encoder.NewPlaintextEncoder(false)},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = reg.Resolve(nil)
	if !errors.Is(err, encoder.ErrNoEncoderConfigured) {
		t.Fatalf("expected ErrNoEncoderConfigured, got %v", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolve — bare type names
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_BareNameLiteralMatch(t *testing.T) {
	want := encoder.NewPlaintextEncoder(false)
	reg, err := encoder.New([]encoder.Entry{
		{Name: "acme.User", Encoder: want},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	enc, err := reg.Resolve("acme.User")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if enc != want {
		t.Error("bare name should match its entry literally")
	}
}

func TestResolve_BareNameHierarchyMatch(t *testing.T) {
	h := encoder.NewHierarchy().
		Register("acme.SuperAdmin", "acme.AdminUser").
		Register("acme.AdminUser", "acme.User")
	want := encoder.NewPlaintextEncoder(false)
	reg, err := encoder.New([]encoder.Entry{
		{Name: "acme.User", Encoder: want},
	}, encoder.WithHierarchy(h))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	enc, err := reg.Resolve("acme.SuperAdmin")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if enc != want {
		t.Error("bare name should match through the ancestry table")
	}
}

func TestResolve_BareNameNoMatch(t *testing.T) {
	reg, err := encoder.New([]encoder.Entry{
		{Name: "acme.User", Encoder: encoder.NewPlaintextEncoder(false)},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = reg.Resolve("acme.Visitor")
	if !errors.Is(err, encoder.ErrNoEncoderConfigured) {
		t.Fatalf("expected ErrNoEncoderConfigured, got %v", err)
	}
	if !strings.Contains(err.Error(), `"acme.Visitor"`) {
		t.Errorf("error should carry the literal identifier, got %q", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Lazy realization and memoization
// ──────────────────────────────────────────────────────────────────────────────

// countingConstructor returns a Constructor that counts invocations and can
// be told to fail the first n calls.
func countingConstructor(calls *atomic.Int64, failFirst int64) encoder.Constructor {
	return func(args []any) (encoder.PasswordEncoder, error) {
		n := calls.Add(1)
		if n <= failFirst {
			return nil, errors.New("boom")
		}
		return encoder.NewPlaintextEncoder(false), nil
	}
}

func TestResolve_MemoizesConstructedEncoder(t *testing.T) {
	var calls atomic.Int64
	reg, err := encoder.New([]encoder.Entry{
		{Name: "counted", Spec: &encoder.Spec{Class: "counted", Arguments: []any{}}},
	}, encoder.WithConstructor("counted", countingConstructor(&calls, 0)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first, err := reg.Resolve("counted")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := reg.Resolve("counted")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first != second {
		t.Error("repeated resolves must return the identical instance")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("constructor ran %d times, want 1", got)
	}
}

func TestResolve_FailedConstructionIsRetried(t *testing.T) {
	var calls atomic.Int64
	reg, err := encoder.New([]encoder.Entry{
		{Name: "flaky", Spec: &encoder.Spec{Class: "flaky", Arguments: []any{}}},
	}, encoder.WithConstructor("flaky", countingConstructor(&calls, 1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := reg.Resolve("flaky"); !errors.Is(err, encoder.ErrInvalidSpec) {
		t.Fatalf("first resolve: expected ErrInvalidSpec, got %v", err)
	}
	// The failure must not be cached: the second resolve retries and succeeds.
	if _, err := reg.Resolve("flaky"); err != nil {
		t.Fatalf("second resolve should retry construction, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("constructor ran %d times, want 2", got)
	}
}

func TestResolve_PrebuiltEncoderReturnedAsIs(t *testing.T) {
	want := encoder.NewPlaintextEncoder(true)
	reg, err := encoder.New([]encoder.Entry{
		{Name: "prebuilt", Encoder: want},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	enc, err := reg.Resolve("prebuilt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if enc != want {
		t.Error("pre-built entries must be returned unchanged")
	}
}

func TestResolve_ConcurrentSingleConstruction(t *testing.T) {
	var calls atomic.Int64
	reg, err := encoder.New([]encoder.Entry{
		{Name: "shared", Spec: &encoder.Spec{Class: "shared", Arguments: []any{}}},
	}, encoder.WithConstructor("shared", countingConstructor(&calls, 0)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const goroutines = 50
	results := make([]encoder.PasswordEncoder, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			enc, err := reg.Resolve("shared")
			if err != nil {
				t.Errorf("Resolve: %v", err)
				return
			}
			results[i] = enc
		}(i)
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("constructor ran %d times under contention, want 1", got)
	}
	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent resolves observed different instances")
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// End-to-end spec scenarios
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_UnknownAlgorithmFallsBackToMessageDigest(t *testing.T) {
	reg, err := encoder.New([]encoder.Entry{
		{
			Type: encoder.TypeOf[user](),
			Spec: &encoder.Spec{
				Algorithm: "unknown_digest",
				Options:   map[string]any{"encode_as_base64": true, "iterations": 1},
			},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	enc, err := reg.Resolve(user{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	md, ok := enc.(*encoder.MessageDigestEncoder)
	if !ok {
		t.Fatalf("expected *MessageDigestEncoder, got %T", enc)
	}
	if md.Algorithm() != "unknown_digest" {
		t.Errorf("algorithm = %q, want the literal name passed through", md.Algorithm())
	}
	if md.Iterations() != 1 {
		t.Errorf("iterations = %d, want 1", md.Iterations())
	}
}

func TestResolve_DeclarativeArgon2iEndToEnd(t *testing.T) {
	reg, err := encoder.New([]encoder.Entry{
		{
			Type: encoder.TypeOf[user](),
			Spec: &encoder.Spec{
				Algorithm: "argon2i",
				Options:   map[string]any{"memory_cost": 8, "time_cost": 1, "threads": 1},
			},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	enc, err := reg.Resolve(&user{name: "alice"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	hash, err := enc.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	ok, err := enc.Verify("s3cret", hash)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("round trip through a lazily realized encoder failed")
	}
}
