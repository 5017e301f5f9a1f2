package encoder_test

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hasbyte1/go-symfony-utils/encoder"
)

func TestBCrypt_RoundTrip(t *testing.T) {
	e, err := encoder.NewBCryptEncoder(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBCryptEncoder: %v", err)
	}
	hash, err := e.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if kind, ok := encoder.DetectEncoder(hash); !ok || kind != encoder.KindBCrypt {
		t.Errorf("DetectEncoder(%q) = (%q, %v), want bcrypt", hash, kind, ok)
	}

	ok, err := e.Verify("hunter2", hash)
	if err != nil || !ok {
		t.Errorf("Verify = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = e.Verify("wrong", hash)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Error("wrong credential must not verify")
	}
}

func TestBCrypt_InvalidCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost - 1, bcrypt.MaxCost + 1} {
		if _, err := encoder.NewBCryptEncoder(cost); !errors.Is(err, encoder.ErrInvalidOption) {
			t.Errorf("cost %d: expected ErrInvalidOption, got %v", cost, err)
		}
	}
}

func TestBCrypt_ForeignHashFormat(t *testing.T) {
	e, _ := encoder.NewBCryptEncoder(bcrypt.MinCost)
	_, err := e.Verify("hunter2", "$argon2i$v=19$m=8,t=1,p=1$AAAA$AAAA")
	if !errors.Is(err, encoder.ErrAlgorithmMismatch) {
		t.Fatalf("expected ErrAlgorithmMismatch, got %v", err)
	}
}
