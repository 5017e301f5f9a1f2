package encoder_test

import (
	"testing"

	"github.com/hasbyte1/go-symfony-utils/encoder"
)

func TestHierarchy_IsA(t *testing.T) {
	h := encoder.NewHierarchy().
		Register("acme.SuperAdmin", "acme.AdminUser").
		Register("acme.AdminUser", "acme.User", "acme.Auditable").
		Register("acme.User", "acme.Entity")

	tests := []struct {
		name, ancestor string
		want           bool
	}{
		{"acme.SuperAdmin", "acme.SuperAdmin", true}, // equality counts
		{"acme.SuperAdmin", "acme.AdminUser", true},  // direct parent
		{"acme.SuperAdmin", "acme.User", true},       // transitive
		{"acme.SuperAdmin", "acme.Auditable", true},  // through multiple ancestry
		{"acme.SuperAdmin", "acme.Entity", true},     // three levels deep
		{"acme.User", "acme.SuperAdmin", false},      // ancestry is directional
		{"acme.User", "acme.Auditable", false},
		{"unregistered", "acme.User", false},
		{"unregistered", "unregistered", true},
	}
	for _, tt := range tests {
		if got := h.IsA(tt.name, tt.ancestor); got != tt.want {
			t.Errorf("IsA(%q, %q) = %v, want %v", tt.name, tt.ancestor, got, tt.want)
		}
	}
}

func TestHierarchy_AccumulatesParentsAcrossCalls(t *testing.T) {
	h := encoder.NewHierarchy().
		Register("child", "mother").
		Register("child", "father")
	if !h.IsA("child", "mother") || !h.IsA("child", "father") {
		t.Error("repeated Register calls should accumulate parents")
	}
}

func TestHierarchy_CycleTerminates(t *testing.T) {
	h := encoder.NewHierarchy().
		Register("a", "b").
		Register("b", "a")
	if h.IsA("a", "c") {
		t.Error("a does not descend from c")
	}
	if !h.IsA("a", "b") || !h.IsA("b", "a") {
		t.Error("cycle members are still each other's ancestors")
	}
}

func TestHierarchy_NilAnswersEqualityOnly(t *testing.T) {
	var h *encoder.Hierarchy
	if !h.IsA("x", "x") {
		t.Error("nil hierarchy should still answer equality")
	}
	if h.IsA("x", "y") {
		t.Error("nil hierarchy must not invent ancestry")
	}
}
