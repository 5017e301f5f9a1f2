package encoder

// Hierarchy is an ancestry table for bare type names, built once at startup
// and read-only afterwards (it carries no locking for that reason).  It lets
// legacy callers that only hold a type-name string participate in the
// registry's "first matching ancestor wins" scan without any call-time
// reflection: register each name with its direct parents, and [Hierarchy.IsA]
// answers transitively.
//
//	h := encoder.NewHierarchy().
//		Register("acme.SuperAdmin", "acme.AdminUser").
//		Register("acme.AdminUser", "acme.User")
//
//	h.IsA("acme.SuperAdmin", "acme.User") // true
type Hierarchy struct {
	parents map[string][]string
}

// NewHierarchy returns an empty ancestry table.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{parents: make(map[string][]string)}
}

// Register records the direct parents of name, accumulating across calls so
// interface-style multiple ancestry is expressible.  Returns the receiver
// for chaining.
func (h *Hierarchy) Register(name string, parents ...string) *Hierarchy {
	h.parents[name] = append(h.parents[name], parents...)
	return h
}

// IsA reports whether name equals ancestor or descends from it through any
// chain of registered parents.  A nil Hierarchy answers equality only.
// Cycles in the registered table terminate rather than loop.
func (h *Hierarchy) IsA(name, ancestor string) bool {
	if name == ancestor {
		return true
	}
	if h == nil {
		return false
	}

	seen := map[string]bool{name: true}
	queue := append([]string(nil), h.parents[name]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == ancestor {
			return true
		}
		if seen[next] {
			continue
		}
		seen[next] = true
		queue = append(queue, h.parents[next]...)
	}
	return false
}
