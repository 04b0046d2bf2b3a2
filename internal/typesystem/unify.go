package typesystem

// Subst maps generic variable labels to the types they were bound to.
type Subst map[string]Type

// Unify matches pattern against actual and returns the bindings for the
// generic variables of pattern. It fails when the shapes differ or when a
// variable would be bound to two different types.
func Unify(pattern, actual Type) (Subst, bool) {
	s := Subst{}
	if !unifyInto(s, pattern, actual) {
		return nil, false
	}
	return s, true
}

func unifyInto(s Subst, pattern, actual Type) bool {
	switch p := pattern.(type) {
	case TVar:
		return s.bind(p.Label, actual)
	case Collection:
		a, ok := actual.(Collection)
		if !ok || a.Ctor != p.Ctor {
			return false
		}
		return unifyInto(s, p.Item, a.Item)
	default:
		return Equal(pattern, actual)
	}
}

func (s Subst) bind(label string, t Type) bool {
	if prev, ok := s[label]; ok {
		return Equal(prev, t)
	}
	s[label] = t
	return true
}

// Merge adds the bindings of other to s. It fails on a conflicting binding.
func (s Subst) Merge(other Subst) bool {
	for label, t := range other {
		if !s.bind(label, t) {
			return false
		}
	}
	return true
}

// Substitute replaces the generic variables of t by their bindings.
// Unbound variables are left in place.
func Substitute(t Type, s Subst) Type {
	if len(s) == 0 {
		return t
	}
	return t.Apply(s)
}
