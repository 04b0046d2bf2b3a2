package typesystem

import (
	"fmt"
	"strings"

	"github.com/funvibe/cubelang/internal/config"
)

// Type is the interface for all types of the language.
//
// String returns the name shown to users ("list of int"), Name returns the
// internal name used in listings and logs ("List(Integer)").
type Type interface {
	String() string
	Name() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// Scalar is one of the built-in value types. Scalars are interned and
// compared by identity.
type Scalar struct {
	name     string
	langName string
}

func (t *Scalar) String() string            { return t.langName }
func (t *Scalar) Name() string              { return t.name }
func (t *Scalar) Apply(Subst) Type          { return t }
func (t *Scalar) FreeTypeVariables() []TVar { return nil }

var (
	Integer = &Scalar{name: "Integer", langName: config.IntTypeName}
	Real    = &Scalar{name: "Real", langName: config.RealTypeName}
	Bool    = &Scalar{name: "Bool", langName: config.BoolTypeName}
	Void    = &Scalar{name: "Void", langName: config.VoidTypeName}
	Color   = &Scalar{name: "Color", langName: config.ColorTypeName}
	Side    = &Scalar{name: "Side", langName: config.SideTypeName}
	Pattern = &Scalar{name: "Pattern", langName: config.PatternTypeName}
)

// Scalars lists every built-in scalar type.
var Scalars = []*Scalar{Integer, Real, Bool, Void, Color, Side, Pattern}

// Ctor identifies a collection constructor.
type Ctor int

const (
	ListCtor Ctor = iota
	SetCtor
)

func (c Ctor) String() string {
	if c == SetCtor {
		return config.SetTypeName
	}
	return config.ListTypeName
}

func (c Ctor) name() string {
	if c == SetCtor {
		return "Set"
	}
	return "List"
}

// Collection is a list or set of elements of one type.
type Collection struct {
	Ctor Ctor
	Item Type
}

func List(item Type) Collection { return Collection{Ctor: ListCtor, Item: item} }
func Set(item Type) Collection  { return Collection{Ctor: SetCtor, Item: item} }

func (t Collection) String() string {
	return fmt.Sprintf("%s of %s", t.Ctor, t.Item)
}

func (t Collection) Name() string {
	return fmt.Sprintf("%s(%s)", t.Ctor.name(), t.Item.Name())
}

func (t Collection) Apply(s Subst) Type {
	return Collection{Ctor: t.Ctor, Item: t.Item.Apply(s)}
}

func (t Collection) FreeTypeVariables() []TVar {
	return t.Item.FreeTypeVariables()
}

// TVar is a generic type variable. It binds to whatever type it is unified
// with.
type TVar struct {
	Label string
}

// T is the type variable used by library signatures.
var T = TVar{Label: "T"}

func (t TVar) String() string { return t.Label }
func (t TVar) Name() string   { return t.Label }

func (t TVar) Apply(s Subst) Type {
	if r, ok := s[t.Label]; ok {
		return r
	}
	return t
}

func (t TVar) FreeTypeVariables() []TVar { return []TVar{t} }

// Equal reports whether two types are structurally the same.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case *Scalar:
		y, ok := b.(*Scalar)
		return ok && x == y
	case Collection:
		y, ok := b.(Collection)
		return ok && x.Ctor == y.Ctor && Equal(x.Item, y.Item)
	case TVar:
		y, ok := b.(TVar)
		return ok && x.Label == y.Label
	case *Function:
		y, ok := b.(*Function)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		if len(x.Overloads) != len(y.Overloads) {
			return false
		}
		for i := range x.Overloads {
			if !x.Overloads[i].equal(y.Overloads[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsAssignable reports whether a value of type actual may be stored where
// required is expected. Real accepts Integer; nothing else widens. Generic
// variables in required accept anything.
func IsAssignable(required, actual Type) bool {
	if required == Real && actual == Integer {
		return true
	}
	_, ok := Unify(required, actual)
	return ok
}

// FromName resolves a scalar by its user-facing name.
func FromName(name string) (*Scalar, bool) {
	for _, s := range Scalars {
		if s.langName == name {
			return s, true
		}
	}
	return nil, false
}

func typeList(types []Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
