package typesystem

import (
	"fmt"

	"github.com/funvibe/cubelang/internal/config"
)

// Overload is one accepted signature of a function. When Variadic is set,
// the last parameter type repeats to absorb any further arguments.
type Overload struct {
	Params   []Type
	Variadic bool
	Return   Type
}

func (o Overload) String() string {
	params := typeList(o.Params)
	if o.Variadic {
		params += ", ..."
	}
	return fmt.Sprintf("(%s) -> %s", params, o.Return)
}

func (o Overload) equal(other Overload) bool {
	if o.Variadic != other.Variadic || len(o.Params) != len(other.Params) {
		return false
	}
	for i := range o.Params {
		if !Equal(o.Params[i], other.Params[i]) {
			return false
		}
	}
	return Equal(o.Return, other.Return)
}

// Function is the type of a callable value. Overloads are tried in order and
// the first one that accepts the arguments wins.
type Function struct {
	Overloads []Overload
}

// NewFunction builds a function type with a single overload.
func NewFunction(params []Type, ret Type) *Function {
	return &Function{Overloads: []Overload{{Params: params, Return: ret}}}
}

// NewVariadic builds a function type whose last parameter repeats.
func NewVariadic(params []Type, ret Type) *Function {
	if len(params) == 0 {
		panic("typesystem: variadic signature needs a parameter to repeat")
	}
	return &Function{Overloads: []Overload{{Params: params, Variadic: true, Return: ret}}}
}

func (t *Function) String() string            { return config.FunctionTypeName }
func (t *Function) Name() string              { return "Function" }
func (t *Function) Apply(Subst) Type          { return t }
func (t *Function) FreeTypeVariables() []TVar { return nil }

// PrependOverload adds an overload that is tried before the existing ones.
func (t *Function) PrependOverload(o Overload) {
	if o.Variadic && len(o.Params) == 0 {
		panic("typesystem: variadic signature needs a parameter to repeat")
	}
	t.Overloads = append([]Overload{o}, t.Overloads...)
}

// ExpandVariadic returns the parameter list of o stretched to n arguments.
// It fails when n is below the fixed prefix or when a non-variadic
// signature has a different arity.
func ExpandVariadic(o Overload, n int) ([]Type, bool) {
	if len(o.Params) > n {
		return nil, false
	}
	if !o.Variadic {
		if len(o.Params) != n {
			return nil, false
		}
		return o.Params, true
	}
	out := make([]Type, 0, n)
	out = append(out, o.Params...)
	last := o.Params[len(o.Params)-1]
	for len(out) < n {
		out = append(out, last)
	}
	return out, true
}

// Resolve returns the return type of the first overload accepting args,
// with generic variables substituted.
func (t *Function) Resolve(args []Type) (Type, bool) {
	for _, o := range t.Overloads {
		if ret, ok := o.accepts(args); ok {
			return ret, true
		}
	}
	return nil, false
}

// HasArity reports whether some overload accepts n arguments.
func (t *Function) HasArity(n int) bool {
	for _, o := range t.Overloads {
		if _, ok := ExpandVariadic(o, n); ok {
			return true
		}
	}
	return false
}

func (o Overload) accepts(args []Type) (Type, bool) {
	params, ok := ExpandVariadic(o, len(args))
	if !ok {
		return nil, false
	}
	s := Subst{}
	for i, want := range params {
		if want == Real && args[i] == Integer {
			continue
		}
		vars, ok := Unify(want, args[i])
		if !ok || !s.Merge(vars) {
			return nil, false
		}
	}
	return Substitute(o.Return, s), true
}
