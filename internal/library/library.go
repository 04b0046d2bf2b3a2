// Package library is the registry of names a program can refer to without
// declaring them. Every entry has a declared type, seen by the analyzer,
// and a runtime value, bound by the machine; both come from the same
// registration so they cannot drift apart.
package library

import (
	"fmt"
	"sort"

	"github.com/funvibe/cubelang/internal/symbols"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

// Func is the Go implementation of an external operation.
type Func func(args []vm.Value) (vm.Value, error)

type Library struct {
	types    map[string]typesystem.Type
	bindings vm.Bindings
}

func New() *Library {
	return &Library{
		types:    make(map[string]typesystem.Type),
		bindings: make(vm.Bindings),
	}
}

// AddFunction registers fn under name with one signature. Registering a
// name again adds a signature that is tried before the earlier ones; the
// implementation registered first is kept and must handle every signature.
func (lib *Library) AddFunction(name string, fn Func, params []typesystem.Type, ret typesystem.Type) {
	lib.addOverload(name, fn, typesystem.Overload{Params: params, Return: ret})
}

// AddVariadic is AddFunction for a signature whose last parameter repeats.
func (lib *Library) AddVariadic(name string, fn Func, params []typesystem.Type, ret typesystem.Type) {
	lib.addOverload(name, fn, typesystem.Overload{Params: params, Variadic: true, Return: ret})
}

func (lib *Library) addOverload(name string, fn Func, o typesystem.Overload) {
	if existing, ok := lib.types[name]; ok {
		f, isFunc := existing.(*typesystem.Function)
		if !isFunc {
			panic(fmt.Sprintf("library: %s is already registered as a value", name))
		}
		f.PrependOverload(o)
		return
	}
	f := &typesystem.Function{}
	f.PrependOverload(o)
	lib.types[name] = f
	lib.bindings[name] = &vm.Operation{Name: name, Fn: fn}
}

// AddValue registers a read-only constant.
func (lib *Library) AddValue(name string, t typesystem.Type, v vm.Value) {
	if _, ok := lib.types[name]; ok {
		panic(fmt.Sprintf("library: %s is already registered", name))
	}
	lib.types[name] = t
	lib.bindings[name] = v
}

// Bind registers a runtime value without declaring it. Such names are only
// reachable from code the compiler generates itself.
func (lib *Library) Bind(name string, v vm.Value) {
	lib.bindings[name] = v
}

// BindFunction is Bind for an operation.
func (lib *Library) BindFunction(name string, fn Func) {
	lib.Bind(name, &vm.Operation{Name: name, Fn: fn})
}

// Include copies every entry of other into lib. Functions registered in
// both get the overloads of other tried first.
func (lib *Library) Include(other *Library) {
	for _, name := range other.Names() {
		t := other.types[name]
		f, isFunc := t.(*typesystem.Function)
		mine, exists := lib.types[name]
		switch {
		case !exists && isFunc:
			lib.types[name] = &typesystem.Function{Overloads: append([]typesystem.Overload(nil), f.Overloads...)}
			lib.bindings[name] = other.bindings[name]
		case !exists:
			lib.types[name] = t
			lib.bindings[name] = other.bindings[name]
		default:
			mf, ok := mine.(*typesystem.Function)
			if !ok || !isFunc {
				panic(fmt.Sprintf("library: %s is registered twice", name))
			}
			for i := len(f.Overloads) - 1; i >= 0; i-- {
				mf.PrependOverload(f.Overloads[i])
			}
		}
	}
	for name, v := range other.bindings {
		if _, declared := other.types[name]; !declared {
			lib.bindings[name] = v
		}
	}
}

// Type returns the declared type of name.
func (lib *Library) Type(name string) (typesystem.Type, bool) {
	t, ok := lib.types[name]
	return t, ok
}

// Names lists the declared names in sorted order.
func (lib *Library) Names() []string {
	names := make([]string, 0, len(lib.types))
	for name := range lib.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declare makes every declared name visible in st as a global.
func (lib *Library) Declare(st *symbols.SymbolTable) {
	for _, name := range lib.Names() {
		st.DeclareGlobal(name, lib.types[name])
	}
}

// Bindings returns the runtime values of all names, declared or hidden.
// The map is a copy.
func (lib *Library) Bindings() vm.Bindings {
	out := make(vm.Bindings, len(lib.bindings))
	for name, v := range lib.bindings {
		out[name] = v
	}
	return out
}
