// Package stdlib registers the collection and math functions available to
// every program.
package stdlib

import (
	"fmt"

	"github.com/funvibe/cubelang/internal/library"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

// New returns a library holding the standard functions.
func New() *library.Library {
	lib := library.New()
	Register(lib)
	return lib
}

// Register adds the standard functions to lib.
func Register(lib *library.Library) {
	registerCollections(lib)
	registerMath(lib)
}

var (
	elem  = typesystem.T
	listT = typesystem.List(typesystem.T)
	setT  = typesystem.Set(typesystem.T)
)

func params(types ...typesystem.Type) []typesystem.Type { return types }

func listArg(name string, args []vm.Value, i int) (*vm.List, error) {
	if i < len(args) {
		if l, ok := args[i].(*vm.List); ok {
			return l, nil
		}
	}
	return nil, badArgument(name, args, i, "list")
}

func setArg(name string, args []vm.Value, i int) (*vm.Set, error) {
	if i < len(args) {
		if s, ok := args[i].(*vm.Set); ok {
			return s, nil
		}
	}
	return nil, badArgument(name, args, i, "set")
}

func intArg(name string, args []vm.Value, i int) (vm.Int, error) {
	if i < len(args) {
		if n, ok := args[i].(vm.Int); ok {
			return n, nil
		}
	}
	return 0, badArgument(name, args, i, "int")
}

func realArg(name string, args []vm.Value, i int) (vm.Real, error) {
	if i < len(args) {
		if r, ok := vm.ToReal(args[i]); ok {
			return r, nil
		}
	}
	return 0, badArgument(name, args, i, "real")
}

func valueArg(name string, args []vm.Value, i int) (vm.Value, error) {
	if i < len(args) {
		return args[i], nil
	}
	return nil, badArgument(name, args, i, "value")
}

// badArgument is a host error: the analyzer only lets well-typed calls
// through.
func badArgument(name string, args []vm.Value, i int, want string) error {
	if i >= len(args) {
		return fmt.Errorf("%s: missing argument %d", name, i+1)
	}
	return fmt.Errorf("%s: argument %d is %s, want %s", name, i+1, args[i], want)
}
