package stdlib

import (
	"math"

	"github.com/funvibe/cubelang/internal/library"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

// signEpsilon is the magnitude below which sign reports zero.
const signEpsilon = 1e-7

func registerMath(lib *library.Library) {
	real1 := params(typesystem.Real)

	lib.AddFunction("round", rounding("round", math.RoundToEven), real1, typesystem.Integer)
	lib.AddFunction("floor", rounding("floor", math.Floor), real1, typesystem.Integer)
	lib.AddFunction("ceil", rounding("ceil", math.Ceil), real1, typesystem.Integer)

	lib.AddFunction("sqrt", sqrt, real1, typesystem.Real)
	lib.AddFunction("pow", pow, params(typesystem.Real, typesystem.Real), typesystem.Real)
	lib.AddFunction("pow", pow, params(typesystem.Integer, typesystem.Integer), typesystem.Integer)

	for _, ext := range []struct {
		name string
		fn   library.Func
	}{
		{"max", extremum("max", 1)},
		{"min", extremum("min", -1)},
	} {
		lib.AddFunction(ext.name, ext.fn, params(typesystem.Real, typesystem.Real), typesystem.Real)
		lib.AddFunction(ext.name, ext.fn, params(typesystem.Integer, typesystem.Integer), typesystem.Integer)
		lib.AddFunction(ext.name, ext.fn, params(typesystem.List(typesystem.Real)), typesystem.Real)
		lib.AddFunction(ext.name, ext.fn, params(typesystem.List(typesystem.Integer)), typesystem.Integer)
		lib.AddFunction(ext.name, ext.fn, params(typesystem.Set(typesystem.Real)), typesystem.Real)
		lib.AddFunction(ext.name, ext.fn, params(typesystem.Set(typesystem.Integer)), typesystem.Integer)
	}

	lib.AddFunction("sign", sign, real1, typesystem.Integer)
	lib.AddFunction("not", not, params(typesystem.Bool), typesystem.Bool)
}

func rounding(name string, f func(float64) float64) library.Func {
	return func(args []vm.Value) (vm.Value, error) {
		x, err := realArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		r := f(float64(x))
		if math.IsNaN(r) || math.IsInf(r, 0) || r >= math.MaxInt64 || r < math.MinInt64 {
			return nil, vm.Errorf(vm.ValueFault, "cannot convert %s to integer", x)
		}
		return vm.Int(r), nil
	}
}

func sqrt(args []vm.Value) (vm.Value, error) {
	x, err := realArg("sqrt", args, 0)
	if err != nil {
		return nil, err
	}
	if x < 0 {
		return nil, vm.Errorf(vm.ValueFault, "math domain error")
	}
	return vm.Real(math.Sqrt(float64(x))), nil
}

// pow keeps integer arithmetic when both operands are integers.
func pow(args []vm.Value) (vm.Value, error) {
	if base, ok := args[0].(vm.Int); ok {
		if exp, ok := args[1].(vm.Int); ok {
			return intPow(base, exp)
		}
	}
	x, err := realArg("pow", args, 0)
	if err != nil {
		return nil, err
	}
	y, err := realArg("pow", args, 1)
	if err != nil {
		return nil, err
	}
	r := math.Pow(float64(x), float64(y))
	if math.IsNaN(r) {
		return nil, vm.Errorf(vm.ValueFault, "math domain error")
	}
	return vm.Real(r), nil
}

func intPow(base, exp vm.Int) (vm.Value, error) {
	if exp < 0 {
		return nil, vm.Errorf(vm.ValueFault, "negative exponent %d in integer power", exp)
	}
	result := vm.Int(1)
	for ; exp > 0; exp >>= 1 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
	}
	return result, nil
}

// compareNumbers returns -1, 0 or 1. Two Ints are compared exactly.
func compareNumbers(a, b vm.Value) (int, bool) {
	if x, ok := a.(vm.Int); ok {
		if y, ok := b.(vm.Int); ok {
			switch {
			case x < y:
				return -1, true
			case x > y:
				return 1, true
			}
			return 0, true
		}
	}
	x, ok1 := vm.ToReal(a)
	y, ok2 := vm.ToReal(b)
	if !ok1 || !ok2 {
		return 0, false
	}
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}
	return 0, true
}

// extremum picks the element that compares to all others with the given
// sign: 1 for the largest, -1 for the smallest. It takes two numbers or
// one collection; the result keeps the kind of the chosen element.
func extremum(name string, want int) library.Func {
	return func(args []vm.Value) (vm.Value, error) {
		var items []vm.Value
		switch c := args[0].(type) {
		case *vm.List:
			items = c.Items
		case *vm.Set:
			items = c.Items()
		default:
			items = args
		}
		if len(items) == 0 {
			return nil, vm.Errorf(vm.ValueFault, "%s() arg is an empty sequence", name)
		}
		best := items[0]
		if _, ok := vm.ToReal(best); !ok {
			return nil, badArgument(name, items, 0, "number")
		}
		for i := 1; i < len(items); i++ {
			c, ok := compareNumbers(items[i], best)
			if !ok {
				return nil, badArgument(name, items, i, "number")
			}
			if c == want {
				best = items[i]
			}
		}
		if len(args) == 2 {
			_, int0 := args[0].(vm.Int)
			_, int1 := args[1].(vm.Int)
			if !int0 || !int1 {
				r, _ := vm.ToReal(best)
				return r, nil
			}
		}
		return best, nil
	}
}

func sign(args []vm.Value) (vm.Value, error) {
	x, err := realArg("sign", args, 0)
	if err != nil {
		return nil, err
	}
	switch {
	case x > signEpsilon:
		return vm.Int(1), nil
	case x < -signEpsilon:
		return vm.Int(-1), nil
	}
	return vm.Int(0), nil
}

func not(args []vm.Value) (vm.Value, error) {
	b, ok := args[0].(vm.Bool)
	if !ok {
		return nil, badArgument("not", args, 0, "bool")
	}
	return !b, nil
}
