package vm

import (
	"fmt"
	"math"
)

func applyUnary(op Op, x Value) (Value, error) {
	if op != OpNeg {
		return nil, fmt.Errorf("vm: unknown unary operator %s", op)
	}
	switch v := x.(type) {
	case Int:
		return -v, nil
	case Real:
		return -v, nil
	}
	return nil, fmt.Errorf("vm: cannot negate %T", x)
}

func applyBinary(op Op, x, y Value) (Value, error) {
	switch op {
	case OpEq:
		return Bool(Equal(x, y)), nil
	case OpNe:
		return Bool(!Equal(x, y)), nil
	case OpAnd, OpOr, OpXor:
		a, ok1 := x.(Bool)
		b, ok2 := y.(Bool)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("vm: %s needs bool operands, got %T and %T", op, x, y)
		}
		switch op {
		case OpAnd:
			return a && b, nil
		case OpOr:
			return a || b, nil
		}
		return Bool(a != b), nil
	}

	if a, ok := x.(Int); ok {
		if b, ok := y.(Int); ok {
			return intArith(op, a, b)
		}
	}
	a, ok1 := ToReal(x)
	b, ok2 := ToReal(y)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("vm: %s needs numeric operands, got %T and %T", op, x, y)
	}
	return realArith(op, a, b)
}

func intArith(op Op, a, b Int) (Value, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		return realArith(op, Real(a), Real(b))
	case OpMod:
		if b == 0 {
			return nil, Errorf(ValueFault, "modulo by zero")
		}
		m := a % b
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m, nil
	case OpLt:
		return Bool(a < b), nil
	case OpGt:
		return Bool(a > b), nil
	case OpLe:
		return Bool(a <= b), nil
	case OpGe:
		return Bool(a >= b), nil
	}
	return nil, fmt.Errorf("vm: unknown integer operator %s", op)
}

func realArith(op Op, a, b Real) (Value, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return nil, Errorf(ValueFault, "division by zero")
		}
		return a / b, nil
	case OpMod:
		if b == 0 {
			return nil, Errorf(ValueFault, "modulo by zero")
		}
		m := Real(math.Mod(float64(a), float64(b)))
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m, nil
	case OpLt:
		return Bool(a < b), nil
	case OpGt:
		return Bool(a > b), nil
	case OpLe:
		return Bool(a <= b), nil
	case OpGe:
		return Bool(a >= b), nil
	}
	return nil, fmt.Errorf("vm: unknown real operator %s", op)
}

// ListIndex resolves a possibly negative index into l.
func ListIndex(l *List, index Value) (int, error) {
	i, ok := index.(Int)
	if !ok {
		return 0, fmt.Errorf("vm: list index must be int, got %T", index)
	}
	n := Int(len(l.Items))
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, Errorf(IndexFault, "list index out of range")
	}
	return int(i), nil
}
