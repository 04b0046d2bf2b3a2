// Package operators holds the binary operator precedence table. The parser
// walks the groups level by level, the analyzer resolves operand types
// against the entries.
package operators

import (
	"fmt"
	"strings"

	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

// Signature is one accepted operand type pair.
type Signature struct {
	Left, Right typesystem.Type
	Result      typesystem.Type
}

// Operator is an entry of a precedence group. Exactly one of Signatures and
// Rule is set; Rule returns nil when the operands are not accepted.
type Operator struct {
	Symbol     string
	Template   vm.Term
	Signatures []Signature
	Rule       func(left, right typesystem.Type) typesystem.Type
}

// Apply returns the result type of the operator for the given operand types,
// or nil. Signatures are tried in order and the first one whose parameter
// types accept both operands wins.
func (o Operator) Apply(left, right typesystem.Type) typesystem.Type {
	if o.Rule != nil {
		return o.Rule(left, right)
	}
	for _, s := range o.Signatures {
		if typesystem.IsAssignable(s.Left, left) && typesystem.IsAssignable(s.Right, right) {
			return s.Result
		}
	}
	return nil
}

func (o Operator) String() string { return o.Symbol }

func binary(op vm.Op) vm.Term {
	return vm.Binary{Op: op, X: vm.Ref{Index: 0}, Y: vm.Ref{Index: 1}}
}

func same(a, b, result typesystem.Type) Signature {
	return Signature{Left: a, Right: b, Result: result}
}

func equality(left, right typesystem.Type) typesystem.Type {
	if left == typesystem.Void || !typesystem.Equal(left, right) {
		return nil
	}
	return typesystem.Bool
}

var (
	boolean    = []Signature{same(typesystem.Bool, typesystem.Bool, typesystem.Bool)}
	comparison = []Signature{same(typesystem.Real, typesystem.Real, typesystem.Bool)}
	arithmetic = []Signature{
		same(typesystem.Integer, typesystem.Integer, typesystem.Integer),
		same(typesystem.Real, typesystem.Real, typesystem.Real),
	}
)

// Groups lists the precedence levels, loosest binding first. All operators
// are left-associative.
var Groups = [][]Operator{
	{
		{Symbol: "xor", Template: binary(vm.OpXor), Signatures: boolean},
	},
	{
		{Symbol: "or", Template: binary(vm.OpOr), Signatures: boolean},
	},
	{
		{Symbol: "and", Template: binary(vm.OpAnd), Signatures: boolean},
	},
	{
		{Symbol: "==", Template: binary(vm.OpEq), Rule: equality},
		{Symbol: "!=", Template: binary(vm.OpNe), Rule: equality},
	},
	{
		{Symbol: "<", Template: binary(vm.OpLt), Signatures: comparison},
		{Symbol: ">", Template: binary(vm.OpGt), Signatures: comparison},
		{Symbol: "<=", Template: binary(vm.OpLe), Signatures: comparison},
		{Symbol: ">=", Template: binary(vm.OpGe), Signatures: comparison},
	},
	{
		{Symbol: "+", Template: binary(vm.OpAdd), Signatures: arithmetic},
		{Symbol: "-", Template: binary(vm.OpSub), Signatures: arithmetic},
	},
	{
		{Symbol: "*", Template: binary(vm.OpMul), Signatures: arithmetic},
		{Symbol: "/", Template: binary(vm.OpDiv), Signatures: []Signature{
			same(typesystem.Real, typesystem.Real, typesystem.Real),
		}},
		{Symbol: "%", Template: binary(vm.OpMod), Signatures: []Signature{
			same(typesystem.Integer, typesystem.Integer, typesystem.Integer),
		}},
	},
}

// Find returns the position of symbol within group level, or -1.
func Find(level int, symbol string) int {
	if level < 0 || level >= len(Groups) {
		return -1
	}
	for i, op := range Groups[level] {
		if op.Symbol == symbol {
			return i
		}
	}
	return -1
}

// Grammar renders groups as chained left-associative productions for an
// LALR parser generator. Level i is named op_i, binds tighter than op_i-1
// and bottoms out at last.
func Grammar(groups [][]string, last string) string {
	var sb strings.Builder
	for level, group := range groups {
		this := fmt.Sprintf("op_%d", level)
		next := last
		if level < len(groups)-1 {
			next = fmt.Sprintf("op_%d", level+1)
		}
		fmt.Fprintf(&sb, "?%s.%d: %s", this, len(groups)-level, next)
		for i, symbol := range group {
			fmt.Fprintf(&sb, " | %s %q %s -> op_%d_%d", this, symbol, next, level, i)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Symbols returns the operator symbols of Groups, level by level.
func Symbols() [][]string {
	out := make([][]string, len(Groups))
	for i, group := range Groups {
		for _, op := range group {
			out[i] = append(out[i], op.Symbol)
		}
	}
	return out
}
