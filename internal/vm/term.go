package vm

import (
	"fmt"
	"strings"
)

// Term is a pure expression tree evaluated by the machine. Templates of the
// typed expression tree are terms whose Ref leaves are filled in during
// lowering.
type Term interface {
	fmt.Stringer
	term()
}

// Ref is a hole in a template, numbered by the intermediate it stands for.
type Ref struct{ Index int }

type Const struct{ Value Value }

// Local is a slot holding a declared variable.
type Local struct {
	Slot int
	Name string
}

// Temp is a slot holding an intermediate result.
type Temp struct{ Slot int }

// Global is a name bound by the host.
type Global struct{ Name string }

// FuncRef names an entry of the program's function table.
type FuncRef struct {
	Index int
	Name  string
}

type Unary struct {
	Op Op
	X  Term
}

type Binary struct {
	Op   Op
	X, Y Term
}

type Index struct {
	X, I Term
}

type Call struct {
	Callee Term
	Args   []Term
}

// MakeList builds a fresh list, so that defaults are never shared between
// evaluations.
type MakeList struct{ Items []Term }

type MakeSet struct{}

// Assign stores Value into Dest, which is a Local, a Temp or an Index.
type Assign struct {
	Dest  Term
	Value Term
}

func (Ref) term() {}
func (Const) term() {}
func (Local) term() {}
func (Temp) term() {}
func (Global) term() {}
func (FuncRef) term() {}
func (Unary) term() {}
func (Binary) term() {}
func (Index) term() {}
func (Call) term() {}
func (MakeList) term() {}
func (MakeSet) term() {}
func (Assign) term() {}

func (t Ref) String() string { return fmt.Sprintf("{%d}", t.Index) }
func (t Const) String() string { return t.Value.String() }

func (t Local) String() string {
	if t.Name != "" {
		return fmt.Sprintf("v%d(%s)", t.Slot, t.Name)
	}
	return fmt.Sprintf("v%d", t.Slot)
}

func (t Temp) String() string { return fmt.Sprintf("t%d", t.Slot) }
func (t Global) String() string { return t.Name }
func (t FuncRef) String() string { return fmt.Sprintf("fn%d(%s)", t.Index, t.Name) }
func (t Unary) String() string { return fmt.Sprintf("%s%s", t.Op, t.X) }
func (t Binary) String() string { return fmt.Sprintf("(%s %s %s)", t.X, t.Op, t.Y) }
func (t Index) String() string { return fmt.Sprintf("%s[%s]", t.X, t.I) }
func (t Call) String() string { return fmt.Sprintf("%s(%s)", t.Callee, joinTerms(t.Args)) }
func (t MakeList) String() string { return fmt.Sprintf("list(%s)", joinTerms(t.Items)) }
func (MakeSet) String() string { return "set()" }
func (t Assign) String() string { return fmt.Sprintf("%s = %s", t.Dest, t.Value) }

func joinTerms(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Op is a primitive operator of Unary and Binary terms.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
	OpXor
	OpNeg
)

var opSymbols = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=",
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpNeg: "-",
}

func (o Op) String() string {
	if int(o) < len(opSymbols) {
		return opSymbols[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Substitute replaces every Ref{i} in t by args[i].
func Substitute(t Term, args []Term) Term {
	return Rewrite(t, func(r Ref) Term {
		if r.Index < 0 || r.Index >= len(args) {
			panic(fmt.Sprintf("vm: template reference {%d} with %d arguments", r.Index, len(args)))
		}
		return args[r.Index]
	})
}

// Shift renumbers every Ref of t by offset.
func Shift(t Term, offset int) Term {
	if offset == 0 {
		return t
	}
	return Rewrite(t, func(r Ref) Term { return Ref{Index: r.Index + offset} })
}

// Rewrite rebuilds t with every Ref replaced by f(ref).
func Rewrite(t Term, f func(Ref) Term) Term {
	switch t := t.(type) {
	case nil:
		return nil
	case Ref:
		return f(t)
	case Unary:
		return Unary{Op: t.Op, X: Rewrite(t.X, f)}
	case Binary:
		return Binary{Op: t.Op, X: Rewrite(t.X, f), Y: Rewrite(t.Y, f)}
	case Index:
		return Index{X: Rewrite(t.X, f), I: Rewrite(t.I, f)}
	case Call:
		return Call{Callee: Rewrite(t.Callee, f), Args: rewriteAll(t.Args, f)}
	case MakeList:
		return MakeList{Items: rewriteAll(t.Items, f)}
	case Assign:
		return Assign{Dest: Rewrite(t.Dest, f), Value: Rewrite(t.Value, f)}
	}
	return t
}

func rewriteAll(terms []Term, f func(Ref) Term) []Term {
	out := make([]Term, len(terms))
	for i, t := range terms {
		out[i] = Rewrite(t, f)
	}
	return out
}

// Refs returns the indices of the Ref leaves of t in evaluation order.
func Refs(t Term) []int {
	var out []int
	Rewrite(t, func(r Ref) Term {
		out = append(out, r.Index)
		return r
	})
	return out
}
