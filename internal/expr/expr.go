// Package expr is the typed expression tree built by the analyzer and
// lowered into a flat vm.Program.
//
// An Expression is a single-line form: a template term whose vm.Ref leaves
// number the expression's intermediates. Intermediates are nodes that must
// be lowered into their own instructions, each storing its value in a fresh
// temporary, before the template can be evaluated. Control-flow nodes are
// never single-line forms; they enter expressions through Wrap.
package expr

import (
	"fmt"

	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

// Node is implemented by every typed tree node.
type Node interface {
	Type() typesystem.Type
	Line() int
	lower(l *lowerer, dest vm.Term)
}

// Expression is a single-line form with its intermediates.
type Expression struct {
	Typ           typesystem.Type
	LineNo        int
	Template      vm.Term
	Intermediates []Node
}

func (e *Expression) Type() typesystem.Type { return e.Typ }
func (e *Expression) Line() int             { return e.LineNo }

// IsWrapper reports whether e only forwards its single intermediate.
func (e *Expression) IsWrapper() bool {
	ref, ok := e.Template.(vm.Ref)
	return ok && ref.Index == 0 && len(e.Intermediates) == 1
}

func (e *Expression) String() string {
	if len(e.Intermediates) == 0 {
		return fmt.Sprintf("%s: %s", e.Typ, e.Template)
	}
	return fmt.Sprintf("%s: %s with %d intermediates", e.Typ, e.Template, len(e.Intermediates))
}

// New builds an expression without intermediates.
func New(t typesystem.Type, line int, template vm.Term) *Expression {
	return &Expression{Typ: t, LineNo: line, Template: template}
}

// Literal builds a constant expression.
func Literal(t typesystem.Type, line int, v vm.Value) *Expression {
	return New(t, line, vm.Const{Value: v})
}

// Wrap turns a node into an expression whose value is the node's value.
func Wrap(n Node) *Expression {
	if e, ok := n.(*Expression); ok {
		return e
	}
	return &Expression{Typ: n.Type(), LineNo: n.Line(), Template: vm.Ref{Index: 0}, Intermediates: []Node{n}}
}

// Merge combines parts into one expression of type t. The intermediates of
// the result are those of the parts in order; the template of part i,
// renumbered past the intermediates of the parts before it, replaces Ref{i}
// in template. The line of the result is the first line among the parts.
func Merge(t typesystem.Type, template vm.Term, parts ...*Expression) *Expression {
	result := &Expression{Typ: t}
	bodies := make([]vm.Term, len(parts))
	offset := 0
	for i, part := range parts {
		bodies[i] = vm.Shift(part.Template, offset)
		result.Intermediates = append(result.Intermediates, part.Intermediates...)
		offset += len(part.Intermediates)
		if part.LineNo > 0 && (result.LineNo == 0 || part.LineNo < result.LineNo) {
			result.LineNo = part.LineNo
		}
	}
	result.Template = vm.Substitute(template, bodies)
	return result
}

// At sets the line of e and returns it.
func (e *Expression) At(line int) *Expression {
	e.LineNo = line
	return e
}

// Return leaves the enclosing function. Value is nil for a bare return.
type Return struct {
	LineNo int
	Value  *Expression
}

func (r *Return) Type() typesystem.Type { return typesystem.Void }
func (r *Return) Line() int             { return r.LineNo }

// Branch is one arm of a Condition.
type Branch struct {
	Cond *Expression
	Body []Node
}

// Condition is an if/else-if/else chain. When it has a type other than
// Void, the last node of every branch supplies the value.
type Condition struct {
	Typ      typesystem.Type
	LineNo   int
	Branches []Branch
	Else     []Node
}

// NewCondition computes the type of the chain: with an else branch it is
// the common assignable type of the last values of all branches, otherwise
// Void.
func NewCondition(line int, branches []Branch, elseBody []Node) *Condition {
	return &Condition{Typ: conditionType(branches, elseBody), LineNo: line, Branches: branches, Else: elseBody}
}

func conditionType(branches []Branch, elseBody []Node) typesystem.Type {
	if len(elseBody) == 0 {
		return typesystem.Void
	}
	result := elseBody[len(elseBody)-1].Type()
	for _, b := range branches {
		if len(b.Body) == 0 {
			return typesystem.Void
		}
		t := b.Body[len(b.Body)-1].Type()
		switch {
		case typesystem.IsAssignable(t, result):
			result = t
		case !typesystem.IsAssignable(result, t):
			return typesystem.Void
		}
	}
	return result
}

func (c *Condition) Type() typesystem.Type { return c.Typ }
func (c *Condition) Line() int             { return c.LineNo }

// WhileLoop tests Cond before every pass.
type WhileLoop struct {
	LineNo int
	Cond   *Expression
	Body   []Node
}

func (w *WhileLoop) Type() typesystem.Type { return typesystem.Void }
func (w *WhileLoop) Line() int             { return w.LineNo }

// DoWhileLoop tests Cond after every pass.
type DoWhileLoop struct {
	LineNo int
	Cond   *Expression
	Body   []Node
}

func (d *DoWhileLoop) Type() typesystem.Type { return typesystem.Void }
func (d *DoWhileLoop) Line() int             { return d.LineNo }

// RepeatLoop runs Body Times times. Times is evaluated once.
type RepeatLoop struct {
	LineNo int
	Times  *Expression
	Body   []Node
}

func (r *RepeatLoop) Type() typesystem.Type { return typesystem.Void }
func (r *RepeatLoop) Line() int             { return r.LineNo }

// ForLoop stores every item of a snapshot of Collection in Var, a Local,
// and runs Body.
type ForLoop struct {
	LineNo     int
	Var        vm.Term
	Collection *Expression
	Body       []Node
}

func (f *ForLoop) Type() typesystem.Type { return typesystem.Void }
func (f *ForLoop) Line() int             { return f.LineNo }

// FunctionDecl is a user function. Index is its entry in the function
// table; Locals is the number of variable slots a call frame needs, the
// first Arity of which hold the arguments.
type FunctionDecl struct {
	LineNo int
	Name   string
	Index  int
	Arity  int
	Locals int
	Return typesystem.Type
	Body   []Node
}

func (f *FunctionDecl) Type() typesystem.Type { return typesystem.Void }
func (f *FunctionDecl) Line() int             { return f.LineNo }

// Program is the typed tree of a whole source file. Locals is the number of
// variable slots of the top-level frame.
type Program struct {
	Nodes  []Node
	Locals int
}

// DefaultValue returns the term producing the initial value of a variable
// of type t. Collection defaults build a new value on every evaluation.
func DefaultValue(t typesystem.Type) vm.Term {
	switch t := t.(type) {
	case typesystem.Collection:
		if t.Ctor == typesystem.SetCtor {
			return vm.MakeSet{}
		}
		return vm.MakeList{}
	case *typesystem.Scalar:
		switch t {
		case typesystem.Integer:
			return vm.Const{Value: vm.Int(0)}
		case typesystem.Real:
			return vm.Const{Value: vm.Real(0)}
		case typesystem.Bool:
			return vm.Const{Value: vm.Bool(false)}
		case typesystem.Color:
			return vm.Const{Value: vm.White}
		case typesystem.Side:
			return vm.Const{Value: vm.Front}
		}
	}
	return vm.Const{Value: vm.Nil{}}
}
