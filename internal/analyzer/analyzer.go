// Package analyzer translates the parse tree into the typed expression
// tree. It resolves names through the symbol table, checks types and
// reports the first compile-time error it meets.
package analyzer

import (
	"github.com/funvibe/cubelang/internal/ast"
	"github.com/funvibe/cubelang/internal/config"
	"github.com/funvibe/cubelang/internal/diagnostics"
	"github.com/funvibe/cubelang/internal/expr"
	"github.com/funvibe/cubelang/internal/library"
	"github.com/funvibe/cubelang/internal/symbols"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

type Analyzer struct {
	st    *symbols.SymbolTable
	funcs int // next free entry of the function table
}

// New creates an analyzer whose globals are the declared names of lib.
// A nil lib declares nothing.
func New(lib *library.Library) *Analyzer {
	st := symbols.New()
	if lib != nil {
		lib.Declare(st)
	}
	return &Analyzer{st: st}
}

// Analyze translates a whole program. The returned error is a
// diagnostics.Diagnostic.
func (a *Analyzer) Analyze(root *ast.Node) (*expr.Program, error) {
	nodes, err := a.statements(root.Children)
	if err != nil {
		return nil, err
	}
	return &expr.Program{Nodes: nodes, Locals: a.st.Pool().HighWater()}, nil
}

// statements translates a list of statements in the current block.
func (a *Analyzer) statements(stmts []*ast.Node) ([]expr.Node, error) {
	var out []expr.Node
	for _, stmt := range stmts {
		nodes, err := a.statement(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

// clause translates a block in a scope of its own.
func (a *Analyzer) clause(n *ast.Node) ([]expr.Node, error) {
	a.st.PushScope()
	defer a.st.PopScope()
	return a.statements(n.Children)
}

// statement translates one statement. Declarations of several names and
// runs of cube moves give several nodes.
func (a *Analyzer) statement(n *ast.Node) ([]expr.Node, error) {
	switch n.Kind {
	case ast.VarDecl:
		return a.varDecl(n)
	case ast.Moves:
		return a.moves(n)
	case ast.FuncDecl:
		decl, err := a.funcDecl(n)
		if err != nil {
			return nil, err
		}
		return []expr.Node{decl}, nil
	case ast.Return:
		ret, err := a.returnStatement(n)
		if err != nil {
			return nil, err
		}
		return []expr.Node{ret}, nil
	case ast.VarAssign:
		e, err := a.assignment(n)
		if err != nil {
			return nil, err
		}
		return []expr.Node{e}, nil
	}
	node, err := a.node(n)
	if err != nil {
		return nil, err
	}
	return []expr.Node{node}, nil
}

// node translates a parse node that has a value. Control-flow constructs
// stay as they are; everything else becomes an Expression.
func (a *Analyzer) node(n *ast.Node) (expr.Node, error) {
	switch n.Kind {
	case ast.If:
		return a.ifExpression(n)
	case ast.While:
		return a.whileLoop(n)
	case ast.DoWhile:
		return a.doWhileLoop(n)
	case ast.Repeat:
		return a.repeatLoop(n)
	case ast.For:
		return a.forLoop(n)
	case ast.IntLiteral:
		return expr.Literal(typesystem.Integer, n.Line(), vm.Int(n.Token.Literal.(int64))), nil
	case ast.FloatLiteral:
		return expr.Literal(typesystem.Real, n.Line(), vm.Real(n.Token.Literal.(float64))), nil
	case ast.BoolLiteral:
		return expr.Literal(typesystem.Bool, n.Line(), vm.Bool(n.Text() == "true")), nil
	case ast.PatternLit:
		return a.pattern(n)
	case ast.Variable:
		return a.variable(n)
	case ast.FuncCall:
		return a.call(n)
	case ast.BinaryOp:
		return a.binary(n)
	case ast.Negation:
		return a.negation(n)
	case ast.Item:
		return a.item(n)
	case ast.ColorRef:
		return a.colorRef(n)
	case ast.Orient:
		return a.orient(n)
	}
	return nil, diagnostics.NewError(diagnostics.ErrC001, n.Span, "%s cannot be used as a value", n.Kind)
}

// expression translates n into an expression, wrapping control flow.
func (a *Analyzer) expression(n *ast.Node) (*expr.Expression, error) {
	node, err := a.node(n)
	if err != nil {
		return nil, err
	}
	return expr.Wrap(node), nil
}

// typed translates n and checks that its value can be stored where a
// value of type want is expected.
func (a *Analyzer) typed(n *ast.Node, want typesystem.Type) (*expr.Expression, error) {
	e, err := a.expression(n)
	if err != nil {
		return nil, err
	}
	if err := assertType(n, e, want); err != nil {
		return nil, err
	}
	return e, nil
}

func assertType(n *ast.Node, e *expr.Expression, want typesystem.Type) error {
	if !typesystem.IsAssignable(want, e.Typ) {
		return diagnostics.NewValueTypeError(n.Span, want, e.Typ)
	}
	return nil
}

// assertTypeMsg is assertType with a custom message.
func assertTypeMsg(n *ast.Node, e *expr.Expression, want typesystem.Type, msg string) error {
	if !typesystem.IsAssignable(want, e.Typ) {
		err := diagnostics.NewValueTypeError(n.Span, want, e.Typ)
		err.Message = msg
		return err
	}
	return nil
}

// typeOf resolves a type annotation.
func typeOf(n *ast.Node) (typesystem.Type, error) {
	switch n.Kind {
	case ast.ListType, ast.SetType:
		item, err := typeOf(n.Children[0])
		if err != nil {
			return nil, err
		}
		if item == typesystem.Void {
			return nil, diagnostics.NewError(diagnostics.ErrC001, n.Span, "collections of %s are not allowed", config.VoidTypeName)
		}
		if n.Kind == ast.SetType {
			return typesystem.Set(item), nil
		}
		return typesystem.List(item), nil
	case ast.TypeName:
		if t, ok := typesystem.FromName(n.Text()); ok {
			return t, nil
		}
	}
	return nil, diagnostics.NewError(diagnostics.ErrC001, n.Span, "unknown type %s", n.Text())
}

// refs returns the template references 0..n-1.
func refs(n int) []vm.Term {
	out := make([]vm.Term, n)
	for i := range out {
		out[i] = vm.Ref{Index: i}
	}
	return out
}
