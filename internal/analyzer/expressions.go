package analyzer

import (
	"github.com/funvibe/cubelang/internal/ast"
	"github.com/funvibe/cubelang/internal/diagnostics"
	"github.com/funvibe/cubelang/internal/expr"
	"github.com/funvibe/cubelang/internal/operators"
	"github.com/funvibe/cubelang/internal/symbols"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

// symbolTerm is the term reading sym.
func symbolTerm(sym symbols.Symbol) vm.Term {
	switch sym.Kind {
	case symbols.FunctionSymbol:
		return vm.FuncRef{Index: sym.Func, Name: sym.Name}
	case symbols.GlobalSymbol:
		return vm.Global{Name: sym.Name}
	}
	return vm.Local{Slot: sym.Slot, Name: sym.Name}
}

func (a *Analyzer) variable(n *ast.Node) (*expr.Expression, error) {
	sym, ok := a.st.Lookup(n.Text())
	if !ok {
		return nil, diagnostics.NewUnresolvedReferenceError(n.Span, n.Text())
	}
	return expr.New(sym.Type, n.Line(), symbolTerm(sym)), nil
}

// call resolves the callee and picks the first overload accepting the
// argument types.
func (a *Analyzer) call(n *ast.Node) (*expr.Expression, error) {
	nameNode := n.Children[0]
	name := nameNode.Text()
	sym, ok := a.st.Lookup(name)
	if !ok {
		return nil, diagnostics.NewUnresolvedReferenceError(nameNode.Span, name)
	}
	fn, ok := sym.Type.(*typesystem.Function)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrC002, nameNode.Span, "`%s` is not a function", name)
	}

	argNodes := n.Children[1:]
	args := make([]*expr.Expression, len(argNodes))
	types := make([]typesystem.Type, len(argNodes))
	for i, argNode := range argNodes {
		arg, err := a.expression(argNode)
		if err != nil {
			return nil, err
		}
		args[i], types[i] = arg, arg.Typ
	}

	ret, ok := fn.Resolve(types)
	if !ok {
		return nil, diagnostics.NewFunctionArgumentsError(n.Span, name, types, fn)
	}
	template := vm.Call{Callee: symbolTerm(sym), Args: refs(len(args))}
	return expr.Merge(ret, template, args...).At(n.Line()), nil
}

func (a *Analyzer) binary(n *ast.Node) (*expr.Expression, error) {
	op := operators.Groups[n.Operator.Level][n.Operator.Position]
	left, err := a.expression(n.Children[0])
	if err != nil {
		return nil, err
	}
	right, err := a.expression(n.Children[1])
	if err != nil {
		return nil, err
	}
	t := op.Apply(left.Typ, right.Typ)
	if t == nil {
		return nil, diagnostics.NewError(diagnostics.ErrC010, n.Span,
			"operator `%s` cannot be applied to %s and %s", op.Symbol, left.Typ, right.Typ)
	}
	return expr.Merge(t, op.Template, left, right), nil
}

func (a *Analyzer) negation(n *ast.Node) (*expr.Expression, error) {
	x, err := a.typed(n.Children[0], typesystem.Real)
	if err != nil {
		return nil, err
	}
	return expr.Merge(x.Typ, vm.Unary{Op: vm.OpNeg, X: vm.Ref{Index: 0}}, x).At(n.Line()), nil
}

func (a *Analyzer) item(n *ast.Node) (*expr.Expression, error) {
	list, index, err := a.listAndIndex(n)
	if err != nil {
		return nil, err
	}
	t := list.Typ.(typesystem.Collection).Item
	return expr.Merge(t, vm.Index{X: vm.Ref{Index: 0}, I: vm.Ref{Index: 1}}, list, index), nil
}

// listAndIndex checks the operands of x[i]: x must be a list and i an
// integer.
func (a *Analyzer) listAndIndex(n *ast.Node) (list, index *expr.Expression, err error) {
	list, err = a.expression(n.Children[0])
	if err != nil {
		return nil, nil, err
	}
	if c, ok := list.Typ.(typesystem.Collection); !ok || c.Ctor != typesystem.ListCtor {
		return nil, nil, diagnostics.NewValueTypeError(n.Children[0].Span, typesystem.List(typesystem.T), list.Typ)
	}
	index, err = a.typed(n.Children[1], typesystem.Integer)
	if err != nil {
		return nil, nil, err
	}
	return list, index, nil
}
