package analyzer

import (
	"github.com/funvibe/cubelang/internal/ast"
	"github.com/funvibe/cubelang/internal/config"
	"github.com/funvibe/cubelang/internal/diagnostics"
	"github.com/funvibe/cubelang/internal/expr"
	"github.com/funvibe/cubelang/internal/symbols"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

// varDecl declares every name of a let statement. The initializer is
// checked once, before the names become visible, and is evaluated again
// for each name.
func (a *Analyzer) varDecl(n *ast.Node) ([]expr.Node, error) {
	names := n.Children[:len(n.Children)-1]
	typeNode := n.Children[len(n.Children)-1]
	var value *ast.Node
	if last := n.Children[len(n.Children)-1]; last.Kind != ast.TypeName && last.Kind != ast.ListType && last.Kind != ast.SetType {
		value = last
		names = n.Children[:len(n.Children)-2]
		typeNode = n.Children[len(n.Children)-2]
	}

	t, err := typeOf(typeNode)
	if err != nil {
		return nil, err
	}
	if t == typesystem.Void {
		return nil, diagnostics.NewError(diagnostics.ErrC001, typeNode.Span, "variables of type %s are not allowed", config.VoidTypeName)
	}

	init := expr.New(t, n.Line(), expr.DefaultValue(t))
	if value != nil {
		if init, err = a.typed(value, t); err != nil {
			return nil, err
		}
	}

	out := make([]expr.Node, 0, len(names))
	for _, name := range names {
		sym := a.st.DeclareLocal(name.Text(), t)
		dest := vm.Local{Slot: sym.Slot, Name: sym.Name}
		out = append(out, expr.Merge(typesystem.Void, vm.Assign{Dest: dest, Value: vm.Ref{Index: 0}}, init).At(n.Line()))
	}
	return out, nil
}

// assignment stores into a variable or a list element.
func (a *Analyzer) assignment(n *ast.Node) (*expr.Expression, error) {
	target, valueNode := n.Children[0], n.Children[1]

	if target.Kind == ast.Item {
		list, index, err := a.listAndIndex(target)
		if err != nil {
			return nil, err
		}
		value, err := a.typed(valueNode, list.Typ.(typesystem.Collection).Item)
		if err != nil {
			return nil, err
		}
		template := vm.Assign{
			Dest:  vm.Index{X: vm.Ref{Index: 0}, I: vm.Ref{Index: 1}},
			Value: vm.Ref{Index: 2},
		}
		return expr.Merge(typesystem.Void, template, list, index, value).At(n.Line()), nil
	}

	name := target.Text()
	sym, ok := a.st.Lookup(name)
	if !ok {
		return nil, diagnostics.NewUnresolvedReferenceError(target.Span, name)
	}
	if sym.Kind != symbols.VariableSymbol {
		return nil, diagnostics.NewError(diagnostics.ErrC007, target.Span, "Attempting to write to readonly value `%s`", name)
	}
	value, err := a.typed(valueNode, sym.Type)
	if err != nil {
		return nil, err
	}
	dest := vm.Local{Slot: sym.Slot, Name: sym.Name}
	return expr.Merge(typesystem.Void, vm.Assign{Dest: dest, Value: vm.Ref{Index: 0}}, value).At(n.Line()), nil
}

// funcDecl declares the function before its body is translated, so the
// body can call it. The body gets a symbol table of its own: parameters
// take the first slots and the locals of enclosing blocks are not visible.
func (a *Analyzer) funcDecl(n *ast.Node) (*expr.FunctionDecl, error) {
	nameNode, params, retNode, body := n.Children[0], n.Children[1], n.Children[2], n.Children[3]

	ret := typesystem.Type(typesystem.Void)
	if retNode != nil {
		t, err := typeOf(retNode)
		if err != nil {
			return nil, err
		}
		ret = t
	}

	paramTypes := make([]typesystem.Type, len(params.Children))
	for i, p := range params.Children {
		t, err := typeOf(p.Children[1])
		if err != nil {
			return nil, err
		}
		if t == typesystem.Void {
			return nil, diagnostics.NewError(diagnostics.ErrC001, p.Span, "parameters of type %s are not allowed", config.VoidTypeName)
		}
		paramTypes[i] = t
	}

	index := a.funcs
	a.funcs++
	a.st.DeclareFunction(nameNode.Text(), typesystem.NewFunction(paramTypes, ret), index)

	outer := a.st
	a.st = outer.EnterFunction(ret)
	defer func() { a.st = outer }()

	for i, p := range params.Children {
		a.st.DeclareLocal(p.Children[0].Text(), paramTypes[i])
	}
	nodes, err := a.statements(body.Children)
	if err != nil {
		return nil, err
	}
	return &expr.FunctionDecl{
		LineNo: n.Line(),
		Name:   nameNode.Text(),
		Index:  index,
		Arity:  len(paramTypes),
		Locals: a.st.Pool().HighWater(),
		Return: ret,
		Body:   nodes,
	}, nil
}

func (a *Analyzer) returnStatement(n *ast.Node) (*expr.Return, error) {
	if !a.st.InFunction() {
		return nil, diagnostics.NewError(diagnostics.ErrC008, n.Span, "`return` cannot be used outside of the function body")
	}
	ret := a.st.ReturnType()
	if len(n.Children) == 0 {
		if ret != typesystem.Void {
			return nil, diagnostics.NewError(diagnostics.ErrC009, n.Span, "A value must be returned from this function")
		}
		return &expr.Return{LineNo: n.Line()}, nil
	}
	value, err := a.typed(n.Children[0], ret)
	if err != nil {
		return nil, err
	}
	return &expr.Return{LineNo: n.Line(), Value: value}, nil
}
