package analyzer

import (
	"github.com/funvibe/cubelang/internal/ast"
	"github.com/funvibe/cubelang/internal/diagnostics"
	"github.com/funvibe/cubelang/internal/expr"
	"github.com/funvibe/cubelang/internal/symbols"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

// condition translates the test of a branch or loop. Orient heads are
// calls of the orient operation.
func (a *Analyzer) condition(n *ast.Node) (*expr.Expression, error) {
	if n.Kind == ast.Orient {
		return a.orient(n)
	}
	return a.typed(n, typesystem.Bool)
}

func (a *Analyzer) ifExpression(n *ast.Node) (*expr.Condition, error) {
	children := n.Children
	branches := make([]expr.Branch, 0, len(children)/2)
	for i := 0; i+1 < len(children); i += 2 {
		cond, err := a.condition(children[i])
		if err != nil {
			return nil, err
		}
		body, err := a.clause(children[i+1])
		if err != nil {
			return nil, err
		}
		branches = append(branches, expr.Branch{Cond: cond, Body: body})
	}

	var elseBody []expr.Node
	if len(children)%2 == 1 {
		body, err := a.clause(children[len(children)-1])
		if err != nil {
			return nil, err
		}
		elseBody = body
	}
	return expr.NewCondition(n.Line(), branches, elseBody), nil
}

func (a *Analyzer) whileLoop(n *ast.Node) (*expr.WhileLoop, error) {
	cond, err := a.condition(n.Children[0])
	if err != nil {
		return nil, err
	}
	body, err := a.clause(n.Children[1])
	if err != nil {
		return nil, err
	}
	return &expr.WhileLoop{LineNo: n.Line(), Cond: cond, Body: body}, nil
}

func (a *Analyzer) doWhileLoop(n *ast.Node) (*expr.DoWhileLoop, error) {
	body, err := a.clause(n.Children[0])
	if err != nil {
		return nil, err
	}
	cond, err := a.condition(n.Children[1])
	if err != nil {
		return nil, err
	}
	return &expr.DoWhileLoop{LineNo: n.Line(), Cond: cond, Body: body}, nil
}

func (a *Analyzer) repeatLoop(n *ast.Node) (*expr.RepeatLoop, error) {
	times, err := a.expression(n.Children[0])
	if err != nil {
		return nil, err
	}
	if err := assertTypeMsg(n.Children[0], times, typesystem.Integer, "Iterations count must be integer"); err != nil {
		return nil, err
	}
	body, err := a.clause(n.Children[1])
	if err != nil {
		return nil, err
	}
	return &expr.RepeatLoop{LineNo: n.Line(), Times: times, Body: body}, nil
}

// forLoop reuses a visible local of the same name when the items can be
// stored in it; otherwise the loop declares its own variable.
func (a *Analyzer) forLoop(n *ast.Node) (*expr.ForLoop, error) {
	nameNode, collNode, bodyNode := n.Children[0], n.Children[1], n.Children[2]
	coll, err := a.expression(collNode)
	if err != nil {
		return nil, err
	}
	c, ok := coll.Typ.(typesystem.Collection)
	if !ok {
		return nil, diagnostics.NewValueTypeError(collNode.Span, typesystem.List(typesystem.T), coll.Typ)
	}

	a.st.PushScope()
	defer a.st.PopScope()

	name := nameNode.Text()
	sym, ok := a.st.Lookup(name)
	if ok && sym.Kind == symbols.VariableSymbol {
		if !typesystem.IsAssignable(sym.Type, c.Item) {
			return nil, diagnostics.NewValueTypeError(nameNode.Span, sym.Type, c.Item)
		}
	} else {
		sym = a.st.DeclareLocal(name, c.Item)
	}

	body, err := a.statements(bodyNode.Children)
	if err != nil {
		return nil, err
	}
	return &expr.ForLoop{
		LineNo:     n.Line(),
		Var:        vm.Local{Slot: sym.Slot, Name: sym.Name},
		Collection: coll,
		Body:       body,
	}, nil
}
