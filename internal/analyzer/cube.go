package analyzer

import (
	"strings"

	"github.com/funvibe/cubelang/internal/ast"
	"github.com/funvibe/cubelang/internal/config"
	"github.com/funvibe/cubelang/internal/cube"
	"github.com/funvibe/cubelang/internal/diagnostics"
	"github.com/funvibe/cubelang/internal/expr"
	"github.com/funvibe/cubelang/internal/token"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

// Cube statements and queries lower to calls of hidden operations bound by
// the cube runtime.

func hidden(name string, args ...vm.Term) vm.Term {
	return vm.Call{Callee: vm.Global{Name: name}, Args: args}
}

// moves translates a run of moves into one call per move.
func (a *Analyzer) moves(n *ast.Node) ([]expr.Node, error) {
	out := make([]expr.Node, 0, len(n.Children))
	for _, m := range n.Children {
		var e *expr.Expression
		var err error
		if m.Kind == ast.Rotation {
			e = rotation(m)
		} else {
			e, err = a.turn(m)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// modifier splits a move lexeme into its letter and the number of quarter
// turns: none is 1, "2" is 2 and "'" is 3.
func modifier(lexeme string) (rune, int) {
	amount := 1
	switch {
	case strings.HasSuffix(lexeme, "2"):
		amount = 2
	case strings.HasSuffix(lexeme, "'"):
		amount = 3
	}
	return rune(lexeme[0]), amount
}

// turn builds cube_turn(side, amount, layers). A layer is an integer or a
// two-element list whose open ends are Ellipsis; without brackets the
// outer layer is turned.
func (a *Analyzer) turn(n *ast.Node) (*expr.Expression, error) {
	letter, amount := modifier(n.Text())
	side, _ := vm.SideFromLetter(letter)

	if len(n.Children) == 0 {
		layers := vm.MakeList{Items: []vm.Term{vm.Const{Value: vm.Int(1)}}}
		call := hidden(config.CubeTurnOp, vm.Const{Value: side}, vm.Const{Value: vm.Int(amount)}, layers)
		return expr.New(typesystem.Void, n.Line(), call), nil
	}

	var parts []*expr.Expression
	bound := func(b *ast.Node) (vm.Term, error) {
		e, err := a.typed(b, typesystem.Integer)
		if err != nil {
			return nil, err
		}
		parts = append(parts, e)
		return vm.Ref{Index: len(parts) - 1}, nil
	}
	open := vm.Const{Value: vm.Ellipsis{}}

	var layers []vm.Term
	for _, r := range n.Children {
		if r.Token.Type != token.COLON {
			t, err := bound(r.Children[0])
			if err != nil {
				return nil, err
			}
			layers = append(layers, t)
			continue
		}
		start, end := vm.Term(open), vm.Term(open)
		rest := r.Children
		if r.HasStart {
			t, err := bound(rest[0])
			if err != nil {
				return nil, err
			}
			start, rest = t, rest[1:]
		}
		if r.HasEnd {
			t, err := bound(rest[0])
			if err != nil {
				return nil, err
			}
			end = t
		}
		layers = append(layers, vm.MakeList{Items: []vm.Term{start, end}})
	}

	call := hidden(config.CubeTurnOp, vm.Const{Value: side}, vm.Const{Value: vm.Int(amount)}, vm.MakeList{Items: layers})
	return expr.Merge(typesystem.Void, call, parts...).At(n.Line()), nil
}

// rotation builds cube_rotate(side, twice). X turns like R, Y like U and
// Z like F; a prime rotates around the opposite side.
func rotation(n *ast.Node) *expr.Expression {
	letter, amount := modifier(n.Text())
	side := map[rune]vm.Side{'X': vm.Right, 'Y': vm.Top, 'Z': vm.Front}[letter]
	if amount == 3 {
		side = oppositeSide(side)
	}
	call := hidden(config.CubeRotateOp, vm.Const{Value: side}, vm.Const{Value: vm.Bool(amount == 2)})
	return expr.New(typesystem.Void, n.Line(), call)
}

func oppositeSide(s vm.Side) vm.Side {
	switch s {
	case vm.Right:
		return vm.Left
	case vm.Top:
		return vm.Bottom
	}
	return vm.Back
}

// colorRef builds cube_get_color(side, i, j) for side[i, j].
func (a *Analyzer) colorRef(n *ast.Node) (*expr.Expression, error) {
	side, err := a.typed(n.Children[0], typesystem.Side)
	if err != nil {
		return nil, err
	}
	indices := make([]*expr.Expression, 2)
	for k, c := range n.Children[1:] {
		e, err := a.expression(c)
		if err != nil {
			return nil, err
		}
		if err := assertTypeMsg(c, e, typesystem.Integer, "Cube side indices must be integers"); err != nil {
			return nil, err
		}
		indices[k] = e
	}
	call := hidden(config.CubeGetColorOp, refs(3)...)
	return expr.Merge(typesystem.Color, call, side, indices[0], indices[1]).At(n.Line()), nil
}

// pattern translates a pattern literal. Rows are separated by "/" and
// must have equal lengths; color letters are fixed cells, "-" matches
// anything and any other character names a variable.
func (a *Analyzer) pattern(n *ast.Node) (*expr.Expression, error) {
	text, _ := n.Token.Literal.(string)
	lines := strings.Split(text, "/")
	p := &vm.Pattern{Rows: make([][]vm.Cell, len(lines))}
	width := len([]rune(lines[0]))
	for i, line := range lines {
		row := []rune(line)
		if len(row) != width {
			return nil, diagnostics.NewError(diagnostics.ErrC011, n.Span, "Inconsistent line length in pattern literal")
		}
		cells := make([]vm.Cell, len(row))
		for j, ch := range row {
			switch c, ok := vm.ColorFromLetter(ch); {
			case ok:
				cells[j] = vm.Cell{Color: c, Fixed: true}
			case ch == '-':
				cells[j] = vm.Cell{}
			default:
				cells[j] = vm.Cell{Variable: string(ch)}
			}
		}
		p.Rows[i] = cells
	}
	return expr.Literal(typesystem.Pattern, n.Line(), p), nil
}

// orient builds a call of the orient operation with one argument per side
// and the side to keep; absent arguments are none.
func (a *Analyzer) orient(n *ast.Node) (*expr.Expression, error) {
	params := cube.OrientParams()
	args := make([]vm.Term, len(params))
	for i := range args {
		args[i] = vm.Const{Value: vm.Nil{}}
	}

	var parts []*expr.Expression
	seen := make(map[string]bool)
	patterns := false
	for _, param := range n.Children {
		keyNode, valueNode := param.Children[0], param.Children[1]
		key := keyNode.Text()
		if seen[key] {
			return nil, diagnostics.NewError(diagnostics.ErrC006, keyNode.Span, "Key %s has already been specified", key)
		}
		seen[key] = true

		position := -1
		for i, name := range params {
			if name == key {
				position = i
			}
		}
		if position < 0 {
			return nil, diagnostics.NewError(diagnostics.ErrC001, keyNode.Span, "unknown orient key %s", key)
		}

		want := typesystem.Pattern
		if key == config.OrientKeepingKey {
			want = typesystem.Side
		} else {
			patterns = true
		}
		value, err := a.typed(valueNode, want)
		if err != nil {
			return nil, err
		}
		args[position] = vm.Ref{Index: len(parts)}
		parts = append(parts, value)
	}
	if !patterns {
		return nil, diagnostics.NewError(diagnostics.ErrC001, n.Span, "No side patterns are present")
	}
	return expr.Merge(typesystem.Bool, hidden(config.OrientOp, args...), parts...).At(n.Line()), nil
}
