// Package prettyprinter renders parse trees back to CubeLang source in a
// canonical layout: four-space indentation, one space around binary
// operators and parentheses only where precedence needs them. Comments are
// not part of the tree and are not reproduced.
package prettyprinter

import (
	"bytes"
	"strings"

	"github.com/funvibe/cubelang/internal/ast"
	"github.com/funvibe/cubelang/internal/token"
)

// Operands of unary minus bind tighter than any binary level.
const unaryLevel = 1 << 10

type CodePrinter struct {
	buf       bytes.Buffer
	indent    int
	lineWidth int // max width of a line of moves (0 = unlimited)
	column    int // current column position
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{lineWidth: 100}
}

func NewCodePrinterWithWidth(width int) *CodePrinter {
	return &CodePrinter{lineWidth: width}
}

func (p *CodePrinter) SetLineWidth(width int) {
	p.lineWidth = width
}

// Format renders a whole program.
func Format(root *ast.Node) string {
	p := NewCodePrinter()
	p.PrintProgram(root)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
	p.column = p.indent * 4
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
	p.column += len(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteByte('\n')
	p.column = 0
}

// PrintProgram prints the statements of a Program node, separating
// function declarations from their neighbours by a blank line.
func (p *CodePrinter) PrintProgram(root *ast.Node) {
	if root == nil {
		return
	}
	for i, stmt := range root.Children {
		if i > 0 && (stmt.Kind == ast.FuncDecl || root.Children[i-1].Kind == ast.FuncDecl) {
			p.writeln()
		}
		p.printStatement(stmt)
	}
}

func (p *CodePrinter) printClause(clause *ast.Node) {
	p.indent++
	for _, stmt := range clause.Children {
		p.printStatement(stmt)
	}
	p.indent--
}

func (p *CodePrinter) printStatement(stmt *ast.Node) {
	if stmt.Kind == ast.Moves {
		p.printMoves(stmt)
		return
	}
	p.writeIndent()
	switch stmt.Kind {
	case ast.VarDecl:
		p.printVarDecl(stmt)
	case ast.VarAssign:
		p.printExpr(stmt.Children[0], 0)
		p.write(" = ")
		p.printExpr(stmt.Children[1], 0)
	case ast.FuncDecl:
		p.printFuncDecl(stmt)
	case ast.Return:
		p.write("return")
		if len(stmt.Children) > 0 {
			p.write(" ")
			p.printExpr(stmt.Children[0], 0)
		}
	default:
		p.printExpr(stmt, 0)
	}
	p.writeln()
}

func (p *CodePrinter) printVarDecl(n *ast.Node) {
	p.write("let ")
	i := 0
	for ; n.Children[i].Kind == ast.Variable; i++ {
		if i > 0 {
			p.write(", ")
		}
		p.write(n.Children[i].Text())
	}
	p.write(": ")
	p.printType(n.Children[i])
	if i+1 < len(n.Children) {
		p.write(" = ")
		p.printExpr(n.Children[i+1], 0)
	}
}

func (p *CodePrinter) printType(n *ast.Node) {
	switch n.Kind {
	case ast.ListType:
		p.write("list of ")
		p.printType(n.Children[0])
	case ast.SetType:
		p.write("set of ")
		p.printType(n.Children[0])
	default:
		p.write(n.Text())
	}
}

func (p *CodePrinter) printFuncDecl(n *ast.Node) {
	name, params, ret, body := n.Children[0], n.Children[1], n.Children[2], n.Children[3]
	p.write("func " + name.Text() + "(")
	for i, param := range params.Children {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Children[0].Text() + ": ")
		p.printType(param.Children[1])
	}
	p.write(")")
	if ret != nil {
		p.write(": ")
		p.printType(ret)
	}
	p.writeln()
	p.printClause(body)
	p.writeIndent()
	p.write("end")
}

// printMoves prints a run of moves, starting a new line whenever the next
// move would pass the line width. Consecutive lines of moves run in the
// same order as a single one.
func (p *CodePrinter) printMoves(n *ast.Node) {
	p.writeIndent()
	start := p.column
	for _, move := range n.Children {
		text := moveText(move)
		if p.column > start && p.lineWidth > 0 && p.column+1+len(text) > p.lineWidth {
			p.writeln()
			p.writeIndent()
		} else if p.column > start {
			p.write(" ")
		}
		p.write(text)
	}
	p.writeln()
}

func moveText(move *ast.Node) string {
	if move.Kind == ast.Rotation || len(move.Children) == 0 {
		return move.Text()
	}
	sub := &CodePrinter{}
	sub.write(move.Text() + "[")
	for i, r := range move.Children {
		if i > 0 {
			sub.write(", ")
		}
		sub.printLayerRange(r)
	}
	sub.write("]")
	return sub.String()
}

func (p *CodePrinter) printLayerRange(r *ast.Node) {
	switch {
	case r.HasStart && r.HasEnd:
		p.printExpr(r.Children[0], 0)
		p.write(":")
		p.printExpr(r.Children[1], 0)
	case r.HasEnd:
		p.write(":")
		p.printExpr(r.Children[0], 0)
	case r.Token.Type == token.COLON:
		p.printExpr(r.Children[0], 0)
		p.write(":")
	default:
		p.printExpr(r.Children[0], 0)
	}
}

// printExpr prints an expression, adding parentheses when it binds looser
// than level. Binary operators are left-associative, so a right operand of
// the same level is bracketed by passing level+1.
func (p *CodePrinter) printExpr(n *ast.Node, level int) {
	switch n.Kind {
	case ast.BinaryOp:
		own := n.Operator.Level
		needParens := own < level
		if needParens {
			p.write("(")
		}
		p.printExpr(n.Children[0], own)
		p.write(" " + n.Text() + " ")
		p.printExpr(n.Children[1], own+1)
		if needParens {
			p.write(")")
		}
	case ast.Negation:
		p.write("-")
		p.printExpr(n.Children[0], unaryLevel)
	case ast.FuncCall:
		p.write(n.Children[0].Text() + "(")
		for i, arg := range n.Children[1:] {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(arg, 0)
		}
		p.write(")")
	case ast.Item:
		p.printOperand(n.Children[0])
		p.write("[")
		p.printExpr(n.Children[1], 0)
		p.write("]")
	case ast.ColorRef:
		p.printOperand(n.Children[0])
		p.write("[")
		p.printExpr(n.Children[1], 0)
		p.write(", ")
		p.printExpr(n.Children[2], 0)
		p.write("]")
	case ast.If:
		p.printIf(n)
	case ast.While:
		p.write("while ")
		p.printExpr(n.Children[0], 0)
		p.write(" do")
		p.printBody(n.Children[1])
	case ast.DoWhile:
		p.write("do")
		p.writeln()
		p.printClause(n.Children[0])
		p.writeIndent()
		p.write("while ")
		p.printExpr(n.Children[1], 0)
	case ast.Repeat:
		p.write("repeat ")
		p.printExpr(n.Children[0], 0)
		p.write(" times")
		p.printBody(n.Children[1])
	case ast.For:
		p.write("for " + n.Children[0].Text() + " in ")
		p.printExpr(n.Children[1], 0)
		p.write(" do")
		p.printBody(n.Children[2])
	default:
		p.write(n.Text())
	}
}

// printOperand prints the collection of an item or color reference, which
// must be a primary expression.
func (p *CodePrinter) printOperand(n *ast.Node) {
	switch n.Kind {
	case ast.BinaryOp, ast.Negation:
		p.write("(")
		p.printExpr(n, 0)
		p.write(")")
	default:
		p.printExpr(n, unaryLevel)
	}
}

func (p *CodePrinter) printBody(clause *ast.Node) {
	p.writeln()
	p.printClause(clause)
	p.writeIndent()
	p.write("end")
}

func (p *CodePrinter) printIf(n *ast.Node) {
	for i := 0; i+1 < len(n.Children); i += 2 {
		cond, body := n.Children[i], n.Children[i+1]
		if i > 0 {
			p.writeIndent()
		}
		if cond.Kind == ast.Orient {
			if i == 0 {
				p.write("orient ")
			} else {
				p.write("else-orient ")
			}
			p.printOrientParams(cond)
		} else {
			if i == 0 {
				p.write("if ")
			} else {
				p.write("else-if ")
			}
			p.printExpr(cond, 0)
		}
		p.write(" then")
		p.writeln()
		p.printClause(body)
	}
	if len(n.Children)%2 == 1 {
		p.writeIndent()
		p.write("else")
		p.writeln()
		p.printClause(n.Children[len(n.Children)-1])
	}
	p.writeIndent()
	p.write("end")
}

func (p *CodePrinter) printOrientParams(n *ast.Node) {
	parts := make([]string, 0, len(n.Children))
	for _, param := range n.Children {
		sub := &CodePrinter{indent: p.indent}
		sub.printExpr(param.Children[1], 0)
		parts = append(parts, param.Children[0].Text()+": "+sub.String())
	}
	p.write(strings.Join(parts, ", "))
}
