// Package ast defines the parse tree handed from the parser to the
// analyzer: kind-tagged nodes with ordered children, the token they were
// built from and the source span they cover.
package ast

import (
	"fmt"
	"strings"

	"github.com/funvibe/cubelang/internal/token"
)

type Kind string

const (
	Program      Kind = "program"
	Clause       Kind = "clause"
	IntLiteral   Kind = "int_literal"
	FloatLiteral Kind = "float_literal"
	BoolLiteral  Kind = "bool_literal"
	Variable     Kind = "variable"
	TypeName     Kind = "type"                 // Token is the scalar type keyword
	ListType     Kind = "list_type"            // [item type]
	SetType      Kind = "set_type"             // [item type]
	VarDecl      Kind = "var_decl"             // [name..., type, value?]
	VarAssign    Kind = "var_assignment"       // [target, value]
	FuncDecl     Kind = "func_decl"            // [name, params, return type or nil, clause]
	FuncParams   Kind = "func_params"          // [param...]
	FuncParam    Kind = "func_param"           // [name, type]
	FuncCall     Kind = "func_call"            // [name, arg...]
	Return       Kind = "return_statement"
	If           Kind = "if_expression"        // [cond, clause, (cond, clause)..., else clause?]
	While        Kind = "while_expression"
	DoWhile      Kind = "do_expression"        // [clause, cond]
	Repeat       Kind = "repeat_expression"    // [times, clause]
	For          Kind = "for_expression"       // [name, collection, clause]
	Negation     Kind = "negation"
	BinaryOp     Kind = "binary_operator"
	Item         Kind = "collection_item"      // [collection, index]
	ColorRef     Kind = "cube_color_reference"
	Moves        Kind = "cube_instruction"     // [turn or rotation...]
	Turn         Kind = "cube_turning"         // Token is the move, children are layer ranges
	Rotation     Kind = "cube_rotation"        // Token is the move
	LayerRange   Kind = "layer_range"          // [start?, end?], Token is ':' when open or closed range
	PatternLit   Kind = "pattern"
	Orient       Kind = "orient_params"        // [orient_param...]
	OrientParam  Kind = "orient_param"         // [key, value]
)

// Operator locates a binary operator in the precedence table.
type Operator struct {
	Level    int
	Position int
}

type Node struct {
	Kind     Kind
	Children []*Node
	Token    token.Token
	Span     token.Span
	Operator Operator
	// HasStart and HasEnd tell which bounds a LayerRange carries.
	HasStart bool
	HasEnd   bool
}

// New builds a node spanning its token and children.
func New(kind Kind, tok token.Token, children ...*Node) *Node {
	n := &Node{Kind: kind, Token: tok, Children: children}
	if tok.Line > 0 {
		n.Span = tok.Span()
	}
	for _, c := range children {
		if c != nil {
			n.Span = n.Span.Cover(c.Span)
		}
	}
	return n
}

// Extend grows the span of n to include tok.
func (n *Node) Extend(tok token.Token) *Node {
	if tok.Line > 0 {
		n.Span = n.Span.Cover(tok.Span())
	}
	return n
}

// Line returns the first source line of the node.
func (n *Node) Line() int { return n.Span.StartLine }

// Text is the lexeme of the node's token.
func (n *Node) Text() string { return n.Token.Lexeme }

// String renders the tree as an s-expression, used by tests and the -ast
// flag of the CLI.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("nil")
		return
	}
	switch n.Kind {
	case IntLiteral, FloatLiteral, BoolLiteral, Variable, TypeName, PatternLit, Rotation:
		sb.WriteString(n.Token.Lexeme)
		return
	}
	sb.WriteString("(")
	switch n.Kind {
	case BinaryOp:
		sb.WriteString(n.Token.Lexeme)
	case Turn:
		sb.WriteString(n.Token.Lexeme)
	case LayerRange:
		sb.WriteString(fmt.Sprintf("range %v:%v", n.HasStart, n.HasEnd))
	default:
		sb.WriteString(string(n.Kind))
	}
	for _, c := range n.Children {
		sb.WriteString(" ")
		c.write(sb)
	}
	sb.WriteString(")")
}
