package parser

import (
	"github.com/funvibe/cubelang/internal/ast"
	"github.com/funvibe/cubelang/internal/operators"
	"github.com/funvibe/cubelang/internal/token"
)

// parseExpression parses a full expression starting at the current token
// and leaves the current token on its last token.
func (p *Parser) parseExpression() *ast.Node {
	return p.parseBinary(0)
}

// parseBinary parses precedence level `level` of the operator table.
// Operands are the next tighter level; the tightest level bottoms out at
// unary expressions.
func (p *Parser) parseBinary(level int) *ast.Node {
	if level == len(operators.Groups) {
		return p.parseUnary()
	}
	left := p.parseBinary(level + 1)
	if left == nil {
		return nil
	}
	for {
		position := operators.Find(level, p.peek().Lexeme)
		if position < 0 {
			return left
		}
		p.nextToken()
		op := p.curToken
		p.nextToken()
		right := p.parseBinary(level + 1)
		if right == nil {
			return nil
		}
		node := ast.New(ast.BinaryOp, op, left, right)
		node.Operator = ast.Operator{Level: level, Position: position}
		left = node
	}
}

func (p *Parser) parseUnary() *ast.Node {
	if p.curTokenIs(token.MINUS) {
		minus := p.curToken
		p.nextToken()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return ast.New(ast.Negation, minus, operand)
	}
	return p.parsePostfix()
}

// parsePostfix parses list items x[i] and color references side[i, j].
func (p *Parser) parsePostfix() *ast.Node {
	x := p.parsePrimary()
	for x != nil && p.peekTokenIs(token.LBRACKET) {
		p.nextToken() // [
		p.open()
		p.nextToken()
		i := p.parseExpression()
		if i == nil {
			return nil
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			j := p.parseExpression()
			if j == nil || !p.expectPeek(token.RBRACKET) {
				return nil
			}
			p.close()
			x = ast.New(ast.ColorRef, x.Token, x, i, j).Extend(p.curToken)
			continue
		}
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		p.close()
		x = ast.New(ast.Item, x.Token, x, i).Extend(p.curToken)
	}
	return x
}

func (p *Parser) parsePrimary() *ast.Node {
	switch p.curToken.Type {
	case token.INT:
		return ast.New(ast.IntLiteral, p.curToken)
	case token.FLOAT:
		return ast.New(ast.FloatLiteral, p.curToken)
	case token.TRUE, token.FALSE:
		return ast.New(ast.BoolLiteral, p.curToken)
	case token.PATTERN:
		return ast.New(ast.PatternLit, p.curToken)
	case token.IDENT:
		if p.peekTokenIs(token.LPAREN) {
			return p.parseCall()
		}
		return ast.New(ast.Variable, p.curToken)
	case token.LPAREN:
		p.open()
		p.nextToken()
		inner := p.parseExpression()
		if inner == nil || !p.expectPeek(token.RPAREN) {
			return nil
		}
		p.close()
		return inner
	case token.IF, token.ORIENT:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDo()
	case token.REPEAT:
		return p.parseRepeat()
	case token.FOR:
		return p.parseFor()
	}
	p.unexpected(p.curToken)
	return nil
}

// parseCall parses name(args...). The current token is the name.
func (p *Parser) parseCall() *ast.Node {
	name := ast.New(ast.Variable, p.curToken)
	p.nextToken() // (
	p.open()
	children := []*ast.Node{name}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
	} else {
		for {
			p.nextToken()
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			children = append(children, arg)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
			break
		}
	}
	p.close()
	return ast.New(ast.FuncCall, name.Token, children...).Extend(p.curToken)
}
