package parser

import (
	"github.com/funvibe/cubelang/internal/ast"
	"github.com/funvibe/cubelang/internal/token"
)

// parseIf parses both condition forms:
//
//	if cond then ... else-if cond then ... else ... end
//	orient top: {...} then ... else-orient left: {...} then ... end
//
// Both heads may be mixed within one chain.
func (p *Parser) parseIf() *ast.Node {
	ifTok := p.curToken
	var children []*ast.Node
	head := p.curToken
	for {
		var cond *ast.Node
		if head.Type == token.ORIENT || head.Type == token.ELSE_ORIENT {
			cond = p.parseOrientParams(head)
		} else {
			p.nextToken()
			cond = p.parseExpression()
		}
		if cond == nil || !p.expectPeek(token.THEN) {
			return nil
		}
		p.nextToken()
		body := p.parseClause(head, until(token.ELSEIF, token.ELSE_ORIENT, token.ELSE, token.END))
		if body == nil {
			return nil
		}
		children = append(children, cond, body)

		if p.curTokenIs(token.ELSEIF) || p.curTokenIs(token.ELSE_ORIENT) {
			head = p.curToken
			continue
		}
		break
	}
	if p.curTokenIs(token.ELSE) {
		elseTok := p.curToken
		p.nextToken()
		body := p.parseClause(elseTok, until(token.END))
		if body == nil {
			return nil
		}
		children = append(children, body)
	}
	return ast.New(ast.If, ifTok, children...).Extend(p.curToken)
}

// parseOrientParams parses "key: value, ..." after an orient keyword.
func (p *Parser) parseOrientParams(head token.Token) *ast.Node {
	orient := ast.New(ast.Orient, head)
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		key := ast.New(ast.Variable, p.curToken)
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		orient.Children = append(orient.Children, ast.New(ast.OrientParam, key.Token, key, value))
		orient.Span = orient.Span.Cover(value.Span)
		if !p.peekTokenIs(token.COMMA) {
			return orient
		}
		p.nextToken()
	}
}

// while cond do ... end
func (p *Parser) parseWhile() *ast.Node {
	whileTok := p.curToken
	p.nextToken()
	cond := p.parseExpression()
	if cond == nil || !p.expectPeek(token.DO) {
		return nil
	}
	p.nextToken()
	body := p.parseClause(whileTok, until(token.END))
	if body == nil {
		return nil
	}
	return ast.New(ast.While, whileTok, cond, body).Extend(p.curToken)
}

// do ... while cond
//
// A "while" opening a line inside the body starts a nested loop when the
// line also holds its "do"; otherwise it closes the body.
func (p *Parser) parseDo() *ast.Node {
	doTok := p.curToken
	p.nextToken()
	body := p.parseClause(doTok, func(tok token.Token) bool {
		return tok.Type == token.WHILE && !p.lineHasDo()
	})
	if body == nil {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	return ast.New(ast.DoWhile, doTok, body, cond)
}

// lineHasDo reports whether a DO token follows the current token on the
// same line.
func (p *Parser) lineHasDo() bool {
	for i := p.peekIndex; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case token.DO:
			return true
		case token.NEWLINE, token.EOF:
			return false
		}
	}
	return false
}

// repeat n times ... end
func (p *Parser) parseRepeat() *ast.Node {
	repeatTok := p.curToken
	p.nextToken()
	times := p.parseExpression()
	if times == nil || !p.expectPeek(token.TIMES) {
		return nil
	}
	p.nextToken()
	body := p.parseClause(repeatTok, until(token.END))
	if body == nil {
		return nil
	}
	return ast.New(ast.Repeat, repeatTok, times, body).Extend(p.curToken)
}

// for name in collection do ... end
func (p *Parser) parseFor() *ast.Node {
	forTok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := ast.New(ast.Variable, p.curToken)
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	collection := p.parseExpression()
	if collection == nil || !p.expectPeek(token.DO) {
		return nil
	}
	p.nextToken()
	body := p.parseClause(forTok, until(token.END))
	if body == nil {
		return nil
	}
	return ast.New(ast.For, forTok, name, collection, body).Extend(p.curToken)
}
