package parser

import (
	"github.com/funvibe/cubelang/internal/ast"
	"github.com/funvibe/cubelang/internal/token"
)

// parseStatements parses statements until EOF or a token accepted by stop.
// The current token is left on that token.
func (p *Parser) parseStatements(stop func(token.Token) bool) []*ast.Node {
	var stmts []*ast.Node
	for {
		for p.curTokenIs(token.NEWLINE) {
			p.nextToken()
		}
		if p.curTokenIs(token.EOF) || stop(p.curToken) {
			return stmts
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)

		p.nextToken()
		if !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.EOF) && !stop(p.curToken) {
			p.errorf(p.curToken, "expected end of line, got %s", describe(p.curToken))
			return nil
		}
	}
}

// parseClause parses a block ended by one of the given keywords. The
// keyword itself is left as the current token.
func (p *Parser) parseClause(start token.Token, stop func(token.Token) bool) *ast.Node {
	stmts := p.parseStatements(stop)
	if p.failed {
		return nil
	}
	if p.curTokenIs(token.EOF) {
		p.errorf(start, "%s is never closed", describe(start))
		return nil
	}
	clause := ast.New(ast.Clause, token.Token{}, stmts...)
	if clause.Span.IsZero() {
		clause.Token = start
	}
	return clause
}

func until(types ...token.TokenType) func(token.Token) bool {
	return func(tok token.Token) bool {
		for _, t := range types {
			if tok.Type == t {
				return true
			}
		}
		return false
	}
}

func (p *Parser) parseStatement() *ast.Node {
	switch p.curToken.Type {
	case token.LET:
		return p.parseVarDecl()
	case token.FUNC:
		return p.parseFuncDecl()
	case token.RETURN:
		return p.parseReturn()
	case token.MOVE:
		return p.parseMoves()
	}
	return p.parseExpressionStatement()
}

// let a, b: type = value
func (p *Parser) parseVarDecl() *ast.Node {
	letTok := p.curToken
	var children []*ast.Node
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		children = append(children, ast.New(ast.Variable, p.curToken))
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	children = append(children, typ)

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken() // =
		p.nextToken()
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		children = append(children, value)
	}
	return ast.New(ast.VarDecl, letTok, children...)
}

// parseType parses a type starting at the current token.
func (p *Parser) parseType() *ast.Node {
	switch p.curToken.Type {
	case token.TYPE:
		return ast.New(ast.TypeName, p.curToken)
	case token.LIST, token.SET:
		ctor := p.curToken
		if !p.expectPeek(token.OF) {
			return nil
		}
		p.nextToken()
		item := p.parseType()
		if item == nil {
			return nil
		}
		kind := ast.ListType
		if ctor.Type == token.SET {
			kind = ast.SetType
		}
		return ast.New(kind, ctor, item)
	}
	p.errorf(p.curToken, "expected a type, got %s", describe(p.curToken))
	return nil
}

// func name(a: type, ...): type
//     ...
// end
func (p *Parser) parseFuncDecl() *ast.Node {
	funcTok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := ast.New(ast.Variable, p.curToken)
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params := ast.New(ast.FuncParams, p.curToken)
	p.open()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
	} else {
		for {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			paramName := ast.New(ast.Variable, p.curToken)
			if !p.expectPeek(token.COLON) {
				return nil
			}
			p.nextToken()
			typ := p.parseType()
			if typ == nil {
				return nil
			}
			params.Children = append(params.Children, ast.New(ast.FuncParam, paramName.Token, paramName, typ))
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
	params.Extend(p.curToken)

	var ret *ast.Node
	if p.peekTokenIs(token.COLON) {
		p.nextToken() // :
		p.nextToken()
		if ret = p.parseType(); ret == nil {
			return nil
		}
	}

	p.nextToken()
	body := p.parseClause(funcTok, until(token.END))
	if body == nil {
		return nil
	}
	return ast.New(ast.FuncDecl, funcTok, name, params, ret, body).Extend(p.curToken)
}

func (p *Parser) parseReturn() *ast.Node {
	ret := ast.New(ast.Return, p.curToken)
	switch p.peek().Type {
	case token.NEWLINE, token.EOF, token.END, token.ELSE, token.ELSEIF, token.ELSE_ORIENT:
		return ret
	}
	p.nextToken()
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return ast.New(ast.Return, ret.Token, value)
}

// parseMoves parses a run of cube moves such as RUR'U' or R[1:2]X2.
func (p *Parser) parseMoves() *ast.Node {
	var moves []*ast.Node
	for {
		move := p.parseMove()
		if move == nil {
			return nil
		}
		moves = append(moves, move)
		if !p.peekTokenIs(token.MOVE) {
			break
		}
		p.nextToken()
	}
	return ast.New(ast.Moves, moves[0].Token, moves...)
}

func (p *Parser) parseMove() *ast.Node {
	tok := p.curToken
	switch tok.Lexeme[0] {
	case 'X', 'Y', 'Z':
		return ast.New(ast.Rotation, tok)
	}
	turn := ast.New(ast.Turn, tok)
	if !p.peekTokenIs(token.LBRACKET) {
		return turn
	}
	p.nextToken() // [
	p.open()
	for {
		p.nextToken()
		r := p.parseLayerRange()
		if r == nil {
			return nil
		}
		turn.Children = append(turn.Children, r)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	p.close()
	return turn.Extend(p.curToken)
}

// parseLayerRange parses n, n:, :n or n:m.
func (p *Parser) parseLayerRange() *ast.Node {
	if p.curTokenIs(token.COLON) {
		colon := p.curToken
		p.nextToken()
		end := p.parseExpression()
		if end == nil {
			return nil
		}
		n := ast.New(ast.LayerRange, colon, end)
		n.HasEnd = true
		return n
	}

	start := p.parseExpression()
	if start == nil {
		return nil
	}
	if !p.peekTokenIs(token.COLON) {
		n := ast.New(ast.LayerRange, token.Token{}, start)
		n.HasStart = true
		return n
	}
	p.nextToken()
	colon := p.curToken
	if p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.RBRACKET) {
		n := ast.New(ast.LayerRange, colon, start)
		n.HasStart = true
		return n
	}
	p.nextToken()
	end := p.parseExpression()
	if end == nil {
		return nil
	}
	n := ast.New(ast.LayerRange, colon, start, end)
	n.HasStart, n.HasEnd = true, true
	return n
}

// parseExpressionStatement parses an expression, or an assignment when the
// expression is followed by "=".
func (p *Parser) parseExpressionStatement() *ast.Node {
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if !p.peekTokenIs(token.ASSIGN) {
		return expr
	}
	if expr.Kind != ast.Variable && expr.Kind != ast.Item {
		p.errorf(p.peekToken, "cannot assign to this expression")
		return nil
	}
	p.nextToken()
	assign := p.curToken
	p.nextToken()
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return ast.New(ast.VarAssign, assign, expr, value)
}
