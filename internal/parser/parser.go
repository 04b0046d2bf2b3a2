// Package parser builds the parse tree of a CubeLang program from its
// tokens. Statements end at a newline; inside parentheses and brackets
// newlines are ignored.
package parser

import (
	"fmt"
	"strings"

	"github.com/funvibe/cubelang/internal/ast"
	"github.com/funvibe/cubelang/internal/diagnostics"
	"github.com/funvibe/cubelang/internal/pipeline"
	"github.com/funvibe/cubelang/internal/token"
)

type Parser struct {
	tokens    []token.Token
	pos       int
	peekIndex int

	curToken  token.Token
	peekToken token.Token

	// depth counts the open parentheses and brackets.
	depth  int
	failed bool
	ctx    *pipeline.PipelineContext
}

func New(tokens []token.Token, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{tokens: tokens, ctx: ctx}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) read() token.Token {
	p.peekIndex = p.pos
	if p.pos >= len(p.tokens) {
		if len(p.tokens) > 0 && p.tokens[len(p.tokens)-1].Type == token.EOF {
			p.peekIndex = len(p.tokens) - 1
			return p.tokens[len(p.tokens)-1]
		}
		return token.Token{Type: token.EOF}
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.read()
	for p.depth > 0 && p.curToken.Type == token.NEWLINE {
		p.curToken = p.peekToken
		p.peekToken = p.read()
	}
}

func (p *Parser) peek() token.Token {
	for p.depth > 0 && p.peekToken.Type == token.NEWLINE {
		p.peekToken = p.read()
	}
	return p.peekToken
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken, "expected %s, got %s", describeType(t), describe(p.peekToken))
	return false
}

// open and close bracket a parenthesized region: newlines inside are
// skipped.
func (p *Parser) open()  { p.depth++ }
func (p *Parser) close() { p.depth-- }

// errorf records a syntax error. Only the first error is kept: parsing
// stops there.
func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	if p.failed {
		return
	}
	p.failed = true
	err := diagnostics.NewError(diagnostics.ErrP001, tok.Span(), format, args...)
	err.File = p.ctx.FilePath
	p.ctx.Errors = append(p.ctx.Errors, err)
}

func (p *Parser) unexpected(tok token.Token) {
	if tok.Type == token.ILLEGAL {
		p.errorf(tok, "%s", describe(tok))
		return
	}
	p.errorf(tok, "unexpected %s", describe(tok))
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "end of line"
	case token.ILLEGAL:
		if msg, ok := tok.Literal.(string); ok && msg != tok.Lexeme {
			return msg
		}
		return fmt.Sprintf("character %q", tok.Lexeme)
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

func describeType(t token.TokenType) string {
	switch t {
	case token.IDENT:
		return "a name"
	case token.NEWLINE:
		return "end of line"
	case token.EOF:
		return "end of input"
	case token.END, token.THEN, token.DO, token.TIMES, token.IN, token.OF, token.WHILE:
		return fmt.Sprintf("%q", strings.ToLower(string(t)))
	}
	return fmt.Sprintf("%q", string(t))
}

// ParseProgram parses the whole token stream. It returns nil when a syntax
// error was recorded.
func (p *Parser) ParseProgram() *ast.Node {
	stmts := p.parseStatements(func(token.Token) bool { return false })
	if p.failed {
		return nil
	}
	if !p.curTokenIs(token.EOF) {
		p.unexpected(p.curToken)
		return nil
	}
	return ast.New(ast.Program, token.Token{}, stmts...)
}
