package token

import "fmt"

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

// End returns the column just past the token on its line.
func (t Token) End() int {
	return t.Column + len([]rune(t.Lexeme))
}

// Span returns the source range covered by the token.
func (t Token) Span() Span {
	return Span{StartLine: t.Line, StartColumn: t.Column, EndLine: t.Line, EndColumn: t.End()}
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

// Span is a range of source text. Lines and columns are 1-based and
// EndColumn is exclusive.
type Span struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// IsZero reports whether the span carries no position.
func (s Span) IsZero() bool { return s.StartLine == 0 }

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if s.IsZero() {
		return other
	}
	if other.IsZero() {
		return s
	}
	out := s
	if other.StartLine < out.StartLine || other.StartLine == out.StartLine && other.StartColumn < out.StartColumn {
		out.StartLine, out.StartColumn = other.StartLine, other.StartColumn
	}
	if other.EndLine > out.EndLine || other.EndLine == out.EndLine && other.EndColumn > out.EndColumn {
		out.EndLine, out.EndColumn = other.EndLine, other.EndColumn
	}
	return out
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartColumn, s.EndLine, s.EndColumn)
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"
	NEWLINE TokenType = "NEWLINE"

	IDENT   TokenType = "IDENT"
	INT     TokenType = "INT"
	FLOAT   TokenType = "FLOAT"
	MOVE    TokenType = "MOVE"    // R, U', F2, X ...
	PATTERN TokenType = "PATTERN" // {RG-/W--/...}

	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	LT       TokenType = "<"
	GT       TokenType = ">"
	LTE      TokenType = "<="
	GTE      TokenType = ">="

	COMMA    TokenType = ","
	COLON    TokenType = ":"
	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"

	LET         TokenType = "LET"
	FUNC        TokenType = "FUNC"
	RETURN      TokenType = "RETURN"
	IF          TokenType = "IF"
	THEN        TokenType = "THEN"
	ELSEIF      TokenType = "ELSEIF" // else-if, elseif
	ELSE_ORIENT TokenType = "ELSE_ORIENT"
	ELSE        TokenType = "ELSE"
	END         TokenType = "END"
	WHILE       TokenType = "WHILE"
	DO          TokenType = "DO"
	REPEAT      TokenType = "REPEAT"
	TIMES       TokenType = "TIMES"
	FOR         TokenType = "FOR"
	IN          TokenType = "IN"
	TRUE        TokenType = "TRUE"
	FALSE       TokenType = "FALSE"
	AND         TokenType = "AND"
	OR          TokenType = "OR"
	XOR         TokenType = "XOR"
	OF          TokenType = "OF"
	ORIENT      TokenType = "ORIENT"
	TYPE        TokenType = "TYPE" // int, real, bool, color, side, pattern, void
	LIST        TokenType = "LIST"
	SET         TokenType = "SET"
)

var keywords = map[string]TokenType{
	"let":         LET,
	"func":        FUNC,
	"return":      RETURN,
	"if":          IF,
	"then":        THEN,
	"elseif":      ELSEIF,
	"else-if":     ELSEIF,
	"else-orient": ELSE_ORIENT,
	"else":        ELSE,
	"end":         END,
	"while":       WHILE,
	"do":          DO,
	"repeat":      REPEAT,
	"times":       TIMES,
	"for":         FOR,
	"in":          IN,
	"true":        TRUE,
	"false":       FALSE,
	"and":         AND,
	"or":          OR,
	"xor":         XOR,
	"of":          OF,
	"orient":      ORIENT,
	"int":         TYPE,
	"real":        TYPE,
	"bool":        TYPE,
	"color":       TYPE,
	"side":        TYPE,
	"pattern":     TYPE,
	"void":        TYPE,
	"list":        LIST,
	"set":         SET,
}

// LookupIdent returns the keyword type of ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}
