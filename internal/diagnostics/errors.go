// Package diagnostics defines the compile-time error taxonomy and renders
// compile errors and runtime tracebacks for humans.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/cubelang/internal/token"
	"github.com/funvibe/cubelang/internal/typesystem"
)

type ErrorCode string

const (
	ErrP001 ErrorCode = "P001" // syntax error
	ErrC001 ErrorCode = "C001" // generic compile error
	ErrC002 ErrorCode = "C002" // value type mismatch
	ErrC003 ErrorCode = "C003" // unresolved reference
	ErrC004 ErrorCode = "C004" // no overload accepts the arguments
	ErrC005 ErrorCode = "C005" // no overload takes that many arguments
	ErrC006 ErrorCode = "C006" // duplicate keyword argument
	ErrC007 ErrorCode = "C007" // write to a read-only binding
	ErrC008 ErrorCode = "C008" // return outside of a function
	ErrC009 ErrorCode = "C009" // missing return value
	ErrC010 ErrorCode = "C010" // operator not applicable
	ErrC011 ErrorCode = "C011" // invalid pattern literal
)

// Diagnostic is implemented by every compile-time error.
type Diagnostic interface {
	error
	Diagnostic() *CompileTimeError
}

// CompileTimeError is the base of all compile-time errors. Span is nil when
// the error has no source position.
type CompileTimeError struct {
	Code    ErrorCode
	Message string
	Span    *token.Span
	File    string
}

func (e *CompileTimeError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(":")
	}
	if e.Span != nil {
		fmt.Fprintf(&sb, "%d:%d: ", e.Span.StartLine, e.Span.StartColumn)
	} else if e.File != "" {
		sb.WriteString(" ")
	}
	fmt.Fprintf(&sb, "error [%s]: %s", e.Code, e.Message)
	return sb.String()
}

func (e *CompileTimeError) Diagnostic() *CompileTimeError { return e }

// NewError builds a compile-time error at span. A zero span means no
// position.
func NewError(code ErrorCode, span token.Span, format string, args ...interface{}) *CompileTimeError {
	e := &CompileTimeError{Code: code, Message: fmt.Sprintf(format, args...)}
	if !span.IsZero() {
		s := span
		e.Span = &s
	}
	return e
}

// ValueTypeError reports an expression whose type does not fit its place.
type ValueTypeError struct {
	*CompileTimeError
	Expected typesystem.Type
	Actual   typesystem.Type
}

func NewValueTypeError(span token.Span, expected, actual typesystem.Type) *ValueTypeError {
	return &ValueTypeError{
		CompileTimeError: NewError(ErrC002, span, "expected %s, got %s", expected, actual),
		Expected:         expected,
		Actual:           actual,
	}
}

// UnresolvedReferenceError reports a name that is not declared.
type UnresolvedReferenceError struct {
	*CompileTimeError
	Name string
}

func NewUnresolvedReferenceError(span token.Span, name string) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{
		CompileTimeError: NewError(ErrC003, span, "`%s` is not declared", name),
		Name:             name,
	}
}

// FunctionArgumentsError reports a call no overload of the function accepts.
type FunctionArgumentsError struct {
	*CompileTimeError
	Name      string
	Arguments []typesystem.Type
	Function  *typesystem.Function
}

func NewFunctionArgumentsError(span token.Span, name string, args []typesystem.Type, fn *typesystem.Function) *FunctionArgumentsError {
	code := ErrC004
	msg := fmt.Sprintf("wrong argument types for `%s`: (%s)", name, typeNames(args))
	if !fn.HasArity(len(args)) {
		code = ErrC005
		msg = fmt.Sprintf("`%s` does not take %d arguments", name, len(args))
	}
	return &FunctionArgumentsError{
		CompileTimeError: NewError(code, span, "%s", msg),
		Name:             name,
		Arguments:        args,
		Function:         fn,
	}
}

func typeNames(types []typesystem.Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
