package diagnostics

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/cubelang/internal/token"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

func TestErrorKinds(t *testing.T) {
	span := token.Span{StartLine: 2, StartColumn: 5, EndLine: 2, EndColumn: 8}

	var err error = NewValueTypeError(span, typesystem.Bool, typesystem.Integer)
	var vte *ValueTypeError
	if !errors.As(err, &vte) || vte.Code != ErrC002 {
		t.Fatalf("expected ValueTypeError, got %v", err)
	}
	if err.Error() != "2:5: error [C002]: expected bool, got int" {
		t.Errorf("Error() = %q", err.Error())
	}

	err = NewUnresolvedReferenceError(span, "foo")
	var d Diagnostic
	if !errors.As(err, &d) || d.Diagnostic().Code != ErrC003 {
		t.Fatalf("expected diagnostic C003, got %v", err)
	}

	if e := NewError(ErrC008, token.Span{}, "return outside of a function"); e.Span != nil {
		t.Errorf("zero span should leave the error without a position")
	}
}

func TestFunctionArgumentsErrorCodes(t *testing.T) {
	fn := typesystem.NewFunction([]typesystem.Type{typesystem.Integer}, typesystem.Void)
	span := token.Span{StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: 4}

	wrongType := NewFunctionArgumentsError(span, "f", []typesystem.Type{typesystem.Bool}, fn)
	if wrongType.Code != ErrC004 {
		t.Errorf("type mismatch code = %s", wrongType.Code)
	}
	wrongArity := NewFunctionArgumentsError(span, "f", nil, fn)
	if wrongArity.Code != ErrC005 {
		t.Errorf("arity mismatch code = %s", wrongArity.Code)
	}
	if wrongType.Function != fn || len(wrongType.Arguments) != 1 {
		t.Errorf("error does not carry the call: %+v", wrongType)
	}
}

func TestPrintErrorSnippet(t *testing.T) {
	src := "let x: int = 1\nif x then\n  print(x)\nend"
	var buf bytes.Buffer
	p := NewPrinter(&buf, src, WithFile("demo.cube"))

	fn := typesystem.NewFunction([]typesystem.Type{typesystem.Integer}, typesystem.Void)
	fn.PrependOverload(typesystem.Overload{Params: []typesystem.Type{typesystem.Real, typesystem.Real}, Return: typesystem.Real})
	p.PrintError(NewValueTypeError(token.Span{StartLine: 2, StartColumn: 4, EndLine: 2, EndColumn: 5}, typesystem.Bool, typesystem.Integer))
	p.PrintError(NewFunctionArgumentsError(token.Span{StartLine: 3, StartColumn: 3, EndLine: 3, EndColumn: 8}, "print", []typesystem.Type{typesystem.Bool}, fn))

	want := strings.Join([]string{
		"error[C002]: expected bool, got int",
		"  --> demo.cube:2:4",
		"  |",
		"2 | if x then",
		"  |    ^",
		"error[C004]: wrong argument types for `print`: (bool)",
		"  --> demo.cube:3:3",
		"  |",
		"3 |   print(x)",
		"  |   ^^^^^",
		"  arguments: (bool)",
		"  overloads of print:",
		"    (real, real) -> real",
		"    (int) -> void",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("output mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestPrintPlainError(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, "").PrintError(errors.New("boom"))
	if buf.String() != "error: boom\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestReportFault(t *testing.T) {
	src := "func g()\n    fail()\nend\ng()"
	var buf bytes.Buffer
	p := NewPrinter(&buf, src, WithColor(false))
	p.ReportFault(&vm.RuntimeFault{
		Kind:    vm.ValueFault,
		Message: "boom",
		Entries: []vm.StackEntry{
			{Function: "fail", Line: 2},
			{Function: "g", Line: 2},
			{Function: "", Line: 4},
		},
	})
	want := strings.Join([]string{
		"Traceback (most recent call last):",
		"  line 4, in <main>",
		"    g()",
		"  line 2, in g",
		"    fail()",
		"  line 2, in fail",
		"    fail()",
		"ValueError: boom",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("output mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestColorEnabled(t *testing.T) {
	if !ColorEnabled("always", nil) {
		t.Errorf("always should enable color")
	}
	if ColorEnabled("never", nil) {
		t.Errorf("never should disable color")
	}
	if ColorEnabled("auto", nil) {
		t.Errorf("auto without a file should disable color")
	}
}
