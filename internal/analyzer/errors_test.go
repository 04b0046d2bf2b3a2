package analyzer_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/cubelang/internal/analyzer"
	"github.com/funvibe/cubelang/internal/cube"
	"github.com/funvibe/cubelang/internal/diagnostics"
	"github.com/funvibe/cubelang/internal/lexer"
	"github.com/funvibe/cubelang/internal/parser"
	"github.com/funvibe/cubelang/internal/pipeline"
	"github.com/funvibe/cubelang/internal/token"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
		msg   string
	}{
		{"undeclared variable", "x = 1", diagnostics.ErrC003, "`x` is not declared"},
		{"undeclared function", "f()\nfunc f()\n    R\nend", diagnostics.ErrC003, "`f`"},
		{"scoped declaration", "if true then\n    let z: int\nend\nz = 1", diagnostics.ErrC003, "`z`"},
		{"loop variable scope", "for v in new_list(2, 0) do\n    R\nend\nv = 1", diagnostics.ErrC003, "`v`"},
		{"wrong initializer", "let x: int = true", diagnostics.ErrC002, "expected int"},
		{"real into int", "let x: int = 1.5", diagnostics.ErrC002, ""},
		{"void variable", "let x: void", diagnostics.ErrC001, "void"},
		{"void parameter", "func f(x: void)\n    R\nend", diagnostics.ErrC001, "void"},
		{"list of void", "let l: list of void", diagnostics.ErrC001, "void"},
		{"readonly global", "top = front", diagnostics.ErrC007, "readonly value `top`"},
		{"readonly function", "func f()\n    R\nend\nf = 1", diagnostics.ErrC007, ""},
		{"not a function", "let c: int = red(1)", diagnostics.ErrC002, "`red` is not a function"},
		{"return outside function", "return 1", diagnostics.ErrC008, "outside of the function"},
		{"missing return value", "func f(): int\n    return\nend", diagnostics.ErrC009, "must be returned"},
		{"wrong return value", "func f(): int\n    return true\nend", diagnostics.ErrC002, ""},
		{"value from void function", "func f()\n    return 1\nend", diagnostics.ErrC002, ""},
		{"wrong argument type", "let n: int = size(1)", diagnostics.ErrC004, "size"},
		{"wrong argument count", "let n: int = size()", diagnostics.ErrC005, "0 arguments"},
		{"operator", "let x: int = 1 + true", diagnostics.ErrC010, "`+`"},
		{"negated bool", "let x: real = -true", diagnostics.ErrC002, ""},
		{"index into int", "let y: int = 5[0]", diagnostics.ErrC002, ""},
		{"index into set", "let s: set of int\nlet y: int = s[0]", diagnostics.ErrC002, ""},
		{"bool index", "let l: list of int\nlet y: int = l[true]", diagnostics.ErrC002, ""},
		{"item of wrong type", "let l: list of int\nl[0] = red", diagnostics.ErrC002, ""},
		{"while condition", "while 1 do\n    R\nend", diagnostics.ErrC002, "expected bool"},
		{"repeat count", "repeat 1.5 times\n    R\nend", diagnostics.ErrC002, "Iterations count must be integer"},
		{"for over int", "for x in 3 do\n    R\nend", diagnostics.ErrC002, ""},
		{"for reuses incompatible variable", "let x: int\nfor x in new_list(2, 1.5) do\n    R\nend", diagnostics.ErrC002, ""},
		{"side index", "let c: color = top[1.5, 0]", diagnostics.ErrC002, "Cube side indices must be integers"},
		{"color of int", "let c: color = 1[0, 0]", diagnostics.ErrC002, ""},
		{"layer bound", "R[true]", diagnostics.ErrC002, ""},
		{"pattern rows", "let p: pattern = {GG/G}", diagnostics.ErrC011, "Inconsistent line length"},
		{
			"duplicate orient key",
			"orient top: {G--/---/---}, top: {---/---/---} then\n    R\nend",
			diagnostics.ErrC006, "Key top has already been specified",
		},
		{"unknown orient key", "orient middle: {G} then\n    R\nend", diagnostics.ErrC001, "middle"},
		{"orient without patterns", "orient keeping: front then\n    R\nend", diagnostics.ErrC001, "No side patterns"},
		{"orient side as pattern", "orient top: front then\n    R\nend", diagnostics.ErrC002, ""},
		{"keeping a pattern", "orient top: {G}, keeping: {G} then\n    R\nend", diagnostics.ErrC002, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := cubeLibrary(cube.NewRecorder(3), &bytes.Buffer{})
			ctx := compile(tt.input, lib)
			if len(ctx.Errors) != 1 {
				t.Fatalf("expected one error, got %v", ctx.Errors)
			}
			var d diagnostics.Diagnostic
			if !errors.As(ctx.Errors[0], &d) {
				t.Fatalf("not a diagnostic: %v", ctx.Errors[0])
			}
			cte := d.Diagnostic()
			if cte.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", cte.Code, tt.code, cte.Message)
			}
			if !strings.Contains(cte.Message, tt.msg) {
				t.Errorf("message %q does not contain %q", cte.Message, tt.msg)
			}
			if cte.Span == nil {
				t.Errorf("error has no position")
			}
			if ctx.Program != nil || ctx.Lowered != nil {
				t.Errorf("no program expected after an error")
			}
		})
	}
}

func TestErrorCarriesFileAndPosition(t *testing.T) {
	ctx := &pipeline.PipelineContext{
		SourceCode: "let a: int\nlet b: bool = a",
		FilePath:   "solve.cube",
		Library:    cubeLibrary(cube.NewRecorder(3), &bytes.Buffer{}),
	}
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}, &analyzer.AnalyzerProcessor{}).Run(ctx)

	var vte *diagnostics.ValueTypeError
	if len(ctx.Errors) != 1 || !errors.As(ctx.Errors[0], &vte) {
		t.Fatalf("expected a value type error, got %v", ctx.Errors)
	}
	if vte.Expected != typesystem.Bool || vte.Actual != typesystem.Integer {
		t.Errorf("types = %s, %s", vte.Expected, vte.Actual)
	}
	if got, want := vte.Error(), "solve.cube:2:15: error [C002]: expected bool, got int"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestForLoopReusesVariable(t *testing.T) {
	lib := cubeLibrary(cube.NewRecorder(3), &bytes.Buffer{})
	out := withOut(lib, typesystem.Integer)
	src := `let x: int
for x in new_list(3, 7) do
    out(x)
end
out(x)`
	if err := run(t, src, lib); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if diff := cmp.Diff(ints(7, 7, 7, 7), out.got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestForLoopShadowsGlobal(t *testing.T) {
	lib := cubeLibrary(cube.NewRecorder(3), &bytes.Buffer{})
	out := withOut(lib, typesystem.Integer)
	src := `for red in new_list(2, 5) do
    out(red)
end
if red == red then
    out(1)
end`
	if err := run(t, src, lib); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if diff := cmp.Diff(ints(5, 5, 1), out.got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestUnresolvedReferenceSpan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		span  token.Span
	}{
		{"top level call", "foo()", token.Span{StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: 4}},
		{"indented call", "let n: int = 1\n  foo(n)", token.Span{StartLine: 2, StartColumn: 3, EndLine: 2, EndColumn: 6}},
		{"call in body", "repeat 2 times\n    foo()\nend", token.Span{StartLine: 2, StartColumn: 5, EndLine: 2, EndColumn: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := compile(tt.input, cubeLibrary(cube.NewRecorder(3), &bytes.Buffer{}))
			var ure *diagnostics.UnresolvedReferenceError
			if len(ctx.Errors) != 1 || !errors.As(ctx.Errors[0], &ure) {
				t.Fatalf("expected an unresolved reference, got %v", ctx.Errors)
			}
			if ure.Name != "foo" {
				t.Errorf("name = %q, want foo", ure.Name)
			}
			if ure.Span == nil {
				t.Fatal("error has no position")
			}
			if diff := cmp.Diff(tt.span, *ure.Span); diff != "" {
				t.Errorf("span mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFunctionArgumentsErrorFromAnalyzer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
		args  []typesystem.Type
	}{
		{"wrong types", "let b: bool = f(true, 1)", diagnostics.ErrC004, []typesystem.Type{typesystem.Bool, typesystem.Integer}},
		{"wrong count", "let b: bool = f(1)", diagnostics.ErrC005, []typesystem.Type{typesystem.Integer}},
		{"statement call", "f(red, 2.5)", diagnostics.ErrC004, []typesystem.Type{typesystem.Color, typesystem.Real}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := cubeLibrary(cube.NewRecorder(3), &bytes.Buffer{})
			lib.AddFunction("f", func([]vm.Value) (vm.Value, error) { return vm.Bool(true), nil },
				[]typesystem.Type{typesystem.Integer, typesystem.Integer}, typesystem.Bool)

			ctx := compile(tt.input, lib)
			var fae *diagnostics.FunctionArgumentsError
			if len(ctx.Errors) != 1 || !errors.As(ctx.Errors[0], &fae) {
				t.Fatalf("expected a function arguments error, got %v", ctx.Errors)
			}
			if fae.Code != tt.code {
				t.Errorf("code = %s, want %s", fae.Code, tt.code)
			}
			if fae.Name != "f" {
				t.Errorf("name = %q, want f", fae.Name)
			}
			if len(fae.Arguments) != len(tt.args) {
				t.Fatalf("arguments = %v, want %v", fae.Arguments, tt.args)
			}
			for i := range tt.args {
				if !typesystem.Equal(fae.Arguments[i], tt.args[i]) {
					t.Errorf("argument %d = %s, want %s", i, fae.Arguments[i], tt.args[i])
				}
			}
			if len(fae.Function.Overloads) != 1 {
				t.Fatalf("overloads = %v, want exactly one", fae.Function.Overloads)
			}
			o := fae.Function.Overloads[0]
			want := typesystem.Overload{Params: []typesystem.Type{typesystem.Integer, typesystem.Integer}, Return: typesystem.Bool}
			if o.String() != want.String() || o.Variadic {
				t.Errorf("overload = %s, want %s", o, want)
			}
		})
	}
}
