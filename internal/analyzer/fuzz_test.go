package analyzer_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/funvibe/cubelang/internal/cube"
	"github.com/funvibe/cubelang/internal/vm"
)

// FuzzCompile feeds arbitrary text through the whole front end and runs
// what compiles for a short while. Nothing may panic, and a run may only
// end in success, a runtime fault or the deadline.
func FuzzCompile(f *testing.F) {
	f.Add("let x: int = 2 + 2\nprint(x)")
	f.Add("func f(n: int): int\n    return f(n - 1)\nend\nf(3)")
	f.Add("let l: list of int = new_list(2, 0)\nl[5] = 1")
	f.Add("R[0]")
	f.Add("while true do\nend")

	f.Fuzz(func(t *testing.T, input string) {
		lib := cubeLibrary(cube.NewRecorder(3), &bytes.Buffer{})
		ctx := compile(input, lib)
		if ctx.Failed() {
			return
		}
		if ctx.Lowered == nil {
			t.Fatal("no program and no errors")
		}
		runCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err := vm.Execute(runCtx, ctx.Lowered, lib.Bindings())
		var rf *vm.RuntimeFault
		switch {
		case err == nil, errors.As(err, &rf), errors.Is(err, context.DeadlineExceeded):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
