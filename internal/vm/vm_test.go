package vm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// runProgram executes prog with a timeout so that broken jumps fail the
// test instead of hanging it.
func runProgram(t *testing.T, prog *Program, bindings Bindings) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return Execute(ctx, prog, bindings)
}

func failing(name string, err error) *Operation {
	return &Operation{Name: name, Fn: func([]Value) (Value, error) { return nil, err }}
}

// tracebackProgram lowers, by hand:
//
//	1 func g()
//	2     fail()
//	3 end
//	4
//	5 g()
func tracebackProgram() *Program {
	b := NewBuilder()
	b.Emit(Instr{Op: OpEval, Term: Call{Callee: FuncRef{Index: 0, Name: "g"}}}, 5)
	b.Emit(Instr{Op: OpHalt}, 0)
	entry := b.Emit(Instr{Op: OpEval, Term: Call{Callee: Global{Name: "fail"}}}, 2)
	b.Emit(Instr{Op: OpReturn}, 0)
	b.DefineFunction(0, FunctionInfo{Name: "g", Entry: entry})
	return b.Finish(0, 0)
}

func TestTracebackThroughFunction(t *testing.T) {
	prog := tracebackProgram()
	err := runProgram(t, prog, Bindings{"fail": failing("fail", Errorf(ValueFault, "boom"))})

	var rf *RuntimeFault
	if !errors.As(err, &rf) {
		t.Fatalf("expected *RuntimeFault, got %v", err)
	}
	if rf.Message != "boom" || rf.Kind != ValueFault {
		t.Errorf("fault = %q (%s)", rf.Message, rf.Kind)
	}
	want := []StackEntry{
		{Function: "fail", Instruction: 2, Line: 2},
		{Function: "g", Instruction: 2, Line: 2},
		{Function: "", Instruction: 0, Line: 5},
	}
	if diff := cmp.Diff(want, rf.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestTerminateIsSuccess(t *testing.T) {
	b := NewBuilder()
	b.Emit(Instr{Op: OpEval, Term: Call{Callee: Global{Name: "exit"}}}, 1)
	b.Emit(Instr{Op: OpEval, Term: Call{Callee: Global{Name: "fail"}}}, 2)
	b.Emit(Instr{Op: OpHalt}, 0)
	prog := b.Finish(0, 0)

	err := runProgram(t, prog, Bindings{
		"exit": failing("exit", ErrTerminate),
		"fail": failing("fail", Errorf(ValueFault, "unreachable")),
	})
	if err != nil {
		t.Fatalf("terminate should end the run cleanly, got %v", err)
	}
}

func TestHostErrorPropagates(t *testing.T) {
	defect := errors.New("disk on fire")
	prog := tracebackProgram()
	err := runProgram(t, prog, Bindings{"fail": failing("fail", defect)})
	if !errors.Is(err, defect) {
		t.Fatalf("expected host error to pass through, got %v", err)
	}
	var rf *RuntimeFault
	if errors.As(err, &rf) {
		t.Errorf("host error was turned into a runtime fault")
	}
}

func TestMachineFaults(t *testing.T) {
	tests := []struct {
		name string
		term Term
		kind FaultKind
		msg  string
	}{
		{
			name: "index out of range",
			term: Index{X: MakeList{Items: []Term{Const{Value: Int(1)}}}, I: Const{Value: Int(3)}},
			kind: IndexFault,
			msg:  "list index out of range",
		},
		{
			name: "division by zero",
			term: Binary{Op: OpDiv, X: Const{Value: Int(1)}, Y: Const{Value: Int(0)}},
			kind: ValueFault,
			msg:  "division by zero",
		},
		{
			name: "modulo by zero",
			term: Binary{Op: OpMod, X: Const{Value: Int(1)}, Y: Const{Value: Int(0)}},
			kind: ValueFault,
			msg:  "modulo by zero",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			b.Emit(Instr{Op: OpEval, Term: Const{Value: Int(0)}}, 1)
			b.Emit(Instr{Op: OpEval, Term: tt.term}, 3)
			b.Emit(Instr{Op: OpHalt}, 0)

			err := runProgram(t, b.Finish(0, 0), nil)
			var rf *RuntimeFault
			if !errors.As(err, &rf) {
				t.Fatalf("expected runtime fault, got %v", err)
			}
			if rf.Kind != tt.kind || rf.Message != tt.msg {
				t.Errorf("fault = %s %q, want %s %q", rf.Kind, rf.Message, tt.kind, tt.msg)
			}
			want := []StackEntry{{Function: "", Instruction: 1, Line: 3}}
			if diff := cmp.Diff(want, rf.Entries); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnboundGlobal(t *testing.T) {
	err := runProgram(t, tracebackProgram(), Bindings{})
	if err == nil || !strings.Contains(err.Error(), `global "fail" is not bound`) {
		t.Fatalf("expected unbound global error, got %v", err)
	}
}

// sumProgram adds the items of a list into v1 and reports it:
//
//	let total = 0
//	for x in items do total = total + x end
//	report(total)
func sumProgram() *Program {
	b := NewBuilder()
	total := Local{Slot: 0, Name: "total"}
	x := Local{Slot: 1, Name: "x"}
	it := Temp{Slot: 0}

	b.Emit(Instr{Op: OpEval, Term: Assign{Dest: total, Value: Const{Value: Int(0)}}}, 1)
	b.Emit(Instr{Op: OpIter, Term: Call{Callee: Global{Name: "items"}}, Dest: it}, 2)
	loop := b.Emit(Instr{Op: OpNext, Term: it, Dest: x}, 2)
	b.Emit(Instr{Op: OpEval, Term: Assign{Dest: total, Value: Binary{Op: OpAdd, X: total, Y: x}}}, 2)
	b.Emit(Instr{Op: OpJump, Target: loop}, 2)
	b.Patch(loop, b.Len())
	b.Emit(Instr{Op: OpEval, Term: Call{Callee: Global{Name: "report"}, Args: []Term{total}}}, 3)
	b.Emit(Instr{Op: OpHalt}, 0)
	return b.Finish(2, 1)
}

func TestIterationAndReexecution(t *testing.T) {
	prog := sumProgram()
	var reported []Value
	bindings := Bindings{
		"items": &Operation{Name: "items", Fn: func([]Value) (Value, error) {
			return NewList(Int(1), Int(2), Real(0.5)), nil
		}},
		"report": &Operation{Name: "report", Fn: func(args []Value) (Value, error) {
			reported = append(reported, args[0])
			return nil, nil
		}},
	}

	for i := 0; i < 2; i++ {
		if err := runProgram(t, prog, bindings); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	want := []Value{Real(3.5), Real(3.5)}
	if diff := cmp.Diff(want, reported); diff != "" {
		t.Errorf("reported mismatch (-want +got):\n%s", diff)
	}
	if got := strings.Join(prog.Globals, ","); got != "items,report" {
		t.Errorf("globals = %s", got)
	}
}

func TestCancellation(t *testing.T) {
	b := NewBuilder()
	b.Emit(Instr{Op: OpJump, Target: 0}, 1)
	prog := b.Finish(0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Execute(ctx, prog, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRecursionLimit(t *testing.T) {
	b := NewBuilder()
	b.Emit(Instr{Op: OpEval, Term: Call{Callee: FuncRef{Index: 0, Name: "loop"}}}, 1)
	b.Emit(Instr{Op: OpHalt}, 0)
	entry := b.Emit(Instr{Op: OpReturn, Term: Call{Callee: FuncRef{Index: 0, Name: "loop"}}}, 2)
	b.DefineFunction(0, FunctionInfo{Name: "loop", Entry: entry})

	err := runProgram(t, b.Finish(0, 0), nil)
	var rf *RuntimeFault
	if !errors.As(err, &rf) {
		t.Fatalf("expected runtime fault, got %v", err)
	}
	if !strings.Contains(rf.Message, "recursion depth") {
		t.Errorf("message = %q", rf.Message)
	}
	if last := rf.Entries[len(rf.Entries)-1]; last.Function != "" || last.Line != 1 {
		t.Errorf("outermost entry = %+v", last)
	}
}

func TestLineMapLookup(t *testing.T) {
	var m LineMap
	m.Add(2, 7)
	m.Add(5, 9)

	tests := []struct {
		index, want int
	}{
		{0, 0},
		{2, 7},
		{4, 7},
		{5, 9},
		{40, 9},
	}
	for _, tt := range tests {
		if got := m.Lookup(tt.index); got != tt.want {
			t.Errorf("Lookup(%d) = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestDisassemble(t *testing.T) {
	out := Disassemble(tracebackProgram(), "main")
	for _, want := range []string{
		"== main (locals 0, temps 0) ==",
		"0000    5 EVAL         fn0(g)()",
		"== function g (arity 0, locals 0) ==",
		"0002    2 EVAL         fail()",
		"0003    | RETURN",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing lacks %q:\n%s", want, out)
		}
	}
}
