package expr

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

func ref(i int) vm.Term { return vm.Ref{Index: i} }

func intConst(n int64) vm.Term { return vm.Const{Value: vm.Int(n)} }

func call(name string, args ...vm.Term) vm.Term {
	return vm.Call{Callee: vm.Global{Name: name}, Args: args}
}

// recorder collects the arguments of every call of an operation.
type recorder struct {
	calls [][]vm.Value
	reply func(n int) vm.Value
}

func (r *recorder) op(name string) *vm.Operation {
	return &vm.Operation{Name: name, Fn: func(args []vm.Value) (vm.Value, error) {
		r.calls = append(r.calls, args)
		if r.reply != nil {
			return r.reply(len(r.calls)), nil
		}
		return nil, nil
	}}
}

func run(t *testing.T, prog *Program, bindings vm.Bindings) *vm.Program {
	t.Helper()
	lowered := Compile(prog)
	if err := vm.Execute(context.Background(), lowered, bindings); err != nil {
		t.Fatalf("Execute: %v\n%s", err, vm.Disassemble(lowered, "test"))
	}
	return lowered
}

func TestMergeRenumbersIntermediates(t *testing.T) {
	a0 := New(typesystem.Integer, 3, intConst(1))
	a1 := New(typesystem.Integer, 3, intConst(2))
	b0 := New(typesystem.Integer, 2, intConst(3))
	a := &Expression{Typ: typesystem.Integer, LineNo: 3, Template: vm.Binary{Op: vm.OpAdd, X: ref(0), Y: ref(1)}, Intermediates: []Node{a0, a1}}
	b := &Expression{Typ: typesystem.Integer, LineNo: 2, Template: vm.Unary{Op: vm.OpNeg, X: ref(0)}, Intermediates: []Node{b0}}

	m := Merge(typesystem.Real, vm.Binary{Op: vm.OpMul, X: ref(0), Y: ref(1)}, a, b)

	want := vm.Binary{
		Op: vm.OpMul,
		X:  vm.Binary{Op: vm.OpAdd, X: ref(0), Y: ref(1)},
		Y:  vm.Unary{Op: vm.OpNeg, X: ref(2)},
	}
	if diff := cmp.Diff(vm.Term(want), m.Template); diff != "" {
		t.Errorf("template mismatch (-want +got):\n%s", diff)
	}
	if len(m.Intermediates) != 3 || m.Intermediates[0] != a0 || m.Intermediates[1] != a1 || m.Intermediates[2] != b0 {
		t.Errorf("intermediates not concatenated in order: %v", m.Intermediates)
	}
	if m.Typ != typesystem.Real || m.LineNo != 2 {
		t.Errorf("merged type %s line %d", m.Typ, m.LineNo)
	}
	if _, ok := a.Template.(vm.Binary).Y.(vm.Ref); !ok {
		t.Errorf("Merge modified its parts")
	}
}

func TestWrap(t *testing.T) {
	e := New(typesystem.Bool, 1, vm.Const{Value: vm.Bool(true)})
	if Wrap(e) != e {
		t.Errorf("wrapping an expression should return it")
	}
	loop := &WhileLoop{LineNo: 4, Cond: e}
	w := Wrap(loop)
	if !w.IsWrapper() || w.Intermediates[0] != loop || w.Typ != typesystem.Void || w.LineNo != 4 {
		t.Errorf("Wrap(loop) = %v", w)
	}
	if e.IsWrapper() {
		t.Errorf("a constant is not a wrapper")
	}
}

func TestConditionType(t *testing.T) {
	lit := func(typ typesystem.Type) []Node { return []Node{New(typ, 1, vm.Const{Value: vm.Nil{}})} }
	cond := New(typesystem.Bool, 1, vm.Const{Value: vm.Bool(true)})

	tests := []struct {
		name     string
		branches []Branch
		elseBody []Node
		want     typesystem.Type
	}{
		{"no else", []Branch{{cond, lit(typesystem.Integer)}}, nil, typesystem.Void},
		{"same type", []Branch{{cond, lit(typesystem.Integer)}}, lit(typesystem.Integer), typesystem.Integer},
		{"widened", []Branch{{cond, lit(typesystem.Integer)}, {cond, lit(typesystem.Real)}}, lit(typesystem.Integer), typesystem.Real},
		{"incompatible", []Branch{{cond, lit(typesystem.Bool)}}, lit(typesystem.Integer), typesystem.Void},
		{"empty branch", []Branch{{cond, nil}}, lit(typesystem.Integer), typesystem.Void},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewCondition(1, tt.branches, tt.elseBody).Type(); got != tt.want {
				t.Errorf("type = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWhileConditionEffectsOncePerTest(t *testing.T) {
	for _, passes := range []int{0, 3} {
		passes := passes
		ticks := &recorder{reply: func(n int) vm.Value { return vm.Bool(n <= passes) }}
		body := &recorder{}
		cond := &Expression{
			Typ:           typesystem.Bool,
			LineNo:        1,
			Template:      ref(0),
			Intermediates: []Node{New(typesystem.Bool, 1, call("tick"))},
		}
		prog := &Program{Nodes: []Node{
			&WhileLoop{LineNo: 1, Cond: cond, Body: []Node{New(typesystem.Void, 2, call("body"))}},
		}}
		run(t, prog, vm.Bindings{"tick": ticks.op("tick"), "body": body.op("body")})

		if len(ticks.calls) != passes+1 || len(body.calls) != passes {
			t.Errorf("passes=%d: condition evaluated %d times, body ran %d times", passes, len(ticks.calls), len(body.calls))
		}
	}
}

func TestDoWhileRunsBodyFirst(t *testing.T) {
	ticks := &recorder{reply: func(int) vm.Value { return vm.Bool(false) }}
	body := &recorder{}
	prog := &Program{Nodes: []Node{
		&DoWhileLoop{LineNo: 1, Cond: New(typesystem.Bool, 3, call("tick")), Body: []Node{New(typesystem.Void, 2, call("body"))}},
	}}
	run(t, prog, vm.Bindings{"tick": ticks.op("tick"), "body": body.op("body")})
	if len(body.calls) != 1 || len(ticks.calls) != 1 {
		t.Errorf("body ran %d times, condition evaluated %d times", len(body.calls), len(ticks.calls))
	}
}

func TestRepeatEvaluatesCountOnce(t *testing.T) {
	count := &recorder{reply: func(int) vm.Value { return vm.Int(3) }}
	body := &recorder{}
	prog := &Program{Nodes: []Node{
		&RepeatLoop{LineNo: 1, Times: New(typesystem.Integer, 1, call("count")), Body: []Node{New(typesystem.Void, 2, call("body"))}},
	}}
	lowered := run(t, prog, vm.Bindings{"count": count.op("count"), "body": body.op("body")})
	if len(count.calls) != 1 || len(body.calls) != 3 {
		t.Errorf("count evaluated %d times, body ran %d times", len(count.calls), len(body.calls))
	}
	if lowered.Temps != 1 {
		t.Errorf("repeat should need one temporary, got %d", lowered.Temps)
	}
}

func TestConditionValue(t *testing.T) {
	out := &recorder{}
	falseCond := New(typesystem.Bool, 1, vm.Const{Value: vm.Bool(false)})
	trueCond := New(typesystem.Bool, 2, vm.Const{Value: vm.Bool(true)})
	cond := NewCondition(1,
		[]Branch{
			{falseCond, []Node{New(typesystem.Integer, 1, intConst(1))}},
			{trueCond, []Node{New(typesystem.Void, 2, call("out", intConst(0))), New(typesystem.Integer, 2, intConst(2))}},
		},
		[]Node{New(typesystem.Integer, 3, intConst(3))},
	)
	x := vm.Local{Slot: 0, Name: "x"}
	prog := &Program{Locals: 1, Nodes: []Node{
		Merge(typesystem.Void, vm.Assign{Dest: x, Value: ref(0)}, Wrap(cond)),
		New(typesystem.Void, 4, call("out", x)),
	}}
	run(t, prog, vm.Bindings{"out": out.op("out")})

	want := [][]vm.Value{{vm.Int(0)}, {vm.Int(2)}}
	if diff := cmp.Diff(want, out.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestForLoopOverSnapshot(t *testing.T) {
	out := &recorder{}
	item := vm.Local{Slot: 0, Name: "x"}
	coll := vm.Local{Slot: 1, Name: "xs"}
	prog := &Program{Locals: 2, Nodes: []Node{
		New(typesystem.Void, 1, vm.Assign{Dest: coll, Value: vm.MakeList{Items: []vm.Term{intConst(1), intConst(2)}}}),
		&ForLoop{LineNo: 2, Var: item, Collection: New(typesystem.List(typesystem.Integer), 2, coll), Body: []Node{
			New(typesystem.Void, 3, call("out", item)),
			New(typesystem.Void, 3, vm.Assign{Dest: coll, Value: vm.MakeList{}}),
		}},
	}}
	run(t, prog, vm.Bindings{"out": out.op("out")})
	want := [][]vm.Value{{vm.Int(1)}, {vm.Int(2)}}
	if diff := cmp.Diff(want, out.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestFunctions(t *testing.T) {
	out := &recorder{}
	arg := vm.Local{Slot: 0, Name: "n"}
	double := &FunctionDecl{LineNo: 1, Name: "double", Index: 0, Arity: 1, Locals: 1, Return: typesystem.Integer, Body: []Node{
		&Return{LineNo: 2, Value: New(typesystem.Integer, 2, vm.Binary{Op: vm.OpMul, X: arg, Y: intConst(2)})},
	}}
	fallOff := &FunctionDecl{LineNo: 4, Name: "zero", Index: 1, Return: typesystem.Integer}
	empty := &FunctionDecl{LineNo: 5, Name: "nothing", Index: 2, Return: typesystem.Void}

	prog := &Program{Nodes: []Node{
		double, fallOff, empty,
		New(typesystem.Void, 6, call("out",
			vm.Call{Callee: vm.FuncRef{Index: 0, Name: "double"}, Args: []vm.Term{intConst(21)}},
			vm.Call{Callee: vm.FuncRef{Index: 1, Name: "zero"}},
			vm.Call{Callee: vm.FuncRef{Index: 2, Name: "nothing"}},
		)),
	}}
	lowered := run(t, prog, vm.Bindings{"out": out.op("out")})

	want := [][]vm.Value{{vm.Int(42), vm.Int(0), vm.Nil{}}}
	if diff := cmp.Diff(want, out.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if lowered.Code[1].Op != vm.OpHalt {
		t.Errorf("top level should end before function bodies:\n%s", vm.Disassemble(lowered, "test"))
	}
	nothing := lowered.Functions[2]
	if lowered.Code[nothing.Entry].Op != vm.OpNop || lowered.Code[nothing.Entry+1].Op != vm.OpReturn {
		t.Errorf("empty void function should lower to NOP, RETURN:\n%s", vm.Disassemble(lowered, "test"))
	}
}

func TestCompileIsIdempotent(t *testing.T) {
	cond := New(typesystem.Bool, 2, vm.Binary{Op: vm.OpLt, X: vm.Local{Slot: 0}, Y: intConst(3)})
	prog := &Program{Locals: 1, Nodes: []Node{
		New(typesystem.Void, 1, vm.Assign{Dest: vm.Local{Slot: 0}, Value: intConst(0)}),
		&WhileLoop{LineNo: 2, Cond: cond, Body: []Node{
			New(typesystem.Void, 3, vm.Assign{Dest: vm.Local{Slot: 0}, Value: vm.Binary{Op: vm.OpAdd, X: vm.Local{Slot: 0}, Y: intConst(1)}}),
		}},
		&FunctionDecl{LineNo: 5, Name: "f", Index: 0, Return: typesystem.Void},
	}}

	first, second := Compile(prog), Compile(prog)
	if a, b := vm.Disassemble(first, "p"), vm.Disassemble(second, "p"); a != b {
		t.Errorf("listings differ:\n%s\n---\n%s", a, b)
	}
	for i := range first.Code {
		if first.Lines.Lookup(i) != second.Lines.Lookup(i) {
			t.Errorf("line of instruction %d differs", i)
		}
	}
	if !strings.Contains(vm.Disassemble(first, "p"), "JUMP_UNLESS") {
		t.Errorf("while loop should lower to a conditional jump")
	}
}

func TestDefaultValue(t *testing.T) {
	tests := []struct {
		typ  typesystem.Type
		want vm.Term
	}{
		{typesystem.Integer, intConst(0)},
		{typesystem.Real, vm.Const{Value: vm.Real(0)}},
		{typesystem.Bool, vm.Const{Value: vm.Bool(false)}},
		{typesystem.Color, vm.Const{Value: vm.White}},
		{typesystem.Side, vm.Const{Value: vm.Front}},
		{typesystem.Pattern, vm.Const{Value: vm.Nil{}}},
		{typesystem.List(typesystem.Integer), vm.MakeList{}},
		{typesystem.Set(typesystem.Color), vm.MakeSet{}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, DefaultValue(tt.typ)); diff != "" {
			t.Errorf("DefaultValue(%s) mismatch (-want +got):\n%s", tt.typ, diff)
		}
	}
}
