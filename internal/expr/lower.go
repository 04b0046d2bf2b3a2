package expr

import (
	"github.com/funvibe/cubelang/internal/slots"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

// lowerer holds the state of one Compile call. Temporaries of the top level
// and of every function body come from separate pools; frames are sized by
// the largest high-water mark.
type lowerer struct {
	b       *vm.Builder
	temps   *slots.Pool
	maxTemp int
	pending []*FunctionDecl
}

// Compile lowers prog into a flat program. Function bodies follow the top
// level code, which ends with OpHalt. Compile does not modify prog and can
// be called any number of times.
func Compile(prog *Program) *vm.Program {
	l := &lowerer{b: vm.NewBuilder(), temps: slots.New()}
	for _, n := range prog.Nodes {
		n.lower(l, nil)
	}
	l.b.Emit(vm.Instr{Op: vm.OpHalt}, 0)
	l.noteTemps()

	for len(l.pending) > 0 {
		fn := l.pending[0]
		l.pending = l.pending[1:]
		l.lowerFunction(fn)
	}
	return l.b.Finish(prog.Locals, l.maxTemp)
}

func (l *lowerer) noteTemps() {
	if hw := l.temps.HighWater(); hw > l.maxTemp {
		l.maxTemp = hw
	}
}

func (l *lowerer) lowerFunction(fn *FunctionDecl) {
	l.temps = slots.New()
	entry := l.b.Len()
	l.lowerBody(fn.Body, nil)
	if fn.Return == nil || fn.Return == typesystem.Void {
		if len(fn.Body) == 0 {
			l.b.Emit(vm.Instr{Op: vm.OpNop}, fn.LineNo)
		}
		l.b.Emit(vm.Instr{Op: vm.OpReturn}, 0)
	} else {
		l.b.Emit(vm.Instr{Op: vm.OpReturn, Term: DefaultValue(fn.Return)}, 0)
	}
	l.b.DefineFunction(fn.Index, vm.FunctionInfo{Name: fn.Name, Entry: entry, Arity: fn.Arity, Locals: fn.Locals})
	l.noteTemps()
}

// lowerBody lowers a block. Only the last node receives dest.
func (l *lowerer) lowerBody(body []Node, dest vm.Term) {
	for i, n := range body {
		if i == len(body)-1 {
			n.lower(l, dest)
		} else {
			n.lower(l, nil)
		}
	}
}

// prepare lowers the intermediates of e into fresh temporaries and returns
// the filled template with the scope holding them. The caller releases the
// scope once the template has been emitted.
func (l *lowerer) prepare(e *Expression) (vm.Term, *slots.Scope) {
	scope := l.temps.Allocate(len(e.Intermediates))
	l.lowerIntermediates(e, scope)
	return l.fill(e, scope), scope
}

func (l *lowerer) lowerIntermediates(e *Expression, scope *slots.Scope) {
	for i, n := range e.Intermediates {
		n.lower(l, vm.Temp{Slot: scope.Slot(i)})
	}
}

func (l *lowerer) fill(e *Expression, scope *slots.Scope) vm.Term {
	args := make([]vm.Term, len(e.Intermediates))
	for i := range args {
		args[i] = vm.Temp{Slot: scope.Slot(i)}
	}
	return vm.Substitute(e.Template, args)
}

func (e *Expression) lower(l *lowerer, dest vm.Term) {
	if e.IsWrapper() {
		e.Intermediates[0].lower(l, dest)
		return
	}
	term, scope := l.prepare(e)
	if dest != nil {
		term = vm.Assign{Dest: dest, Value: term}
	}
	l.b.Emit(vm.Instr{Op: vm.OpEval, Term: term}, e.LineNo)
	scope.Release()
}

func (r *Return) lower(l *lowerer, _ vm.Term) {
	if r.Value == nil {
		l.b.Emit(vm.Instr{Op: vm.OpReturn}, r.LineNo)
		return
	}
	term, scope := l.prepare(r.Value)
	l.b.Emit(vm.Instr{Op: vm.OpReturn, Term: term}, r.LineNo)
	scope.Release()
}

// lower emits a cascade of conditional jumps. When the condition has a
// value, the last node of every branch stores it in dest.
func (c *Condition) lower(l *lowerer, dest vm.Term) {
	if c.Typ == typesystem.Void {
		dest = nil
	}
	var exits []int
	for i, br := range c.Branches {
		term, scope := l.prepare(br.Cond)
		skip := l.b.Emit(vm.Instr{Op: vm.OpJumpUnless, Term: term}, br.Cond.LineNo)
		scope.Release()

		l.lowerBody(br.Body, dest)
		if i < len(c.Branches)-1 || len(c.Else) > 0 {
			exits = append(exits, l.b.Emit(vm.Instr{Op: vm.OpJump}, 0))
		}
		l.b.Patch(skip, l.b.Len())
	}
	l.lowerBody(c.Else, dest)
	for _, j := range exits {
		l.b.Patch(j, l.b.Len())
	}
}

// lower evaluates the intermediates of the condition before the first test
// and again at the end of every pass, so their effects happen once per
// test.
func (w *WhileLoop) lower(l *lowerer, _ vm.Term) {
	scope := l.temps.Allocate(len(w.Cond.Intermediates))
	l.lowerIntermediates(w.Cond, scope)
	top := l.b.Len()
	exit := l.b.Emit(vm.Instr{Op: vm.OpJumpUnless, Term: l.fill(w.Cond, scope)}, w.Cond.LineNo)
	l.lowerBody(w.Body, nil)
	l.lowerIntermediates(w.Cond, scope)
	l.b.Emit(vm.Instr{Op: vm.OpJump, Target: top}, 0)
	l.b.Patch(exit, l.b.Len())
	scope.Release()
}

func (d *DoWhileLoop) lower(l *lowerer, _ vm.Term) {
	top := l.b.Len()
	if len(d.Body) == 0 {
		l.b.Emit(vm.Instr{Op: vm.OpNop}, d.LineNo)
	}
	l.lowerBody(d.Body, nil)
	term, scope := l.prepare(d.Cond)
	exit := l.b.Emit(vm.Instr{Op: vm.OpJumpUnless, Term: term}, d.Cond.LineNo)
	scope.Release()
	l.b.Emit(vm.Instr{Op: vm.OpJump, Target: top}, 0)
	l.b.Patch(exit, l.b.Len())
}

// lower counts down a private temporary holding the evaluated count.
func (r *RepeatLoop) lower(l *lowerer, _ vm.Term) {
	scope := l.temps.Allocate(1)
	counter := vm.Temp{Slot: scope.Slot(0)}
	r.Times.lower(l, counter)
	top := l.b.Len()
	exit := l.b.Emit(vm.Instr{
		Op:   vm.OpJumpUnless,
		Term: vm.Binary{Op: vm.OpGt, X: counter, Y: vm.Const{Value: vm.Int(0)}},
	}, r.LineNo)
	l.b.Emit(vm.Instr{
		Op:   vm.OpEval,
		Term: vm.Assign{Dest: counter, Value: vm.Binary{Op: vm.OpSub, X: counter, Y: vm.Const{Value: vm.Int(1)}}},
	}, 0)
	l.lowerBody(r.Body, nil)
	l.b.Emit(vm.Instr{Op: vm.OpJump, Target: top}, 0)
	l.b.Patch(exit, l.b.Len())
	scope.Release()
}

func (f *ForLoop) lower(l *lowerer, _ vm.Term) {
	scope := l.temps.Allocate(1)
	iter := vm.Temp{Slot: scope.Slot(0)}
	term, rangeScope := l.prepare(f.Collection)
	l.b.Emit(vm.Instr{Op: vm.OpIter, Term: term, Dest: iter}, f.Collection.LineNo)
	rangeScope.Release()

	top := l.b.Emit(vm.Instr{Op: vm.OpNext, Term: iter, Dest: f.Var}, f.LineNo)
	l.lowerBody(f.Body, nil)
	l.b.Emit(vm.Instr{Op: vm.OpJump, Target: top}, 0)
	l.b.Patch(top, l.b.Len())
	scope.Release()
}

// lower queues the body; it is emitted after the top-level code.
func (f *FunctionDecl) lower(l *lowerer, _ vm.Term) {
	l.pending = append(l.pending, f)
}
