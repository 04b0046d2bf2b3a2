package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
)

// MaxCallDepth bounds recursion of user functions.
const MaxCallDepth = 2048

// Bindings supplies the values of the globals a program refers to.
type Bindings map[string]Value

type Option func(*machine)

// WithLogger routes execution logs to l.
func WithLogger(l *log.Logger) Option {
	return func(m *machine) { m.log = l }
}

// WithRunID tags the log lines of the run. A random ID is used otherwise.
func WithRunID(id uuid.UUID) Option {
	return func(m *machine) { m.runID = id }
}

type machine struct {
	ctx     context.Context
	prog    *Program
	globals Bindings
	funcs   []*FunctionValue
	log     *log.Logger
	runID   uuid.UUID
	depth   int
	steps   int
}

type frame struct {
	locals []Value
	temps  []Value
	pc     int
}

// Execute runs prog to completion. It returns nil on success and when the
// program terminates itself, a *RuntimeFault when a fault escapes the
// program, and any other error unchanged.
func Execute(ctx context.Context, prog *Program, bindings Bindings, opts ...Option) error {
	m := &machine{
		ctx:     ctx,
		prog:    prog,
		globals: bindings,
		log:     log.New(io.Discard, "", 0),
		runID:   uuid.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, name := range prog.Globals {
		if _, ok := bindings[name]; !ok {
			return fmt.Errorf("vm: global %q is not bound", name)
		}
	}
	m.funcs = make([]*FunctionValue, len(prog.Functions))
	for i, fn := range prog.Functions {
		m.funcs[i] = &FunctionValue{Index: i, Name: fn.Name}
	}

	m.log.Printf("run %s: start (%d instructions, %d functions)", m.runID, len(prog.Code), len(prog.Functions))
	top := m.newFrame(prog.Locals)
	_, err := m.run(top)
	switch {
	case err == nil:
		m.log.Printf("run %s: finished after %d steps", m.runID, m.steps)
		return nil
	case errors.Is(err, ErrTerminate):
		m.log.Printf("run %s: terminated after %d steps", m.runID, m.steps)
		return nil
	}
	err = prog.extend(err, "", top.pc)
	m.log.Printf("run %s: failed after %d steps: %v", m.runID, m.steps, err)
	return err
}

func (m *machine) newFrame(locals int) *frame {
	return &frame{
		locals: make([]Value, locals),
		temps:  make([]Value, m.prog.Temps),
	}
}

func (m *machine) run(f *frame) (Value, error) {
	code := m.prog.Code
	for {
		if f.pc < 0 || f.pc >= len(code) {
			return nil, fmt.Errorf("vm: instruction pointer %d out of range", f.pc)
		}
		in := code[f.pc]
		m.steps++

		switch in.Op {
		case OpEval:
			if _, err := m.eval(f, in.Term); err != nil {
				return nil, err
			}
		case OpJump:
			if in.Target <= f.pc {
				if err := m.ctx.Err(); err != nil {
					return nil, err
				}
			}
			f.pc = in.Target
			continue
		case OpJumpUnless:
			v, err := m.eval(f, in.Term)
			if err != nil {
				return nil, err
			}
			b, ok := v.(Bool)
			if !ok {
				return nil, fmt.Errorf("vm: condition is %T, not bool", v)
			}
			if !b {
				f.pc = in.Target
				continue
			}
		case OpReturn:
			if in.Term == nil {
				return Nil{}, nil
			}
			return m.eval(f, in.Term)
		case OpIter:
			v, err := m.eval(f, in.Term)
			if err != nil {
				return nil, err
			}
			var items []Value
			switch c := v.(type) {
			case *List:
				items = append(items, c.Items...)
			case *Set:
				items = append(items, c.Items()...)
			default:
				return nil, fmt.Errorf("vm: cannot iterate over %T", v)
			}
			if err := m.store(f, in.Dest, &iterator{items: items}); err != nil {
				return nil, err
			}
		case OpNext:
			v, err := m.eval(f, in.Term)
			if err != nil {
				return nil, err
			}
			it, ok := v.(*iterator)
			if !ok {
				return nil, fmt.Errorf("vm: %T is not an iterator", v)
			}
			if it.pos >= len(it.items) {
				f.pc = in.Target
				continue
			}
			item := it.items[it.pos]
			it.pos++
			if err := m.store(f, in.Dest, item); err != nil {
				return nil, err
			}
		case OpNop:
		case OpHalt:
			return Nil{}, nil
		default:
			return nil, fmt.Errorf("vm: unknown opcode %s", in.Op)
		}
		f.pc++
	}
}

func (m *machine) eval(f *frame, t Term) (Value, error) {
	switch t := t.(type) {
	case Const:
		return t.Value, nil
	case Local:
		return orNil(f.locals[t.Slot]), nil
	case Temp:
		return orNil(f.temps[t.Slot]), nil
	case Global:
		v, ok := m.globals[t.Name]
		if !ok {
			return nil, fmt.Errorf("vm: global %q is not bound", t.Name)
		}
		return v, nil
	case FuncRef:
		return m.funcs[t.Index], nil
	case Unary:
		x, err := m.eval(f, t.X)
		if err != nil {
			return nil, err
		}
		return applyUnary(t.Op, x)
	case Binary:
		x, err := m.eval(f, t.X)
		if err != nil {
			return nil, err
		}
		if b, ok := x.(Bool); ok && (t.Op == OpAnd && !bool(b) || t.Op == OpOr && bool(b)) {
			return b, nil
		}
		y, err := m.eval(f, t.Y)
		if err != nil {
			return nil, err
		}
		return applyBinary(t.Op, x, y)
	case Index:
		x, err := m.eval(f, t.X)
		if err != nil {
			return nil, err
		}
		l, ok := x.(*List)
		if !ok {
			return nil, fmt.Errorf("vm: cannot index %T", x)
		}
		i, err := m.eval(f, t.I)
		if err != nil {
			return nil, err
		}
		n, err := ListIndex(l, i)
		if err != nil {
			return nil, err
		}
		return l.Items[n], nil
	case Call:
		callee, err := m.eval(f, t.Callee)
		if err != nil {
			return nil, err
		}
		args := make([]Value, len(t.Args))
		for i, a := range t.Args {
			if args[i], err = m.eval(f, a); err != nil {
				return nil, err
			}
		}
		return m.call(f, callee, args)
	case MakeList:
		items := make([]Value, len(t.Items))
		for i, it := range t.Items {
			v, err := m.eval(f, it)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return NewList(items...), nil
	case MakeSet:
		return NewSet(), nil
	case Assign:
		v, err := m.eval(f, t.Value)
		if err != nil {
			return nil, err
		}
		if err := m.store(f, t.Dest, v); err != nil {
			return nil, err
		}
		return v, nil
	case Ref:
		return nil, fmt.Errorf("vm: unfilled template reference %s", t)
	}
	return nil, fmt.Errorf("vm: cannot evaluate %T", t)
}

func (m *machine) store(f *frame, dest Term, v Value) error {
	switch d := dest.(type) {
	case Local:
		f.locals[d.Slot] = v
	case Temp:
		f.temps[d.Slot] = v
	case Index:
		x, err := m.eval(f, d.X)
		if err != nil {
			return err
		}
		l, ok := x.(*List)
		if !ok {
			return fmt.Errorf("vm: cannot assign into %T", x)
		}
		i, err := m.eval(f, d.I)
		if err != nil {
			return err
		}
		n, err := ListIndex(l, i)
		if err != nil {
			return err
		}
		l.Items[n] = v
	default:
		return fmt.Errorf("vm: cannot assign to %s", dest)
	}
	return nil
}

// call invokes a user function or an external operation on behalf of frame
// caller. Faults leaving the callee are extended with its name.
func (m *machine) call(caller *frame, callee Value, args []Value) (Value, error) {
	if err := m.ctx.Err(); err != nil {
		return nil, err
	}
	switch fn := callee.(type) {
	case *FunctionValue:
		info := m.prog.Functions[fn.Index]
		if len(args) != info.Arity {
			return nil, fmt.Errorf("vm: %s takes %d arguments, got %d", info.Name, info.Arity, len(args))
		}
		if m.depth >= MaxCallDepth {
			return nil, Errorf(ValueFault, "maximum recursion depth exceeded")
		}
		fr := m.newFrame(info.Locals)
		copy(fr.locals, args)
		fr.pc = info.Entry
		m.depth++
		v, err := m.run(fr)
		m.depth--
		if err != nil {
			return nil, m.prog.extend(err, info.Name, fr.pc)
		}
		return v, nil
	case *Operation:
		v, err := fn.Fn(args)
		if err != nil {
			return nil, m.prog.extend(err, fn.Name, caller.pc)
		}
		if v == nil {
			v = Nil{}
		}
		return v, nil
	}
	return nil, fmt.Errorf("vm: %s is not callable", callee)
}

func orNil(v Value) Value {
	if v == nil {
		return Nil{}
	}
	return v
}
