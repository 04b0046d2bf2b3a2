package vm

import (
	"fmt"
	"sort"
)

type Opcode byte

const (
	OpEval       Opcode = iota // evaluate Term, discard the result
	OpJump                     // continue at Target
	OpJumpUnless               // continue at Target when Term is false
	OpReturn                   // leave the function with Term (nil: none)
	OpIter                     // store an iterator over a snapshot of Term in Dest
	OpNext                     // advance iterator Term into Dest, or continue at Target
	OpNop
	OpHalt
)

var opcodeNames = [...]string{
	OpEval:       "EVAL",
	OpJump:       "JUMP",
	OpJumpUnless: "JUMP_UNLESS",
	OpReturn:     "RETURN",
	OpIter:       "ITER",
	OpNext:       "NEXT",
	OpNop:        "NOP",
	OpHalt:       "HALT",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Instr is one lowered statement.
type Instr struct {
	Op     Opcode
	Term   Term
	Dest   Term
	Target int
}

// FunctionInfo describes an entry of the function table. Locals is the
// number of variable slots a call frame needs; the first Arity of them
// receive the arguments.
type FunctionInfo struct {
	Name   string
	Entry  int
	Arity  int
	Locals int
}

// Program is the result of lowering. It is not modified by execution and
// can be run any number of times.
type Program struct {
	Code      []Instr
	Lines     LineMap
	Functions []FunctionInfo
	Locals    int
	Temps     int
	Globals   []string
}

// LineMap maps lowered instruction indices to source lines. Not every
// instruction has a line of its own.
type LineMap struct {
	lines []int
}

// Add records that instruction index came from source line.
func (m *LineMap) Add(index, line int) {
	for len(m.lines) <= index {
		m.lines = append(m.lines, 0)
	}
	m.lines[index] = line
}

// Lookup returns the line of index, or of the nearest earlier instruction
// that has one, or 0.
func (m LineMap) Lookup(index int) int {
	if index >= len(m.lines) {
		index = len(m.lines) - 1
	}
	for ; index >= 0; index-- {
		if m.lines[index] > 0 {
			return m.lines[index]
		}
	}
	return 0
}

func (m LineMap) Len() int { return len(m.lines) }

// Builder accumulates instructions during lowering.
type Builder struct {
	prog    *Program
	globals map[string]bool
}

func NewBuilder() *Builder {
	return &Builder{prog: &Program{}, globals: make(map[string]bool)}
}

// Emit appends in and maps it to line when line is positive.
func (b *Builder) Emit(in Instr, line int) int {
	index := len(b.prog.Code)
	b.prog.Code = append(b.prog.Code, in)
	if line > 0 {
		b.prog.Lines.Add(index, line)
	}
	b.noteGlobals(in.Term)
	b.noteGlobals(in.Dest)
	return index
}

// Len is the index the next emitted instruction will get.
func (b *Builder) Len() int { return len(b.prog.Code) }

// Patch points the jump at index to target.
func (b *Builder) Patch(index, target int) {
	b.prog.Code[index].Target = target
}

// DefineFunction reserves the function table entry index.
func (b *Builder) DefineFunction(index int, info FunctionInfo) {
	for len(b.prog.Functions) <= index {
		b.prog.Functions = append(b.prog.Functions, FunctionInfo{})
	}
	b.prog.Functions[index] = info
}

// Finish returns the program sized with the given frame requirements.
func (b *Builder) Finish(locals, temps int) *Program {
	p := b.prog
	p.Locals = locals
	p.Temps = temps
	p.Globals = p.Globals[:0]
	for name := range b.globals {
		p.Globals = append(p.Globals, name)
	}
	sort.Strings(p.Globals)
	b.prog = &Program{}
	return p
}

func (b *Builder) noteGlobals(t Term) {
	var walk func(Term)
	walk = func(t Term) {
		switch t := t.(type) {
		case Global:
			b.globals[t.Name] = true
		case Unary:
			walk(t.X)
		case Binary:
			walk(t.X)
			walk(t.Y)
		case Index:
			walk(t.X)
			walk(t.I)
		case Call:
			walk(t.Callee)
			for _, a := range t.Args {
				walk(a)
			}
		case MakeList:
			for _, a := range t.Items {
				walk(a)
			}
		case Assign:
			walk(t.Dest)
			walk(t.Value)
		}
	}
	walk(t)
}
