package symbols

import (
	"fmt"

	"github.com/funvibe/cubelang/internal/slots"
	"github.com/funvibe/cubelang/internal/typesystem"
)

type SymbolKind int

const (
	VariableSymbol SymbolKind = iota // local variable, lives in a slot
	GlobalSymbol                     // bound by the host at run time
	FunctionSymbol                   // user function, static and read-only
)

func (k SymbolKind) String() string {
	switch k {
	case GlobalSymbol:
		return "global"
	case FunctionSymbol:
		return "function"
	}
	return "variable"
}

// NoSlot marks symbols that do not live in a local slot.
const NoSlot = -1

type Symbol struct {
	Name string
	Type typesystem.Type
	Kind SymbolKind
	Slot int // local slot, or NoSlot
	Func int // index in the function table for FunctionSymbol
}

// IsLocal reports whether the symbol can be written by the program.
func (s Symbol) IsLocal() bool { return s.Slot >= 0 }

type frame struct {
	symbols map[string]Symbol
	slots   int
}

// SymbolTable tracks the names visible at one point of the program. Every
// function body gets its own table created with EnterFunction: it shares the
// globals, has a fresh frame chain and slot pool, and still sees the
// function symbols of the tables enclosing it.
type SymbolTable struct {
	frames     []*frame
	globals    map[string]Symbol
	pool       *slots.Pool
	returnType typesystem.Type
	enclosing  *SymbolTable
}

// New creates a top-level table with a single root frame.
func New() *SymbolTable {
	return &SymbolTable{
		frames:  []*frame{newFrame()},
		globals: make(map[string]Symbol),
		pool:    slots.New(),
	}
}

func newFrame() *frame {
	return &frame{symbols: make(map[string]Symbol)}
}

// EnterFunction returns the table for the body of a function returning ret.
func (st *SymbolTable) EnterFunction(ret typesystem.Type) *SymbolTable {
	return &SymbolTable{
		frames:     []*frame{newFrame()},
		globals:    st.globals,
		pool:       slots.New(),
		returnType: ret,
		enclosing:  st,
	}
}

// PushScope opens a nested block.
func (st *SymbolTable) PushScope() {
	st.frames = append(st.frames, newFrame())
}

// PopScope closes the innermost block and releases exactly the slots its
// locals occupied.
func (st *SymbolTable) PopScope() {
	if len(st.frames) == 1 {
		panic("symbols: cannot pop the root scope")
	}
	top := st.frames[len(st.frames)-1]
	st.frames = st.frames[:len(st.frames)-1]
	st.pool.Deallocate(top.slots)
}

func (st *SymbolTable) current() *frame {
	return st.frames[len(st.frames)-1]
}

// DeclareLocal binds name in the innermost block to a fresh slot. A name
// declared again in the same block gets a new slot and shadows the old one.
func (st *SymbolTable) DeclareLocal(name string, t typesystem.Type) Symbol {
	f := st.current()
	sym := Symbol{Name: name, Type: t, Kind: VariableSymbol, Slot: st.pool.AllocateSingle()}
	f.slots++
	f.symbols[name] = sym
	return sym
}

// DeclareGlobal records a name bound externally at run time.
func (st *SymbolTable) DeclareGlobal(name string, t typesystem.Type) Symbol {
	sym := Symbol{Name: name, Type: t, Kind: GlobalSymbol, Slot: NoSlot}
	st.globals[name] = sym
	return sym
}

// DeclareFunction binds name in the innermost block to the function at
// index of the program's function table.
func (st *SymbolTable) DeclareFunction(name string, t *typesystem.Function, index int) Symbol {
	sym := Symbol{Name: name, Type: t, Kind: FunctionSymbol, Slot: NoSlot, Func: index}
	st.current().symbols[name] = sym
	return sym
}

// Lookup resolves name from the innermost block outwards, then through the
// function symbols of enclosing tables, then among the globals.
func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	if sym, ok := st.lookupFrames(name); ok {
		return sym, true
	}
	for outer := st.enclosing; outer != nil; outer = outer.enclosing {
		if sym, ok := outer.lookupFrames(name); ok {
			if sym.Kind == FunctionSymbol {
				return sym, true
			}
			break
		}
	}
	sym, ok := st.globals[name]
	return sym, ok
}

func (st *SymbolTable) lookupFrames(name string) (Symbol, bool) {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if sym, ok := st.frames[i].symbols[name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// ReturnType is the declared return type of the enclosing function, or nil
// at top level.
func (st *SymbolTable) ReturnType() typesystem.Type { return st.returnType }

// InFunction reports whether the table belongs to a function body.
func (st *SymbolTable) InFunction() bool { return st.enclosing != nil }

// Depth returns the number of open blocks.
func (st *SymbolTable) Depth() int { return len(st.frames) }

// Pool exposes the slot allocator of the table. Its high-water mark sizes
// the frame the table describes.
func (st *SymbolTable) Pool() *slots.Pool { return st.pool }

func (st *SymbolTable) String() string {
	return fmt.Sprintf("SymbolTable(depth=%d, slots=%d, globals=%d)", len(st.frames), st.pool.Count(), len(st.globals))
}
