package vm

import (
	"errors"
	"fmt"
	"strings"
)

// FaultKind is the closed set of failures a program may observe. Any other
// error escaping an operation is a defect of the host.
type FaultKind int

const (
	ValueFault FaultKind = iota + 1
	IndexFault
)

func (k FaultKind) String() string {
	switch k {
	case ValueFault:
		return "ValueError"
	case IndexFault:
		return "IndexError"
	}
	return fmt.Sprintf("FaultKind(%d)", int(k))
}

// Fault is raised by operations and by the machine itself.
type Fault struct {
	Kind    FaultKind
	Message string
}

func (f *Fault) Error() string {
	return f.Message
}

func Errorf(kind FaultKind, format string, args ...interface{}) error {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrTerminate ends a run early. It is not a failure.
var ErrTerminate = errors.New("execution terminated")

// StackEntry is one step of a traceback. Function is empty for the top
// level of the program.
type StackEntry struct {
	Function    string
	Instruction int
	Line        int
}

func (e StackEntry) String() string {
	name := e.Function
	if name == "" {
		name = "<main>"
	}
	return fmt.Sprintf("line %d, in %s", e.Line, name)
}

// RuntimeFault is a fault that reached the top of the program. Entries are
// ordered innermost first.
type RuntimeFault struct {
	Kind    FaultKind
	Message string
	Entries []StackEntry
}

func (f *RuntimeFault) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "runtime error: %s", f.Message)
	for _, e := range f.Entries {
		sb.WriteString("\n  ")
		sb.WriteString(e.String())
	}
	return sb.String()
}

// extend records that err crossed the boundary of name while instruction pc
// was executing. Errors that are neither faults nor runtime faults pass
// through unchanged.
func (p *Program) extend(err error, name string, pc int) error {
	entry := StackEntry{Function: name, Instruction: pc, Line: p.Lines.Lookup(pc)}

	var rf *RuntimeFault
	if errors.As(err, &rf) {
		rf.Entries = append(rf.Entries, entry)
		return rf
	}
	var f *Fault
	if errors.As(err, &f) {
		return &RuntimeFault{Kind: f.Kind, Message: err.Error(), Entries: []StackEntry{entry}}
	}
	return err
}
