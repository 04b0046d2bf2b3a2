package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/funvibe/cubelang/internal/expr"
	"github.com/funvibe/cubelang/internal/vm"
)

// TracebackReporter receives the runtime faults that escape a program.
// diagnostics.Printer is one.
type TracebackReporter interface {
	ReportFault(f *vm.RuntimeFault)
}

// ExecutionContext holds a compiled program together with the bindings it
// runs against. A compiled program can be run any number of times.
type ExecutionContext struct {
	Bindings vm.Bindings
	Logger   *log.Logger
	program  *vm.Program
}

func NewExecutionContext(bindings vm.Bindings) *ExecutionContext {
	return &ExecutionContext{Bindings: bindings, Logger: log.New(io.Discard, "", 0)}
}

// Compile lowers prog and keeps the result for Run.
func (e *ExecutionContext) Compile(prog *expr.Program) {
	e.program = expr.Compile(prog)
}

// Load uses an already lowered program.
func (e *ExecutionContext) Load(prog *vm.Program) {
	e.program = prog
}

// Program returns the compiled program, or nil before Compile.
func (e *ExecutionContext) Program() *vm.Program { return e.program }

// Run executes the compiled program. A runtime fault is handed to reporter
// exactly once and Run returns false with a nil error; with a nil reporter
// the fault is returned instead. Other errors are returned unchanged.
func (e *ExecutionContext) Run(ctx context.Context, reporter TracebackReporter) (bool, error) {
	if e.program == nil {
		return false, fmt.Errorf("backend: nothing has been compiled")
	}
	id := uuid.New()
	err := vm.Execute(ctx, e.program, e.Bindings, vm.WithLogger(e.Logger), vm.WithRunID(id))
	if err == nil {
		return true, nil
	}
	var rf *vm.RuntimeFault
	if reporter != nil && errors.As(err, &rf) {
		reporter.ReportFault(rf)
		return false, nil
	}
	return false, err
}
