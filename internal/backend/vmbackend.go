package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/funvibe/cubelang/internal/library"
	"github.com/funvibe/cubelang/internal/pipeline"
)

// ErrFaultReported is returned by VMBackend.Run when a runtime fault has
// already been handed to its reporter.
var ErrFaultReported = errors.New("runtime fault reported")

// VMBackend executes lowered programs against the bindings of the context's
// library.
type VMBackend struct {
	// Timeout bounds a run; zero means no limit.
	Timeout time.Duration
	// Reporter, when set, receives runtime faults instead of the caller.
	Reporter TracebackReporter
}

// NewVM creates a new VM backend
func NewVM(timeout time.Duration, reporter TracebackReporter) *VMBackend {
	return &VMBackend{Timeout: timeout, Reporter: reporter}
}

// Run executes the lowered program of pctx.
func (b *VMBackend) Run(ctx context.Context, pctx *pipeline.PipelineContext) error {
	if pctx.Lowered == nil {
		return fmt.Errorf("no program to execute")
	}
	lib := pctx.Library
	if lib == nil {
		lib = library.New()
	}
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	exec := NewExecutionContext(lib.Bindings())
	exec.Logger = pctx.Log()
	exec.Load(pctx.Lowered)
	ok, err := exec.Run(ctx, b.Reporter)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("run exceeded the time limit of %s: %w", b.Timeout, err)
	}
	if err != nil {
		return err
	}
	if !ok {
		return ErrFaultReported
	}
	return nil
}

// Name returns the backend name
func (b *VMBackend) Name() string {
	return "vm"
}
