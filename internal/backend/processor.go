package backend

import (
	"context"

	"github.com/funvibe/cubelang/internal/pipeline"
)

// ExecutionProcessor implements pipeline.Processor to run a Backend
type ExecutionProcessor struct {
	Backend Backend
	// Context is passed to the backend; context.Background() when nil.
	Context context.Context
}

// NewExecutionProcessor creates a new pipeline step for the given backend
func NewExecutionProcessor(ctx context.Context, b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b, Context: ctx}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous steps failed, don't run execution
	if ctx.Lowered == nil || ctx.Failed() {
		return ctx
	}
	c := p.Context
	if c == nil {
		c = context.Background()
	}

	ctx.Log().Printf("%s: start", p.Backend.Name())
	if err := p.Backend.Run(c, ctx); err != nil {
		ctx.Log().Printf("%s: %v", p.Backend.Name(), err)
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Log().Printf("%s: done", p.Backend.Name())
	return ctx
}
