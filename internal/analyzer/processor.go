package analyzer

import (
	"errors"

	"github.com/funvibe/cubelang/internal/diagnostics"
	"github.com/funvibe/cubelang/internal/expr"
	"github.com/funvibe/cubelang/internal/library"
	"github.com/funvibe/cubelang/internal/pipeline"
)

type AnalyzerProcessor struct{}

func (ap *AnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}
	if ctx.Library == nil {
		ctx.Library = library.New()
	}

	prog, err := New(ctx.Library).Analyze(ctx.AstRoot)
	if err != nil {
		var d diagnostics.Diagnostic
		if errors.As(err, &d) {
			d.Diagnostic().File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Program = prog
	ctx.Log().Printf("analyzer: %d nodes, %d locals", len(prog.Nodes), prog.Locals)
	return ctx
}

// LoweringProcessor turns the expression tree into a flat program.
type LoweringProcessor struct{}

func (lp *LoweringProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil {
		return ctx
	}
	ctx.Lowered = expr.Compile(ctx.Program)
	ctx.Log().Printf("lowering: %d instructions, %d functions, %d temporaries",
		len(ctx.Lowered.Code), len(ctx.Lowered.Functions), ctx.Lowered.Temps)
	return ctx
}
