package pipeline

import (
	"io"
	"log"

	"github.com/funvibe/cubelang/internal/ast"
	"github.com/funvibe/cubelang/internal/expr"
	"github.com/funvibe/cubelang/internal/library"
	"github.com/funvibe/cubelang/internal/token"
	"github.com/funvibe/cubelang/internal/vm"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries the state of one compilation from source text to
// a lowered program.
type PipelineContext struct {
	SourceCode  string
	FilePath    string
	TokenStream []token.Token
	AstRoot     *ast.Node
	// Library supplies the globals the program may refer to. An empty
	// library is used when nil.
	Library *library.Library
	Program *expr.Program
	Lowered *vm.Program
	Errors  []error
	Logger  *log.Logger
}

// Failed reports whether a stage has recorded an error.
func (ctx *PipelineContext) Failed() bool { return len(ctx.Errors) > 0 }

// Log returns the logger of the context, discarding output when none is set.
func (ctx *PipelineContext) Log() *log.Logger {
	if ctx.Logger == nil {
		ctx.Logger = log.New(io.Discard, "", 0)
	}
	return ctx.Logger
}
