package lexer

import (
	"github.com/funvibe/cubelang/internal/pipeline"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.TokenStream = New(ctx.SourceCode).Tokens()
	ctx.Log().Printf("lexer: %d tokens", len(ctx.TokenStream))
	return ctx
}
