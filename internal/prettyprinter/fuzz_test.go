package prettyprinter

import (
	"testing"

	"github.com/funvibe/cubelang/internal/lexer"
	"github.com/funvibe/cubelang/internal/parser"
	"github.com/funvibe/cubelang/internal/pipeline"
)

// FuzzFormat checks that every program the parser accepts formats to
// source that parses again and formats to the same text.
func FuzzFormat(f *testing.F) {
	f.Add("let x: int = (1 + 2) * -3")
	f.Add("RUR'U'\nL[1:2, 3] R2[n:]")
	f.Add("orient top: {G--/---/---} then\n    R\nelse\n    U\nend")
	f.Add("do\n    R\nwhile top[0, 0] != red")

	f.Fuzz(func(t *testing.T, input string) {
		first := pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(&pipeline.PipelineContext{SourceCode: input})
		if first.Failed() || first.AstRoot == nil {
			return
		}
		formatted := Format(first.AstRoot)

		second := pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(&pipeline.PipelineContext{SourceCode: formatted})
		if second.Failed() {
			t.Fatalf("formatted program does not parse: %v\n%s", second.Errors, formatted)
		}
		if again := Format(second.AstRoot); again != formatted {
			t.Fatalf("formatting is not stable:\n%s\n---\n%s", formatted, again)
		}
	})
}
