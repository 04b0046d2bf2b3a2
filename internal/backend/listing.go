package backend

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/funvibe/cubelang/internal/pipeline"
	"github.com/funvibe/cubelang/internal/vm"
)

// ListingBackend prints the lowered program instead of running it.
type ListingBackend struct {
	Out io.Writer
}

func NewListing(out io.Writer) *ListingBackend {
	return &ListingBackend{Out: out}
}

func (b *ListingBackend) Run(_ context.Context, pctx *pipeline.PipelineContext) error {
	if pctx.Lowered == nil {
		return fmt.Errorf("no program to list")
	}
	name := "main"
	if pctx.FilePath != "" {
		name = filepath.Base(pctx.FilePath)
	}
	_, err := io.WriteString(b.Out, vm.Disassemble(pctx.Lowered, name))
	return err
}

func (b *ListingBackend) Name() string {
	return "listing"
}
