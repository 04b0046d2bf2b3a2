// Package backend provides the ways a lowered program is consumed: run by
// the virtual machine or printed as a listing.
package backend

import (
	"context"

	"github.com/funvibe/cubelang/internal/pipeline"
)

// Backend is the interface for execution backends
type Backend interface {
	// Run consumes the lowered program of the pipeline context
	Run(ctx context.Context, pctx *pipeline.PipelineContext) error

	// Name returns the backend name for display
	Name() string
}
