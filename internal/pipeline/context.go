package pipeline

import (
	"context"

	"github.com/funvibe/javatrace/internal/source"
	"github.com/funvibe/javatrace/internal/symbols"
	"github.com/funvibe/javatrace/internal/trace"
)

// Processor is one stage of a run.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries a run from source text to trace.
type PipelineContext struct {
	Context    context.Context
	FilePath   string
	SourceCode string
	Inputs     []string

	Lines     []source.Line
	Functions *symbols.Table
	Trace     *trace.Trace

	Errors []error
}

func NewPipelineContext(ctx context.Context, sourceCode string, inputs []string) *PipelineContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &PipelineContext{Context: ctx, SourceCode: sourceCode, Inputs: inputs}
}

// Err returns the first error recorded by any stage.
func (c *PipelineContext) Err() error {
	if len(c.Errors) == 0 {
		return nil
	}
	return c.Errors[0]
}

func (c *PipelineContext) AddError(err error) {
	c.Errors = append(c.Errors, err)
}
