package interpreter

import (
	"github.com/funvibe/javatrace/internal/evaluator"
	"github.com/funvibe/javatrace/internal/pipeline"
	"github.com/funvibe/javatrace/internal/source"
	"github.com/funvibe/javatrace/internal/symbols"
	"github.com/funvibe/javatrace/internal/trace"
)

// LinesProcessor splits the source into trimmed, non-empty lines.
type LinesProcessor struct{}

func (lp *LinesProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.Lines = source.Split(ctx.SourceCode)
	return ctx
}

// FunctionTableProcessor is the first pass: it collects every function
// definition before anything runs.
type FunctionTableProcessor struct{}

func (fp *FunctionTableProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if len(ctx.Errors) > 0 {
		return ctx
	}
	table, err := symbols.Build(ctx.Lines)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Functions = table
	return ctx
}

// ExecutionProcessor is the second pass: it runs the top-level lines and
// stores the trace, partial when execution fails.
type ExecutionProcessor struct {
	Options Options
}

func (ep *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if len(ctx.Errors) > 0 || ctx.Functions == nil {
		ctx.Trace = &trace.Trace{}
		return ctx
	}

	x := newExecutor(ctx.Context, ep.Options, ctx.Functions, ctx.Inputs)
	err := x.runProgram(ctx.Lines)
	x.recorder.SetInputsConsumed(x.state.InputsConsumed())
	ctx.Trace = x.recorder.Trace()
	if err != nil {
		ctx.AddError(err)
	}
	return ctx
}

// compile-time check
var _ evaluator.Caller = (*executor)(nil)
