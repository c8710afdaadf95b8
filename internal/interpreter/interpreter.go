// Package interpreter runs a program line by line and records a step after
// every statement it executes.
package interpreter

import (
	"context"
	"log"

	"github.com/funvibe/javatrace/internal/config"
	"github.com/funvibe/javatrace/internal/pipeline"
	"github.com/funvibe/javatrace/internal/trace"
)

type Options struct {
	// MaxCallDepth bounds the call stack. Zero means the default; values
	// above config.MaxCallDepthLimit are lowered to it.
	MaxCallDepth int
	// MaxSteps bounds the recorded steps. Zero means the default.
	MaxSteps int
	// Logger, when set, receives one line per executed statement.
	Logger *log.Logger
}

// Interpreter is safe for concurrent use; every Run gets its own state.
type Interpreter struct {
	opts Options
}

func New(opts Options) *Interpreter {
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = config.DefaultMaxCallDepth
	}
	if opts.MaxCallDepth > config.MaxCallDepthLimit {
		opts.MaxCallDepth = config.MaxCallDepthLimit
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = config.DefaultMaxSteps
	}
	return &Interpreter{opts: opts}
}

// Run executes source against inputs. On failure it returns the steps
// recorded before the error together with the error.
func (in *Interpreter) Run(ctx context.Context, source string, inputs []string) (*trace.Trace, error) {
	pctx := pipeline.NewPipelineContext(ctx, source, inputs)
	pctx = in.Pipeline().Run(pctx)
	return pctx.Trace, pctx.Err()
}

// Pipeline returns the stages of a run: split lines, collect functions,
// execute.
func (in *Interpreter) Pipeline() *pipeline.Pipeline {
	return pipeline.New(
		&LinesProcessor{},
		&FunctionTableProcessor{},
		&ExecutionProcessor{Options: in.opts},
	)
}

// Run executes source with default options.
func Run(ctx context.Context, source string, inputs []string) (*trace.Trace, error) {
	return New(Options{}).Run(ctx, source, inputs)
}
