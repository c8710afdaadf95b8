package interpreter

import (
	"context"
	"log"

	"github.com/funvibe/javatrace/internal/classifier"
	"github.com/funvibe/javatrace/internal/config"
	"github.com/funvibe/javatrace/internal/diagnostics"
	"github.com/funvibe/javatrace/internal/evaluator"
	"github.com/funvibe/javatrace/internal/source"
	"github.com/funvibe/javatrace/internal/symbols"
	"github.com/funvibe/javatrace/internal/trace"
)

// executor owns the state of a single run.
type executor struct {
	ctx       context.Context
	maxDepth  int
	maxSteps  int
	logger    *log.Logger
	functions *symbols.Table
	state     *ExecutionState
	recorder  *trace.Recorder
	eval      *evaluator.Evaluator

	// frames holds every active call, innermost last.
	frames []frame
}

type frame struct {
	fn  *symbols.FunctionDef
	env *evaluator.Environment
}

func newExecutor(ctx context.Context, opts Options, functions *symbols.Table, inputs []string) *executor {
	x := &executor{
		ctx:       ctx,
		maxDepth:  opts.MaxCallDepth,
		maxSteps:  opts.MaxSteps,
		logger:    opts.Logger,
		functions: functions,
		state:     NewExecutionState(inputs),
		recorder:  trace.NewRecorder(),
	}
	x.eval = evaluator.New(x)
	return x
}

// block walks an ordered list of lines, optionally skipping some.
type block struct {
	lines []source.Line
	skip  func(int) bool
	pos   int
}

func (b *block) next() (source.Line, bool) {
	for b.pos < len(b.lines) {
		i := b.pos
		b.pos++
		if b.skip != nil && b.skip(i) {
			continue
		}
		return b.lines[i], true
	}
	return source.Line{}, false
}

// outcome tells a block whether a statement ended it.
type outcome struct {
	returned bool
	value    evaluator.Value
}

func (x *executor) runProgram(lines []source.Line) error {
	_, err := x.runBlock(&block{lines: lines, skip: x.functions.IsDefinitionLine})
	return err
}

// runBlock executes statements until the block ends or one of them returns.
func (x *executor) runBlock(b *block) (outcome, error) {
	for {
		line, ok := b.next()
		if !ok {
			return outcome{}, nil
		}
		if err := x.ctx.Err(); err != nil {
			return outcome{}, err
		}
		out, err := x.execLine(b, line)
		if err != nil {
			return outcome{}, err
		}
		if out.returned {
			return out, nil
		}
	}
}

func (x *executor) env() *evaluator.Environment {
	if n := len(x.frames); n > 0 {
		return x.frames[n-1].env
	}
	return x.state.Globals
}

func (x *executor) record(line source.Line) error {
	if x.recorder.Len() >= x.maxSteps {
		return diagnostics.NewError(diagnostics.ErrR002, "step limit of %d exceeded", x.maxSteps).
			At(line.Number, line.Text, x.state.CallStack)
	}
	x.recorder.Record(line, x.env().Snapshot(), x.state.Output, x.state.CallStack)
	return nil
}

// locate pins err to line unless an inner statement already did.
func (x *executor) locate(err error, line source.Line) error {
	if de, ok := diagnostics.As(err); ok {
		return de.At(line.Number, line.Text, x.state.CallStack)
	}
	return err
}

// execLine classifies and executes one line, recording its step.
func (x *executor) execLine(b *block, line source.Line) (outcome, error) {
	st, err := classifier.Classify(line.Text)
	if err != nil {
		return outcome{}, x.locate(err, line)
	}
	if st.Kind == classifier.Ignorable {
		return outcome{}, nil
	}
	if x.logger != nil {
		x.logger.Printf("line %d: %s: %s", line.Number, st.Kind, line.Text)
	}

	if st.Kind == classifier.Conditional {
		return x.execConditional(b, line, st)
	}

	out, err := x.execStatement(st)
	if err != nil {
		return outcome{}, x.locate(err, line)
	}
	if err := x.record(line); err != nil {
		return outcome{}, err
	}
	return out, nil
}

func (x *executor) execStatement(st classifier.Statement) (outcome, error) {
	switch st.Kind {
	case classifier.Declaration:
		return outcome{}, x.execDeclaration(st)
	case classifier.Assignment:
		return outcome{}, x.execAssignment(st)
	case classifier.Print:
		return outcome{}, x.execPrint(st)
	case classifier.InputRead:
		return outcome{}, x.execInputRead(st)
	case classifier.Call:
		_, err := x.eval.EvalString(st.Expr, x.env(), "")
		return outcome{}, err
	case classifier.Return:
		return x.execReturn(st)
	}
	return outcome{}, diagnostics.NewError(diagnostics.ErrC001, "unsupported statement %q", st.Text)
}

// execConditional records the condition line, then runs the body only when
// the condition holds. The body is the rest of the line or, when that is
// empty, the next line of the block.
func (x *executor) execConditional(b *block, line source.Line, st classifier.Statement) (outcome, error) {
	cond, err := x.eval.EvalCondition(st.Expr, x.env())
	if err != nil {
		return outcome{}, x.locate(err, line)
	}
	if err := x.record(line); err != nil {
		return outcome{}, err
	}

	body, err := x.conditionalBody(b, line, st)
	if err != nil {
		return outcome{}, err
	}
	if !cond {
		return outcome{}, x.skipBody(b, body)
	}
	return x.execLine(b, body)
}

func (x *executor) conditionalBody(b *block, line source.Line, st classifier.Statement) (source.Line, error) {
	noBody := func() error {
		return diagnostics.NewError(diagnostics.ErrS003, "if (%s) has no statement to run", st.Expr).
			At(line.Number, line.Text, x.state.CallStack)
	}
	if st.Body != "" {
		return source.Line{Number: line.Number, Text: st.Body}, nil
	}
	body, ok := b.next()
	if !ok {
		return source.Line{}, noBody()
	}
	bodySt, err := classifier.Classify(body.Text)
	if err == nil && bodySt.Kind == classifier.Ignorable {
		return source.Line{}, noBody()
	}
	return body, nil
}

// skipBody passes over a body that is not run. A body that is itself a
// conditional reading its own body from the next line takes that line too.
func (x *executor) skipBody(b *block, body source.Line) error {
	st, err := classifier.Classify(body.Text)
	if err != nil {
		return x.locate(err, body)
	}
	if st.Kind != classifier.Conditional {
		return nil
	}
	inner, err := x.conditionalBody(b, body, st)
	if err != nil {
		return err
	}
	return x.skipBody(b, inner)
}

func (x *executor) execDeclaration(st classifier.Statement) error {
	t, ok := evaluator.TypeForKeyword(st.Type)
	if !ok {
		return diagnostics.NewError(diagnostics.ErrE002, "unknown type %s", st.Type)
	}
	var val evaluator.Value = evaluator.UNSET
	if st.Expr != "" {
		v, err := x.eval.EvalString(st.Expr, x.env(), t)
		if err != nil {
			return err
		}
		val = v
	}
	return x.env().Declare(st.Name, t, val)
}

func (x *executor) execAssignment(st classifier.Statement) error {
	env := x.env()
	if st.Operator == "=" {
		val, err := x.eval.EvalString(st.Expr, env, "")
		if err != nil {
			return err
		}
		return env.Assign(st.Name, val)
	}

	current, ok := env.Get(st.Name)
	if !ok {
		return diagnostics.NewError(diagnostics.ErrU001, "variable %s is not declared", st.Name)
	}
	if current.Value.Type() == evaluator.UNSET_VALUE {
		return diagnostics.NewError(diagnostics.ErrE002, "variable %s might not have been initialized", st.Name)
	}

	var operator string
	var operand evaluator.Value
	switch st.Operator {
	case "++", "--":
		operator = st.Operator[:1]
		operand = evaluator.Integer{Value: 1}
	default:
		operator = st.Operator[:1]
		v, err := x.eval.EvalString(st.Expr, env, "")
		if err != nil {
			return err
		}
		operand = v
	}
	result, err := evaluator.ApplyOperator(operator, current.Value, operand)
	if err != nil {
		return err
	}
	return env.Assign(st.Name, result)
}

func (x *executor) execPrint(st classifier.Statement) error {
	if st.Expr == "" {
		if !st.Newline {
			return diagnostics.NewError(diagnostics.ErrE002, "%s needs an argument", config.PrintTarget)
		}
		x.state.print("")
		return nil
	}
	val, err := x.eval.EvalString(st.Expr, x.env(), "")
	if err != nil {
		return err
	}
	if val.Type() == evaluator.UNSET_VALUE {
		x.state.print("null")
		return nil
	}
	x.state.print(val.Inspect())
	return nil
}

func (x *executor) execInputRead(st classifier.Statement) error {
	env := x.env()
	if st.Type != "" {
		t, ok := evaluator.TypeForKeyword(st.Type)
		if !ok {
			return diagnostics.NewError(diagnostics.ErrE002, "unknown type %s", st.Type)
		}
		val, err := x.state.readInput(st.Method, t)
		if err != nil {
			return err
		}
		return env.Declare(st.Name, t, val)
	}

	v, ok := env.Get(st.Name)
	if !ok {
		return diagnostics.NewError(diagnostics.ErrU001, "variable %s is not declared", st.Name)
	}
	val, err := x.state.readInput(st.Method, v.Type)
	if err != nil {
		return err
	}
	return env.Assign(st.Name, val)
}

// execReturn ends the current call, or the whole run at top level. Inside a
// function the value is coerced to the declared return type.
func (x *executor) execReturn(st classifier.Statement) (outcome, error) {
	var fn *symbols.FunctionDef
	if n := len(x.frames); n > 0 {
		fn = x.frames[n-1].fn
	}

	if st.Expr == "" {
		if fn != nil && fn.ReturnType != config.VoidTypeName {
			return outcome{}, diagnostics.NewError(diagnostics.ErrE002, "missing return value in %s", fn.Name)
		}
		return outcome{returned: true, value: evaluator.UNSET}, nil
	}
	if fn != nil && fn.ReturnType == config.VoidTypeName {
		return outcome{}, diagnostics.NewError(diagnostics.ErrE002, "incompatible types: unexpected return value in void %s", fn.Name)
	}

	target := evaluator.ValueType("")
	if fn != nil {
		t, ok := evaluator.TypeForKeyword(fn.ReturnType)
		if !ok {
			return outcome{}, diagnostics.NewError(diagnostics.ErrE002, "unsupported return type %s", fn.ReturnType)
		}
		target = t
	}
	val, err := x.eval.EvalString(st.Expr, x.env(), target)
	if err != nil {
		return outcome{}, err
	}
	return outcome{returned: true, value: val}, nil
}
