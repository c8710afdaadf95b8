package interpreter

import (
	"strings"

	"github.com/funvibe/javatrace/internal/config"
	"github.com/funvibe/javatrace/internal/diagnostics"
	"github.com/funvibe/javatrace/internal/evaluator"
)

// CallFunction implements evaluator.Caller. Besides user functions it serves
// scanner reads used inside expressions, such as sc.nextInt() + 1.
func (x *executor) CallFunction(name string, args []evaluator.Value) (evaluator.Value, error) {
	if scanner, method, ok := strings.Cut(name, "."); ok && scanner != "" && isReadMethod(method) {
		if len(args) != 0 {
			return nil, diagnostics.NewError(diagnostics.ErrE002, "%s takes no arguments", name)
		}
		return x.state.readInput(method, "")
	}

	fn, ok := x.functions.Lookup(name)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrU002, "cannot find symbol: method %s", name)
	}
	if len(args) != fn.Arity() {
		return nil, diagnostics.NewError(diagnostics.ErrE002,
			"method %s expects %d argument(s), got %d", name, fn.Arity(), len(args))
	}
	if len(x.state.CallStack) >= x.maxDepth {
		return nil, diagnostics.NewError(diagnostics.ErrR001,
			"call depth exceeded %d while calling %s", x.maxDepth, name)
	}

	env := evaluator.NewEnclosedEnvironment(x.state.Globals)
	for i, param := range fn.Params {
		arg := args[i]
		if arg.Type() == evaluator.UNSET_VALUE {
			return nil, diagnostics.NewError(diagnostics.ErrE002,
				"argument %d of %s has no value", i+1, name)
		}
		if err := env.Declare(param, arg.Type(), arg); err != nil {
			return nil, err
		}
	}

	x.frames = append(x.frames, frame{fn: fn, env: env})
	x.state.CallStack = append(x.state.CallStack, fn.Name)
	defer func() {
		x.frames = x.frames[:len(x.frames)-1]
		x.state.CallStack = x.state.CallStack[:len(x.state.CallStack)-1]
	}()

	out, err := x.runBlock(&block{lines: fn.Body})
	if err != nil {
		return nil, err
	}
	if !out.returned {
		return evaluator.UNSET, nil
	}
	return out.value, nil
}

func isReadMethod(method string) bool {
	for _, m := range config.ReadMethodNames {
		if m == method {
			return true
		}
	}
	return false
}
