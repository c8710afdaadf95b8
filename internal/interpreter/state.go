package interpreter

import (
	"strconv"
	"strings"

	"github.com/funvibe/javatrace/internal/config"
	"github.com/funvibe/javatrace/internal/diagnostics"
	"github.com/funvibe/javatrace/internal/evaluator"
)

// ExecutionState is everything one run mutates. It lives for exactly one
// run and is never shared.
type ExecutionState struct {
	Globals   *evaluator.Environment
	Output    []string
	CallStack []string

	inputs []string
	cursor int
}

func NewExecutionState(inputs []string) *ExecutionState {
	return &ExecutionState{
		Globals: evaluator.NewEnvironment(),
		inputs:  inputs,
	}
}

// InputsConsumed is the number of input lines read so far.
func (s *ExecutionState) InputsConsumed() int { return s.cursor }

func (s *ExecutionState) print(text string) {
	s.Output = append(s.Output, text)
}

// readInput consumes the next input line and parses it the way the scanner
// method does. Once input runs out every read yields the zero value of
// target, or of the method's own type when target is empty.
func (s *ExecutionState) readInput(method string, target evaluator.ValueType) (evaluator.Value, error) {
	if target == "" {
		target = methodType(method)
	}
	if s.cursor >= len(s.inputs) {
		return evaluator.DefaultValue(target), nil
	}
	raw := s.inputs[s.cursor]
	s.cursor++

	switch method {
	case config.NextIntMethod, config.NextLongMethod:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, inputError(method, raw)
		}
		return evaluator.Integer{Value: n}, nil
	case config.NextDoubleMethod:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, inputError(method, raw)
		}
		return evaluator.Real{Value: f}, nil
	case config.NextBooleanMethod:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true":
			return evaluator.TRUE, nil
		case "false":
			return evaluator.FALSE, nil
		}
		return nil, inputError(method, raw)
	case config.NextMethod:
		return evaluator.Text{Value: strings.TrimSpace(raw)}, nil
	}
	return evaluator.Text{Value: raw}, nil
}

func methodType(method string) evaluator.ValueType {
	switch method {
	case config.NextIntMethod, config.NextLongMethod:
		return evaluator.INTEGER_VALUE
	case config.NextDoubleMethod:
		return evaluator.REAL_VALUE
	case config.NextBooleanMethod:
		return evaluator.BOOLEAN_VALUE
	}
	return evaluator.TEXT_VALUE
}

func inputError(method, raw string) error {
	return diagnostics.NewError(diagnostics.ErrE003, "input mismatch: %s cannot read %q", method, raw)
}
