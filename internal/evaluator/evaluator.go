package evaluator

import (
	"math"

	"github.com/funvibe/javatrace/internal/ast"
	"github.com/funvibe/javatrace/internal/diagnostics"
	"github.com/funvibe/javatrace/internal/parser"
)

// Caller runs user-defined functions on behalf of the evaluator. Arguments
// have already been evaluated in the caller's scope.
type Caller interface {
	CallFunction(name string, args []Value) (Value, error)
}

type Evaluator struct {
	// Caller is consulted for calls that are not built-ins. A nil Caller
	// makes every such call an undefined symbol.
	Caller Caller
}

func New(caller Caller) *Evaluator {
	return &Evaluator{Caller: caller}
}

// EvalString parses expr, evaluates it against env and, when target is not
// empty, coerces the result to target.
func (e *Evaluator) EvalString(expr string, env *Environment, target ValueType) (Value, error) {
	node, err := parser.Parse(expr)
	if err != nil {
		return nil, diagnostics.NewError(diagnostics.ErrE001, "invalid expression %q: %v", expr, err)
	}
	val, err := e.Eval(node, env)
	if err != nil {
		return nil, err
	}
	if target == "" {
		return val, nil
	}
	return Coerce(val, target)
}

// EvalCondition evaluates expr and requires a boolean result.
func (e *Evaluator) EvalCondition(expr string, env *Environment) (bool, error) {
	val, err := e.EvalString(expr, env, "")
	if err != nil {
		return false, err
	}
	b, ok := val.(Boolean)
	if !ok {
		return false, evalErrorf("incompatible types: %s cannot be converted to boolean", TypeName(val.Type()))
	}
	return b.Value, nil
}

func (e *Evaluator) Eval(node ast.Expression, env *Environment) (Value, error) {
	switch node := node.(type) {
	case *ast.IntegerLiteral:
		return Integer{Value: node.Value}, nil
	case *ast.FloatLiteral:
		return Real{Value: node.Value}, nil
	case *ast.StringLiteral:
		return Text{Value: node.Value}, nil
	case *ast.BooleanLiteral:
		return nativeBoolToBoolean(node.Value), nil
	case *ast.NullLiteral:
		return UNSET, nil
	case *ast.Identifier:
		return e.evalIdentifier(node, env)
	case *ast.PrefixExpression:
		right, err := e.Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		return evalPrefixExpression(node.Operator, right)
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)
	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	}
	return nil, evalErrorf("unsupported expression %s", node.String())
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) (Value, error) {
	v, ok := env.Get(node.Value)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrU001, "variable %s is not declared", node.Value)
	}
	if v.Value.Type() == UNSET_VALUE {
		return nil, evalErrorf("variable %s might not have been initialized", node.Value)
	}
	return v.Value, nil
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) (Value, error) {
	args := make([]Value, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		v, err := e.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	name := node.Function.Value
	if builtin, ok := Builtins[name]; ok {
		return builtin(args...)
	}
	if e.Caller == nil {
		return nil, diagnostics.NewError(diagnostics.ErrU002, "function %s is not defined", name)
	}
	return e.Caller.CallFunction(name, args)
}

func evalPrefixExpression(operator string, right Value) (Value, error) {
	switch operator {
	case "!":
		b, ok := right.(Boolean)
		if !ok {
			return nil, badOperand(operator, right)
		}
		return nativeBoolToBoolean(!b.Value), nil
	case "-":
		switch r := right.(type) {
		case Integer:
			return Integer{Value: -r.Value}, nil
		case Real:
			return Real{Value: -r.Value}, nil
		}
	case "+":
		if isNumeric(right) {
			return right, nil
		}
	}
	return nil, badOperand(operator, right)
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) (Value, error) {
	left, err := e.Eval(node.Left, env)
	if err != nil {
		return nil, err
	}

	// && and || short-circuit, so the right operand may never run.
	if node.Operator == "&&" || node.Operator == "||" {
		l, ok := left.(Boolean)
		if !ok {
			return nil, badOperand(node.Operator, left)
		}
		if node.Operator == "&&" && !l.Value {
			return FALSE, nil
		}
		if node.Operator == "||" && l.Value {
			return TRUE, nil
		}
		right, err := e.Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		r, ok := right.(Boolean)
		if !ok {
			return nil, badOperand(node.Operator, right)
		}
		return r, nil
	}

	right, err := e.Eval(node.Right, env)
	if err != nil {
		return nil, err
	}
	return evalInfix(node.Operator, left, right)
}

func evalInfix(operator string, left, right Value) (Value, error) {
	switch operator {
	case "==", "!=":
		eq, err := valuesEqual(left, right)
		if err != nil {
			return nil, err
		}
		if operator == "!=" {
			eq = !eq
		}
		return nativeBoolToBoolean(eq), nil
	}

	if left.Type() == UNSET_VALUE || right.Type() == UNSET_VALUE {
		return nil, evalErrorf("operator %s cannot be applied to a value-less call or null", operator)
	}

	if operator == "+" && (left.Type() == TEXT_VALUE || right.Type() == TEXT_VALUE) {
		return Text{Value: left.Inspect() + right.Inspect()}, nil
	}

	if !isNumeric(left) || !isNumeric(right) {
		return nil, evalErrorf("bad operand types for %s: %s and %s", operator, TypeName(left.Type()), TypeName(right.Type()))
	}

	l, lok := left.(Integer)
	r, rok := right.(Integer)
	if lok && rok {
		return evalIntegerInfix(operator, l.Value, r.Value)
	}
	return evalRealInfix(operator, toFloat(left), toFloat(right))
}

func evalIntegerInfix(operator string, l, r int64) (Value, error) {
	switch operator {
	case "+":
		return Integer{Value: l + r}, nil
	case "-":
		return Integer{Value: l - r}, nil
	case "*":
		return Integer{Value: l * r}, nil
	case "/":
		if r == 0 {
			return nil, evalErrorf("/ by zero")
		}
		return Integer{Value: l / r}, nil
	case "%":
		if r == 0 {
			return nil, evalErrorf("/ by zero")
		}
		return Integer{Value: l % r}, nil
	case "<":
		return nativeBoolToBoolean(l < r), nil
	case ">":
		return nativeBoolToBoolean(l > r), nil
	case "<=":
		return nativeBoolToBoolean(l <= r), nil
	case ">=":
		return nativeBoolToBoolean(l >= r), nil
	}
	return nil, evalErrorf("unknown operator %s", operator)
}

func evalRealInfix(operator string, l, r float64) (Value, error) {
	switch operator {
	case "+":
		return Real{Value: l + r}, nil
	case "-":
		return Real{Value: l - r}, nil
	case "*":
		return Real{Value: l * r}, nil
	case "/":
		return Real{Value: l / r}, nil
	case "%":
		return Real{Value: math.Mod(l, r)}, nil
	case "<":
		return nativeBoolToBoolean(l < r), nil
	case ">":
		return nativeBoolToBoolean(l > r), nil
	case "<=":
		return nativeBoolToBoolean(l <= r), nil
	case ">=":
		return nativeBoolToBoolean(l >= r), nil
	}
	return nil, evalErrorf("unknown operator %s", operator)
}

func valuesEqual(left, right Value) (bool, error) {
	if isNumeric(left) && isNumeric(right) {
		l, lok := left.(Integer)
		r, rok := right.(Integer)
		if lok && rok {
			return l.Value == r.Value, nil
		}
		return toFloat(left) == toFloat(right), nil
	}
	if left.Type() == UNSET_VALUE || right.Type() == UNSET_VALUE {
		return left.Type() == right.Type(), nil
	}
	if left.Type() != right.Type() {
		return false, evalErrorf("incomparable types: %s and %s", TypeName(left.Type()), TypeName(right.Type()))
	}
	return left == right, nil
}

func badOperand(operator string, v Value) error {
	return evalErrorf("bad operand type %s for unary operator %s", TypeName(v.Type()), operator)
}

func evalErrorf(format string, args ...interface{}) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrE002, format, args...)
}

// ApplyOperator applies a binary arithmetic, comparison or equality operator
// to two evaluated operands. Compound assignment goes through here.
func ApplyOperator(operator string, left, right Value) (Value, error) {
	if operator == "&&" || operator == "||" {
		return nil, evalErrorf("operator %s needs unevaluated operands", operator)
	}
	return evalInfix(operator, left, right)
}
