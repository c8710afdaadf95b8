package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// BuiltinFunction is a library call such as Math.max.
type BuiltinFunction func(args ...Value) (Value, error)

// Builtins are the qualified library calls an expression may use.
var Builtins = map[string]BuiltinFunction{
	"Math.abs":           builtinAbs,
	"Math.max":           builtinMax,
	"Math.min":           builtinMin,
	"Math.pow":           builtinPow,
	"Math.sqrt":          builtinSqrt,
	"Math.floor":         builtinFloor,
	"Math.ceil":          builtinCeil,
	"Math.round":         builtinRound,
	"Integer.parseInt":   builtinParseInt,
	"Double.parseDouble": builtinParseDouble,
	"String.valueOf":     builtinValueOf,
}

func checkArity(name string, args []Value, n int) error {
	if len(args) != n {
		return evalErrorf("%s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func numericArgs(name string, args []Value, n int) error {
	if err := checkArity(name, args, n); err != nil {
		return err
	}
	for _, a := range args {
		if !isNumeric(a) {
			return evalErrorf("%s expects numeric arguments, got %s", name, TypeName(a.Type()))
		}
	}
	return nil
}

func builtinAbs(args ...Value) (Value, error) {
	if err := numericArgs("Math.abs", args, 1); err != nil {
		return nil, err
	}
	if i, ok := args[0].(Integer); ok {
		if i.Value < 0 {
			return Integer{Value: -i.Value}, nil
		}
		return i, nil
	}
	return Real{Value: math.Abs(toFloat(args[0]))}, nil
}

func builtinMax(args ...Value) (Value, error) {
	if err := numericArgs("Math.max", args, 2); err != nil {
		return nil, err
	}
	a, aok := args[0].(Integer)
	b, bok := args[1].(Integer)
	if aok && bok {
		if a.Value >= b.Value {
			return a, nil
		}
		return b, nil
	}
	return Real{Value: math.Max(toFloat(args[0]), toFloat(args[1]))}, nil
}

func builtinMin(args ...Value) (Value, error) {
	if err := numericArgs("Math.min", args, 2); err != nil {
		return nil, err
	}
	a, aok := args[0].(Integer)
	b, bok := args[1].(Integer)
	if aok && bok {
		if a.Value <= b.Value {
			return a, nil
		}
		return b, nil
	}
	return Real{Value: math.Min(toFloat(args[0]), toFloat(args[1]))}, nil
}

func builtinPow(args ...Value) (Value, error) {
	if err := numericArgs("Math.pow", args, 2); err != nil {
		return nil, err
	}
	return Real{Value: math.Pow(toFloat(args[0]), toFloat(args[1]))}, nil
}

func builtinSqrt(args ...Value) (Value, error) {
	if err := numericArgs("Math.sqrt", args, 1); err != nil {
		return nil, err
	}
	return Real{Value: math.Sqrt(toFloat(args[0]))}, nil
}

func builtinFloor(args ...Value) (Value, error) {
	if err := numericArgs("Math.floor", args, 1); err != nil {
		return nil, err
	}
	return Real{Value: math.Floor(toFloat(args[0]))}, nil
}

func builtinCeil(args ...Value) (Value, error) {
	if err := numericArgs("Math.ceil", args, 1); err != nil {
		return nil, err
	}
	return Real{Value: math.Ceil(toFloat(args[0]))}, nil
}

// builtinRound follows Java: half-up, result is a long.
func builtinRound(args ...Value) (Value, error) {
	if err := numericArgs("Math.round", args, 1); err != nil {
		return nil, err
	}
	return Coerce(Real{Value: math.Floor(toFloat(args[0]) + 0.5)}, INTEGER_VALUE)
}

func builtinParseInt(args ...Value) (Value, error) {
	if err := checkArity("Integer.parseInt", args, 1); err != nil {
		return nil, err
	}
	t, ok := args[0].(Text)
	if !ok {
		return nil, evalErrorf("Integer.parseInt expects a String, got %s", TypeName(args[0].Type()))
	}
	n, err := strconv.ParseInt(strings.TrimSpace(t.Value), 10, 64)
	if err != nil {
		return nil, evalErrorf("NumberFormatException: For input string: %q", t.Value)
	}
	return Integer{Value: n}, nil
}

func builtinParseDouble(args ...Value) (Value, error) {
	if err := checkArity("Double.parseDouble", args, 1); err != nil {
		return nil, err
	}
	t, ok := args[0].(Text)
	if !ok {
		return nil, evalErrorf("Double.parseDouble expects a String, got %s", TypeName(args[0].Type()))
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	if err != nil {
		return nil, evalErrorf("NumberFormatException: For input string: %q", t.Value)
	}
	return Real{Value: f}, nil
}

func builtinValueOf(args ...Value) (Value, error) {
	if err := checkArity("String.valueOf", args, 1); err != nil {
		return nil, err
	}
	return Coerce(args[0], TEXT_VALUE)
}
