package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/funvibe/javatrace/internal/config"
)

type ValueType string

const (
	INTEGER_VALUE ValueType = "INTEGER"
	REAL_VALUE    ValueType = "REAL"
	TEXT_VALUE    ValueType = "TEXT"
	BOOLEAN_VALUE ValueType = "BOOLEAN"
	UNSET_VALUE   ValueType = "UNSET"
)

// Value is an immutable runtime value. Implementations are plain structs, so
// copying a Value copies its contents.
type Value interface {
	Type() ValueType
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i Integer) Type() ValueType { return INTEGER_VALUE }
func (i Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Real struct {
	Value float64
}

func (r Real) Type() ValueType { return REAL_VALUE }
func (r Real) Inspect() string { return FormatReal(r.Value) }

type Text struct {
	Value string
}

func (t Text) Type() ValueType { return TEXT_VALUE }
func (t Text) Inspect() string { return t.Value }

type Boolean struct {
	Value bool
}

func (b Boolean) Type() ValueType { return BOOLEAN_VALUE }
func (b Boolean) Inspect() string { return strconv.FormatBool(b.Value) }

// Unset is the value of a variable declared without an initializer, and the
// result of a call that finished without return.
type Unset struct{}

func (Unset) Type() ValueType { return UNSET_VALUE }
func (Unset) Inspect() string { return "unset" }

var (
	TRUE  = Boolean{Value: true}
	FALSE = Boolean{Value: false}
	UNSET = Unset{}
)

func nativeBoolToBoolean(b bool) Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// TypeForKeyword maps a declared type keyword (int, double, String, ...) to
// the value type it fixes.
func TypeForKeyword(keyword string) (ValueType, bool) {
	switch keyword {
	case config.IntTypeName, config.LongTypeName, config.ShortTypeName, config.ByteTypeName:
		return INTEGER_VALUE, true
	case config.DoubleTypeName, config.FloatTypeName:
		return REAL_VALUE, true
	case config.StringTypeName, config.CharTypeName:
		return TEXT_VALUE, true
	case config.BooleanTypeName:
		return BOOLEAN_VALUE, true
	}
	return "", false
}

// DefaultValue is what an exhausted input read yields for a target type.
func DefaultValue(t ValueType) Value {
	switch t {
	case INTEGER_VALUE:
		return Integer{}
	case REAL_VALUE:
		return Real{}
	case TEXT_VALUE:
		return Text{}
	case BOOLEAN_VALUE:
		return FALSE
	}
	return UNSET
}

// Coerce converts v to target. Integer truncates toward zero from any
// numeric value, Real widens from numeric, Text stringifies anything and
// Boolean accepts only booleans.
func Coerce(v Value, target ValueType) (Value, error) {
	if v.Type() == target {
		return v, nil
	}
	if v.Type() == UNSET_VALUE {
		return nil, evalErrorf("cannot assign an unset value to a %s variable", TypeName(target))
	}
	switch target {
	case INTEGER_VALUE:
		switch val := v.(type) {
		case Real:
			if math.IsNaN(val.Value) {
				return Integer{Value: 0}, nil
			}
			if val.Value >= math.MaxInt64 {
				return Integer{Value: math.MaxInt64}, nil
			}
			if val.Value <= math.MinInt64 {
				return Integer{Value: math.MinInt64}, nil
			}
			return Integer{Value: int64(val.Value)}, nil
		case Text:
			n, err := strconv.ParseInt(strings.TrimSpace(val.Value), 10, 64)
			if err != nil {
				return nil, evalErrorf("incompatible types: %q cannot be converted to int", val.Value)
			}
			return Integer{Value: n}, nil
		}
	case REAL_VALUE:
		switch val := v.(type) {
		case Integer:
			return Real{Value: float64(val.Value)}, nil
		case Text:
			f, err := strconv.ParseFloat(strings.TrimSpace(val.Value), 64)
			if err != nil {
				return nil, evalErrorf("incompatible types: %q cannot be converted to double", val.Value)
			}
			return Real{Value: f}, nil
		}
	case TEXT_VALUE:
		return Text{Value: v.Inspect()}, nil
	}
	return nil, evalErrorf("incompatible types: %s cannot be converted to %s", TypeName(v.Type()), TypeName(target))
}

// FormatReal renders a float the way Java's Double.toString does: at least
// one fractional digit, scientific notation outside [1e-3, 1e7).
func FormatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(f)
	if abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(f, 'E', -1, 64) // e.g. 1.5E+07, 1E-05
	mantissa, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	sign := ""
	if strings.HasPrefix(exp, "-") {
		sign = "-"
	}
	exp = strings.TrimLeft(exp, "+-")
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "E" + sign + exp
}

// TypeName gives the Java keyword used to display t.
func TypeName(t ValueType) string {
	switch t {
	case INTEGER_VALUE:
		return config.IntTypeName
	case REAL_VALUE:
		return config.DoubleTypeName
	case TEXT_VALUE:
		return config.StringTypeName
	case BOOLEAN_VALUE:
		return config.BooleanTypeName
	}
	return "unset"
}

func isNumeric(v Value) bool {
	t := v.Type()
	return t == INTEGER_VALUE || t == REAL_VALUE
}

func toFloat(v Value) float64 {
	switch val := v.(type) {
	case Integer:
		return float64(val.Value)
	case Real:
		return val.Value
	}
	return 0
}
