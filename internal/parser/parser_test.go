package parser_test

import (
	"strings"
	"testing"

	"github.com/funvibe/javatrace/internal/ast"
	"github.com/funvibe/javatrace/internal/parser"
)

func TestParser(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"precedence", "1 + 2 * 3", "(1 + (2 * 3))"},
		{"left_assoc", "a - b - c", "((a - b) - c)"},
		{"grouped", "(1 + 2) * 3", "((1 + 2) * 3)"},
		{"prefix", "-a + b", "((-a) + b)"},
		{"not", "!done && x > 0", "((!done) && (x > 0))"},
		{"logical", "a || b && c", "(a || (b && c))"},
		{"comparison", "a + 1 <= b * 2", "((a + 1) <= (b * 2))"},
		{"equality", "x % 2 == 0", "((x % 2) == 0)"},
		{"call", "Math.max(a, b + 1)", "Math.max(a, (b + 1))"},
		{"empty_call", "f()", "f()"},
		{"nested_call", "f(g(1), 2)", "f(g(1), 2)"},
		{"scanner_read", "sc.nextInt() * 2", "(sc.nextInt() * 2)"},
		{"string", `"n=" + n`, `("n=" + n)`},
		{"literals", "true != false", "(true != false)"},
		{"real", "2.5 / x", "(2.5 / x)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			exp, err := parser.Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.input, err)
			}
			if got := exp.String(); got != tc.want {
				t.Errorf("Parse(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestCallShape(t *testing.T) {
	exp, err := parser.Parse("add(1, x)")
	if err != nil {
		t.Fatal(err)
	}
	call, ok := exp.(*ast.CallExpression)
	if !ok {
		t.Fatalf("got %T, want *ast.CallExpression", exp)
	}
	if call.Function.Value != "add" || len(call.Arguments) != 2 {
		t.Errorf("call = %s with %d args", call.Function.Value, len(call.Arguments))
	}
	if lit, ok := call.Arguments[0].(*ast.IntegerLiteral); !ok || lit.Value != 1 {
		t.Errorf("first argument = %#v", call.Arguments[0])
	}
}

func TestParserErrors(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"", "expected an expression"},
		{"1 +", "unexpected end of expression"},
		{"(1", "unexpected end of expression"},
		{"1 2", `unexpected "2" at column 3`},
		{"a = 1", "illegal character at column 3"},
		{`"open`, "unterminated string literal"},
		{"(1)(2)", "1 is not callable"},
		{"f(1,)", `unexpected ")"`},
		{"a.", "unexpected end of expression"},
	}
	for _, tc := range testCases {
		_, err := parser.Parse(tc.input)
		if err == nil {
			t.Errorf("Parse(%q): expected error", tc.input)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("Parse(%q) error = %q, want it to contain %q", tc.input, err, tc.want)
		}
	}
}

func TestRecursionLimit(t *testing.T) {
	input := strings.Repeat("(", parser.MaxRecursionDepth+10) + "1" + strings.Repeat(")", parser.MaxRecursionDepth+10)
	_, err := parser.Parse(input)
	if err == nil || !strings.Contains(err.Error(), "too complex") {
		t.Fatalf("got %v, want depth limit error", err)
	}
}
