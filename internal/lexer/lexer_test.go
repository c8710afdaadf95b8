package lexer_test

import (
	"testing"

	"github.com/funvibe/javatrace/internal/lexer"
	"github.com/funvibe/javatrace/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `a + 1.5 * (b - 2L) >= 3 && !c || d != "x\"y" % 'z'`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.FLOAT, "1.5"},
		{token.ASTERISK, "*"},
		{token.LPAREN, "("},
		{token.IDENT, "b"},
		{token.MINUS, "-"},
		{token.INT, "2L"},
		{token.RPAREN, ")"},
		{token.GTE, ">="},
		{token.INT, "3"},
		{token.AND, "&&"},
		{token.BANG, "!"},
		{token.IDENT, "c"},
		{token.OR, "||"},
		{token.IDENT, "d"},
		{token.NOT_EQ, "!="},
		{token.STRING, `"x\"y"`},
		{token.PERCENT, "%"},
		{token.CHAR, "'z'"},
		{token.EOF, ""},
	}

	l := lexer.New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input string
		typ   token.TokenType
		value interface{}
	}{
		{"42", token.INT, int64(42)},
		{"42L", token.INT, int64(42)},
		{"3.25", token.FLOAT, 3.25},
		{".5", token.FLOAT, 0.5},
		{"1e3", token.FLOAT, 1000.0},
		{"2.5f", token.FLOAT, 2.5},
		{"7d", token.FLOAT, 7.0},
	}
	for _, tt := range tests {
		toks := lexer.Tokenize(tt.input)
		if len(toks) != 2 {
			t.Fatalf("%q: got %d tokens, want number and EOF", tt.input, len(toks))
		}
		if toks[0].Type != tt.typ || toks[0].Literal != tt.value {
			t.Errorf("%q: got %s %v, want %s %v", tt.input, toks[0].Type, toks[0].Literal, tt.typ, tt.value)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	toks := lexer.Tokenize(`"tab\there\n" '\''`)
	if got := toks[0].Literal; got != "tab\there\n" {
		t.Errorf("string literal = %q", got)
	}
	if toks[1].Type != token.CHAR || toks[1].Literal != "'" {
		t.Errorf("char literal = %s %q", toks[1].Type, toks[1].Literal)
	}
}

func TestKeywords(t *testing.T) {
	toks := lexer.Tokenize("true false null truthy")
	want := []token.TokenType{token.TRUE, token.FALSE, token.NULL, token.IDENT, token.EOF}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, typ)
		}
	}
}

func TestIllegal(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{`"open`, "unterminated string literal"},
		{`'ab'`, "malformed char literal"},
		{"12abc", "malformed number"},
		{"99999999999999999999", "integer number too large"},
		{"=", "="},
		{"&", "&"},
		{"#", "#"},
	}
	for _, tt := range tests {
		tok := lexer.New(tt.input).NextToken()
		if tok.Type != token.ILLEGAL {
			t.Errorf("%q: got %s, want ILLEGAL", tt.input, tok.Type)
			continue
		}
		if tok.Literal != tt.msg {
			t.Errorf("%q: literal = %v, want %q", tt.input, tok.Literal, tt.msg)
		}
	}
}

func TestColumns(t *testing.T) {
	toks := lexer.Tokenize("x  <= 10")
	cols := []int{1, 4, 7}
	for i, c := range cols {
		if toks[i].Column != c {
			t.Errorf("token %d (%q): column %d, want %d", i, toks[i].Lexeme, toks[i].Column, c)
		}
	}
}
