package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/javatrace/internal/token"
)

// Lexer tokenizes a single expression. Statement shapes are recognised by the
// classifier; the lexer only ever sees the expression text they capture.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '+':
		tok = newToken(token.PLUS, l.ch, l.column)
	case '-':
		tok = newToken(token.MINUS, l.ch, l.column)
	case '*':
		tok = newToken(token.ASTERISK, l.ch, l.column)
	case '/':
		tok = newToken(token.SLASH, l.ch, l.column)
	case '%':
		tok = newToken(token.PERCENT, l.ch, l.column)
	case ',':
		tok = newToken(token.COMMA, l.ch, l.column)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.column)
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber()
		}
		tok = newToken(token.DOT, l.ch, l.column)
	case '!':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(token.NOT_EQ)
		} else {
			tok = newToken(token.BANG, l.ch, l.column)
		}
	case '=':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(token.EQ)
		} else {
			// Assignment never reaches the expression lexer.
			tok = newToken(token.ILLEGAL, l.ch, l.column)
		}
	case '<':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(token.LTE)
		} else {
			tok = newToken(token.LT, l.ch, l.column)
		}
	case '>':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(token.GTE)
		} else {
			tok = newToken(token.GT, l.ch, l.column)
		}
	case '&':
		if l.peekChar() == '&' {
			tok = l.twoCharToken(token.AND)
		} else {
			tok = newToken(token.ILLEGAL, l.ch, l.column)
		}
	case '|':
		if l.peekChar() == '|' {
			tok = l.twoCharToken(token.OR)
		} else {
			tok = newToken(token.ILLEGAL, l.ch, l.column)
		}
	case '"':
		col := l.column
		s, ok := l.readString()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Lexeme: `"` + s, Literal: "unterminated string literal", Column: col}
		}
		tok = token.Token{Type: token.STRING, Lexeme: strconv.Quote(s), Literal: s, Column: col}
	case '\'':
		col := l.column
		s, ok := l.readCharLiteral()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Lexeme: "'" + s, Literal: "malformed char literal", Column: col}
		}
		tok = token.Token{Type: token.CHAR, Lexeme: "'" + s + "'", Literal: s, Column: col}
	case 0:
		tok = token.Token{Type: token.EOF, Lexeme: "", Literal: "", Column: l.column}
	default:
		if isLetter(l.ch) {
			col := l.column
			ident := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(ident), Lexeme: ident, Literal: ident, Column: col}
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = newToken(token.ILLEGAL, l.ch, l.column)
	}

	l.readChar()
	return tok
}

// Tokenize returns every token of input up to and including EOF.
func Tokenize(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) twoCharToken(t token.TokenType) token.Token {
	col := l.column
	first := l.ch
	l.readChar()
	literal := string(first) + string(l.ch)
	return token.Token{Type: t, Lexeme: literal, Literal: literal, Column: col}
}

// readString consumes a double-quoted literal, leaving l.ch on the closing
// quote. It reports false when the input ends first.
func (l *Lexer) readString() (string, bool) {
	var out strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return out.String(), false
		case '"':
			return out.String(), true
		case '\\':
			l.readChar()
			r, ok := unescape(l.ch)
			if !ok {
				return out.String(), false
			}
			out.WriteRune(r)
		default:
			out.WriteRune(l.ch)
		}
	}
}

func (l *Lexer) readCharLiteral() (string, bool) {
	l.readChar()
	r := l.ch
	if r == 0 || r == '\'' {
		return "", false
	}
	if r == '\\' {
		l.readChar()
		var ok bool
		if r, ok = unescape(l.ch); !ok {
			return "", false
		}
	}
	l.readChar()
	if l.ch != '\'' {
		return string(r), false
	}
	return string(r), true
}

func unescape(ch rune) (rune, bool) {
	switch ch {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case '0':
		return 0, true
	case '\\', '"', '\'':
		return ch, true
	}
	return 0, false
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads Java numeric literals: 42, 42L, 3.14, .5, 1e9, 2.5f, 7d.
func (l *Lexer) readNumber() token.Token {
	col := l.column
	position := l.position
	isFloat := false

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			isFloat = true
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	literalText := l.input[position:l.position]

	switch l.ch {
	case 'L', 'l':
		l.readChar()
	case 'f', 'F', 'd', 'D':
		isFloat = true
		l.readChar()
	}
	lexeme := l.input[position:l.position]

	if isLetter(l.ch) {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "malformed number", Column: col}
	}

	if isFloat {
		val, err := strconv.ParseFloat(literalText, 64)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: err.Error(), Column: col}
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: val, Column: col}
	}
	val, err := strconv.ParseInt(literalText, 10, 64)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "integer number too large", Column: col}
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: val, Column: col}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func newToken(tokenType token.TokenType, ch rune, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}
