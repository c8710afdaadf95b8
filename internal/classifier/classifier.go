// Package classifier maps a single source line to the kind of statement it
// holds. Matching is by shape, tried in a fixed order, and never evaluates
// anything.
package classifier

import (
	"regexp"
	"strings"

	"github.com/funvibe/javatrace/internal/config"
	"github.com/funvibe/javatrace/internal/diagnostics"
	"github.com/funvibe/javatrace/internal/source"
)

type Kind int

// Kinds in the order Classify tries them.
const (
	Ignorable Kind = iota
	Declaration
	Assignment
	Print
	Conditional
	InputRead
	Return
	Call
	Unrecognized
)

func (k Kind) String() string {
	switch k {
	case Ignorable:
		return "Ignorable"
	case Declaration:
		return "Declaration"
	case Assignment:
		return "Assignment"
	case Print:
		return "Print"
	case Conditional:
		return "Conditional"
	case InputRead:
		return "InputRead"
	case Return:
		return "Return"
	case Call:
		return "Call"
	}
	return "Unrecognized"
}

// Statement is a classified line with the text fragments later stages need.
type Statement struct {
	Kind Kind
	Text string

	// Declaration, InputRead: declared type keyword ("" for a read into an
	// existing variable).
	Type string
	// Declaration, Assignment, InputRead: target variable.
	Name string
	// Assignment: "=", "+=", "-=", "*=", "/=", "%=", "++" or "--".
	Operator string
	// Declaration initializer, assignment right-hand side, printed
	// expression, condition, return value or full call expression. Empty
	// when the statement has none.
	Expr string
	// Print: println rather than print.
	Newline bool
	// Conditional: the statement after the condition on the same line;
	// empty means the next line is the body.
	Body string
	// InputRead: scanner variable and read method.
	Scanner string
	Method  string
}

const identPattern = `[A-Za-z_$][\w$]*`

var (
	typePattern = `(` + strings.Join(config.DeclaredTypeNames, "|") + `)`
	readPattern = `(` + strings.Join(config.ReadMethodNames, "|") + `)`

	classHeaderRe   = regexp.MustCompile(`^(?:(?:public|private|protected|final|abstract|static)\s+)*class\s+` + identPattern + `.*$`)
	mainHeaderRe    = regexp.MustCompile(`^(?:(?:public|private|protected|final|static)\s+)*void\s+` + config.EntryPointName + `\s*\(.*\)\s*(?:throws\s+[\w.,\s]+)?\{?$`)
	scannerNewRe    = regexp.MustCompile(`^(?:java\.util\.)?Scanner\s+` + identPattern + `\s*=\s*new\s+(?:java\.util\.)?Scanner\s*\(\s*System\.in\s*\)\s*;$`)
	closeRe         = regexp.MustCompile(`^` + identPattern + `\.close\s*\(\s*\)\s*;$`)
	declarationRe   = regexp.MustCompile(`^(?:final\s+)?` + typePattern + `\s+(` + identPattern + `)\s*(?:=\s*(.+?))?\s*;$`)
	assignmentRe    = regexp.MustCompile(`^(` + identPattern + `)\s*(=|\+=|-=|\*=|/=|%=)\s*(.+?)\s*;$`)
	postIncrementRe = regexp.MustCompile(`^(` + identPattern + `)\s*(\+\+|--)\s*;$`)
	preIncrementRe  = regexp.MustCompile(`^(\+\+|--)\s*(` + identPattern + `)\s*;$`)
	printRe         = regexp.MustCompile(`^System\.out\.(println|print)\s*\((.*)\)\s*;$`)
	conditionalRe   = regexp.MustCompile(`^if\s*\(`)
	inputReadRe     = regexp.MustCompile(`^(?:(?:final\s+)?` + typePattern + `\s+)?(` + identPattern + `)\s*=\s*(` + identPattern + `)\.` + readPattern + `\s*\(\s*\)\s*;$`)
	scannerReadRe   = regexp.MustCompile(`^` + identPattern + `\.` + readPattern + `\s*\(\s*\)$`)
	returnRe        = regexp.MustCompile(`^return(?:\s*;|\s+(.+?)\s*;|\s*(\(.*\))\s*;)$`)
	callRe          = regexp.MustCompile(`^(` + identPattern + `)\s*\(.*\)\s*;$`)
)

// reserved words that look like calls but are statements this language
// does not have.
var reserved = map[string]bool{
	"if": true, "else": true, "while": true, "for": true, "do": true,
	"switch": true, "case": true, "try": true, "catch": true, "finally": true,
	"new": true, "return": true, "throw": true, "break": true, "continue": true,
}

type matcher func(text string) (Statement, bool)

// matchers is the precedence order between overlapping shapes.
var matchers = []matcher{
	matchIgnorable,
	matchDeclaration,
	matchAssignment,
	matchPrint,
	matchConditional,
	matchInputRead,
	matchReturn,
	matchCall,
}

// Classify tags a trimmed, non-empty line. A trailing // comment is ignored.
// A line that fits no shape yields an UnrecognizedStatement error.
func Classify(text string) (Statement, error) {
	code := source.StripComment(text)
	if code == "" {
		return Statement{Kind: Ignorable, Text: text}, nil
	}
	for _, m := range matchers {
		if st, ok := m(code); ok {
			st.Text = text
			return st, nil
		}
	}
	return Statement{Kind: Unrecognized, Text: text}, unrecognized(code)
}

func unrecognized(text string) error {
	if strings.HasPrefix(text, "if") && conditionalRe.MatchString(text) {
		return diagnostics.NewError(diagnostics.ErrC001, "unsupported conditional form %q: only a single statement may follow the condition", text)
	}
	return diagnostics.NewError(diagnostics.ErrC001, "unsupported statement %q", text)
}

func matchIgnorable(text string) (Statement, bool) {
	switch {
	case text == "{", text == "}", text == "};",
		strings.HasPrefix(text, "//"),
		strings.HasPrefix(text, "/*"),
		strings.HasPrefix(text, "*"),
		strings.HasPrefix(text, "import ") && strings.HasSuffix(text, ";"),
		strings.HasPrefix(text, "package ") && strings.HasSuffix(text, ";"),
		classHeaderRe.MatchString(text),
		mainHeaderRe.MatchString(text),
		scannerNewRe.MatchString(text),
		closeRe.MatchString(text):
		return Statement{Kind: Ignorable}, true
	}
	return Statement{}, false
}

func matchDeclaration(text string) (Statement, bool) {
	m := declarationRe.FindStringSubmatch(text)
	if m == nil || scannerReadRe.MatchString(m[3]) {
		return Statement{}, false
	}
	return Statement{Kind: Declaration, Type: m[1], Name: m[2], Expr: m[3]}, true
}

func matchAssignment(text string) (Statement, bool) {
	if m := assignmentRe.FindStringSubmatch(text); m != nil {
		// "x == y;" is a comparison, not an assignment of "= y".
		if m[2] == "=" && strings.HasPrefix(m[3], "=") {
			return Statement{}, false
		}
		if m[2] == "=" && scannerReadRe.MatchString(m[3]) {
			return Statement{}, false
		}
		return Statement{Kind: Assignment, Name: m[1], Operator: m[2], Expr: m[3]}, true
	}
	if m := postIncrementRe.FindStringSubmatch(text); m != nil {
		return Statement{Kind: Assignment, Name: m[1], Operator: m[2]}, true
	}
	if m := preIncrementRe.FindStringSubmatch(text); m != nil {
		return Statement{Kind: Assignment, Name: m[2], Operator: m[1]}, true
	}
	return Statement{}, false
}

func matchPrint(text string) (Statement, bool) {
	m := printRe.FindStringSubmatch(text)
	if m == nil {
		return Statement{}, false
	}
	return Statement{Kind: Print, Newline: m[1] == "println", Expr: strings.TrimSpace(m[2])}, true
}

func matchConditional(text string) (Statement, bool) {
	loc := conditionalRe.FindStringIndex(text)
	if loc == nil {
		return Statement{}, false
	}
	open := loc[1] - 1
	closing := matchingParen(text, open)
	if closing < 0 {
		return Statement{}, false
	}
	cond := strings.TrimSpace(text[open+1 : closing])
	body := strings.TrimSpace(text[closing+1:])
	if cond == "" || strings.HasPrefix(body, "{") {
		return Statement{}, false
	}
	return Statement{Kind: Conditional, Expr: cond, Body: body}, true
}

func matchInputRead(text string) (Statement, bool) {
	m := inputReadRe.FindStringSubmatch(text)
	if m == nil {
		return Statement{}, false
	}
	return Statement{Kind: InputRead, Type: m[1], Name: m[2], Scanner: m[3], Method: m[4]}, true
}

func matchReturn(text string) (Statement, bool) {
	m := returnRe.FindStringSubmatch(text)
	if m == nil {
		return Statement{}, false
	}
	expr := m[1]
	if expr == "" {
		expr = m[2]
	}
	return Statement{Kind: Return, Expr: expr}, true
}

func matchCall(text string) (Statement, bool) {
	m := callRe.FindStringSubmatch(text)
	if m == nil || reserved[m[1]] {
		return Statement{}, false
	}
	expr := strings.TrimSpace(strings.TrimSuffix(text, ";"))
	return Statement{Kind: Call, Name: m[1], Expr: expr}, true
}

// matchingParen returns the index of the ')' closing the '(' at open,
// skipping string and char literals, or -1.
func matchingParen(text string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
