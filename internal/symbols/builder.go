package symbols

import (
	"regexp"
	"strings"

	"github.com/funvibe/javatrace/internal/config"
	"github.com/funvibe/javatrace/internal/diagnostics"
	"github.com/funvibe/javatrace/internal/source"
)

var (
	headerRe = regexp.MustCompile(`^(?:(?:public|private|protected|static|final)\s+)*([A-Za-z_$][\w$]*)\s+([A-Za-z_$][\w$]*)\s*\(([^)]*)\)\s*(?:throws\s+[\w.,\s]+)?\{$`)
	paramRe  = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
)

// words that can open a header-shaped line without being a return type or
// a function name
var notNames = map[string]bool{
	"if": true, "else": true, "while": true, "for": true, "do": true,
	"switch": true, "try": true, "catch": true, "new": true, "return": true,
	"class": true, "synchronized": true,
}

// IsHeader reports whether text has the shape of a function header. The
// program entry point is not a function header.
func IsHeader(text string) bool {
	_, _, _, ok := matchHeader(text)
	return ok
}

func matchHeader(text string) (returnType, name, params string, ok bool) {
	m := headerRe.FindStringSubmatch(source.StripComment(text))
	if m == nil || notNames[m[1]] || notNames[m[2]] || m[2] == config.EntryPointName {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

// Build scans lines once and captures every function definition. Bodies are
// delimited by counting braces from the header's opening brace.
func Build(lines []source.Line) (*Table, error) {
	table := NewTable()

	for i := 0; i < len(lines); i++ {
		header := lines[i]
		returnType, name, paramText, ok := matchHeader(header.Text)
		if !ok {
			continue
		}

		params, err := parseParams(paramText)
		if err != nil {
			return nil, err.At(header.Number, header.Text, nil)
		}
		if prev, dup := table.funcs[name]; dup {
			return nil, diagnostics.NewError(diagnostics.ErrS002,
				"function %s is already defined at line %d", name, prev.Header.Number).
				At(header.Number, header.Text, nil)
		}

		def := &FunctionDef{Name: name, ReturnType: returnType, Params: params, Header: header}
		table.owned[i] = true

		depth := 1
		closed := false
		for i+1 < len(lines) {
			i++
			table.owned[i] = true
			depth += braceDelta(lines[i].Text)
			if depth <= 0 {
				closed = true
				break
			}
			def.Body = append(def.Body, lines[i])
		}
		if !closed {
			return nil, diagnostics.NewError(diagnostics.ErrS001,
				"function %s has no closing brace", name).
				At(header.Number, header.Text, nil)
		}
		table.funcs[name] = def
	}

	return table, nil
}

func parseParams(text string) ([]string, *diagnostics.DiagnosticError) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var params []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(text, ",") {
		fields := strings.Fields(p)
		if len(fields) < 2 {
			return nil, diagnostics.NewError(diagnostics.ErrS004, "malformed parameter %q", strings.TrimSpace(p))
		}
		name := fields[len(fields)-1]
		if !paramRe.MatchString(name) {
			return nil, diagnostics.NewError(diagnostics.ErrS004, "malformed parameter %q", strings.TrimSpace(p))
		}
		if seen[name] {
			return nil, diagnostics.NewError(diagnostics.ErrS004, "parameter %s is declared twice", name)
		}
		seen[name] = true
		params = append(params, name)
	}
	return params, nil
}

// braceDelta counts '{' minus '}' outside string and char literals and
// line comments.
func braceDelta(text string) int {
	text = source.StripComment(text)
	delta := 0
	var quote byte
	for i := 0; i < len(text); i++ {
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
		case '{':
			delta++
		case '}':
			delta--
		}
	}
	return delta
}
