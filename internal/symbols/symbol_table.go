// Package symbols builds the function table: the one pre-pass over a
// program that finds every function definition before any statement runs.
package symbols

import (
	"sort"

	"github.com/funvibe/javatrace/internal/source"
)

// FunctionDef is a user function captured from source. It is immutable once
// the table is built.
type FunctionDef struct {
	Name       string
	ReturnType string
	Params     []string // declared names in order, types discarded
	Header     source.Line
	Body       []source.Line // lines strictly between header and closing brace
}

// Arity is the number of declared parameters.
func (f *FunctionDef) Arity() int { return len(f.Params) }

// Table holds every function of one program.
type Table struct {
	funcs map[string]*FunctionDef
	// owned marks indices into the line slice that belong to a definition
	// (header, body and closing line) and are not top-level statements.
	owned map[int]bool
}

func NewTable() *Table {
	return &Table{
		funcs: make(map[string]*FunctionDef),
		owned: make(map[int]bool),
	}
}

func (t *Table) Lookup(name string) (*FunctionDef, bool) {
	f, ok := t.funcs[name]
	return f, ok
}

// Names returns the defined function names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Table) Len() int { return len(t.funcs) }

// IsDefinitionLine reports whether the line at index i is part of a function
// definition.
func (t *Table) IsDefinitionLine(i int) bool { return t.owned[i] }
