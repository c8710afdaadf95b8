package evaluator

import "github.com/funvibe/javatrace/internal/diagnostics"

// Variable is a declared name: its type is fixed at declaration and every
// later assignment is coerced to it.
type Variable struct {
	Type  ValueType
	Value Value
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]*Variable)}
}

// NewEnclosedEnvironment layers a fresh scope over outer. Reads fall through
// to outer; writes go to whichever scope declared the name.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Environment is owned by a single run and never shared between goroutines.
type Environment struct {
	store map[string]*Variable
	outer *Environment
}

func (e *Environment) Get(name string) (Variable, bool) {
	for env := e; env != nil; env = env.outer {
		if v, ok := env.store[name]; ok {
			return *v, true
		}
	}
	return Variable{}, false
}

// Declare adds name to this scope. A name may shadow an outer declaration
// but not one in the same scope.
func (e *Environment) Declare(name string, t ValueType, val Value) error {
	if _, exists := e.store[name]; exists {
		return diagnostics.NewError(diagnostics.ErrE002, "variable %s is already defined", name)
	}
	if val.Type() != UNSET_VALUE {
		coerced, err := Coerce(val, t)
		if err != nil {
			return err
		}
		val = coerced
	}
	e.store[name] = &Variable{Type: t, Value: val}
	return nil
}

// Assign coerces val to the declared type of name and stores it in the scope
// that declared it.
func (e *Environment) Assign(name string, val Value) error {
	for env := e; env != nil; env = env.outer {
		if v, ok := env.store[name]; ok {
			coerced, err := Coerce(val, v.Type)
			if err != nil {
				return err
			}
			v.Value = coerced
			return nil
		}
	}
	return diagnostics.NewError(diagnostics.ErrU001, "variable %s is not declared", name)
}

// Snapshot returns the merged view of every visible variable, inner scopes
// shadowing outer ones. The map is a fresh copy.
func (e *Environment) Snapshot() map[string]Value {
	var chain []*Environment
	for env := e; env != nil; env = env.outer {
		chain = append(chain, env)
	}
	out := make(map[string]Value)
	for i := len(chain) - 1; i >= 0; i-- {
		for name, v := range chain[i].store {
			out[name] = v.Value
		}
	}
	return out
}

// Outer returns the enclosing scope, or nil for the global scope.
func (e *Environment) Outer() *Environment {
	return e.outer
}
