// Package diagnostics defines the errors a run can abort with. Every error
// carries a stable code whose first letter names its kind.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode string

const (
	ErrS001 ErrorCode = "S001" // function body never closes
	ErrS002 ErrorCode = "S002" // two functions share a name
	ErrS003 ErrorCode = "S003" // conditional has no body line
	ErrS004 ErrorCode = "S004" // malformed parameter list
	ErrC001 ErrorCode = "C001" // line matches no statement shape
	ErrU001 ErrorCode = "U001" // undeclared variable
	ErrU002 ErrorCode = "U002" // unknown function
	ErrE001 ErrorCode = "E001" // expression does not parse
	ErrE002 ErrorCode = "E002" // expression does not evaluate
	ErrE003 ErrorCode = "E003" // malformed input value
	ErrR001 ErrorCode = "R001" // call depth exceeded
	ErrR002 ErrorCode = "R002" // step limit exceeded
)

// Kind groups codes into the five failure classes a UI distinguishes.
type Kind int

const (
	KindStructural Kind = iota
	KindUnrecognized
	KindUndefined
	KindEvaluation
	KindRecursion
)

// Sentinels for errors.Is.
var (
	StructuralError       = errors.New("structural error")
	UnrecognizedStatement = errors.New("unrecognized statement")
	UndefinedSymbol       = errors.New("undefined symbol")
	EvaluationError       = errors.New("evaluation error")
	RecursionLimitError   = errors.New("recursion limit exceeded")
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "StructuralError"
	case KindUnrecognized:
		return "UnrecognizedStatement"
	case KindUndefined:
		return "UndefinedSymbol"
	case KindEvaluation:
		return "EvaluationError"
	case KindRecursion:
		return "RecursionLimitError"
	}
	return "UnknownError"
}

func (k Kind) sentinel() error {
	switch k {
	case KindStructural:
		return StructuralError
	case KindUnrecognized:
		return UnrecognizedStatement
	case KindUndefined:
		return UndefinedSymbol
	case KindEvaluation:
		return EvaluationError
	case KindRecursion:
		return RecursionLimitError
	}
	return nil
}

// Kind reports the failure class of the code.
func (c ErrorCode) Kind() Kind {
	switch {
	case strings.HasPrefix(string(c), "S"):
		return KindStructural
	case strings.HasPrefix(string(c), "C"):
		return KindUnrecognized
	case strings.HasPrefix(string(c), "U"):
		return KindUndefined
	case strings.HasPrefix(string(c), "R"):
		return KindRecursion
	}
	return KindEvaluation
}

// DiagnosticError is the single error type a run fails with.
type DiagnosticError struct {
	Code      ErrorCode
	Message   string
	Line      int    // 1-based source line, 0 when unknown
	Text      string // trimmed source line
	CallStack []string
}

// NewError creates an error that is not yet attached to a line.
func NewError(code ErrorCode, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *DiagnosticError) Kind() Kind { return e.Code.Kind() }

func (e *DiagnosticError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind().String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d", e.Line)
		if e.Text != "" {
			fmt.Fprintf(&b, ": %s", e.Text)
		}
		b.WriteString(")")
	}
	if len(e.CallStack) > 0 {
		fmt.Fprintf(&b, " [in %s]", formatCallStack(e.CallStack))
	}
	return b.String()
}

// maxShownFrames caps the frames an error message lists after collapsing.
const maxShownFrames = 8

// formatCallStack joins frames outermost first. Consecutive calls of one
// function print once with a count, and the middle of a stack that is still
// too long is elided.
func formatCallStack(stack []string) string {
	var parts []string
	for i := 0; i < len(stack); {
		j := i + 1
		for j < len(stack) && stack[j] == stack[i] {
			j++
		}
		if n := j - i; n > 1 {
			parts = append(parts, fmt.Sprintf("%s ×%d", stack[i], n))
		} else {
			parts = append(parts, stack[i])
		}
		i = j
	}
	if len(parts) > maxShownFrames {
		half := maxShownFrames / 2
		hidden := len(parts) - 2*half
		shown := make([]string, 0, 2*half+1)
		shown = append(shown, parts[:half]...)
		shown = append(shown, fmt.Sprintf("... %d more", hidden))
		shown = append(shown, parts[len(parts)-half:]...)
		parts = shown
	}
	return strings.Join(parts, " > ")
}

// Is matches the per-kind sentinels.
func (e *DiagnosticError) Is(target error) bool {
	return target == e.Kind().sentinel()
}

// At attaches a source location unless one is already set. The innermost
// location wins, so an error raised inside a function body keeps pointing at
// the body line rather than the call site.
func (e *DiagnosticError) At(line int, text string, callStack []string) *DiagnosticError {
	if e.Line != 0 {
		return e
	}
	e.Line = line
	e.Text = text
	if len(callStack) > 0 {
		e.CallStack = append([]string(nil), callStack...)
	}
	return e
}

// As returns err as a *DiagnosticError when it is one.
func As(err error) (*DiagnosticError, bool) {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
