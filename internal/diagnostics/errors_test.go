package diagnostics

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := NewError(ErrE002, "/ by zero").At(4, "int b = a / 0;", []string{"outer", "inner"})
	want := "EvaluationError: / by zero (line 4: int b = a / 0;) [in outer > inner]"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, EvaluationError) || errors.Is(err, StructuralError) {
		t.Errorf("errors.Is does not follow the kind of %s", err.Code)
	}
}

func TestAtKeepsInnermostLocation(t *testing.T) {
	err := NewError(ErrU001, "variable x is not declared").At(7, "y = x;", []string{"f"})
	err.At(2, "int r = f();", nil)
	if err.Line != 7 || err.Text != "y = x;" {
		t.Errorf("location = %d %q, want 7 %q", err.Line, err.Text, "y = x;")
	}
}

func TestFormatCallStack(t *testing.T) {
	deep := make([]string, 256)
	for i := range deep {
		deep[i] = "f"
	}
	mutual := []string{}
	for i := 0; i < 10; i++ {
		mutual = append(mutual, "even", "odd")
	}

	tests := []struct {
		name  string
		stack []string
		want  string
	}{
		{"single", []string{"f"}, "f"},
		{"distinct", []string{"main", "f", "g"}, "main > f > g"},
		{"repeated", deep, "f ×256"},
		{"repeated inside", []string{"run", "f", "f", "f", "g"}, "run > f ×3 > g"},
		{"elided", mutual, "even > odd > even > odd > ... 12 more > even > odd > even > odd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCallStack(tt.stack); got != tt.want {
				t.Errorf("formatCallStack = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecursionErrorMessageIsShort(t *testing.T) {
	stack := make([]string, 256)
	for i := range stack {
		stack[i] = "down"
	}
	err := NewError(ErrR001, "call depth exceeded 256 while calling down").At(2, "return down(n - 1);", stack)
	msg := err.Error()
	if strings.Count(msg, "down") != 3 || !strings.HasSuffix(msg, "[in down ×256]") {
		t.Errorf("message = %q", msg)
	}
	if len(err.CallStack) != 256 {
		t.Errorf("CallStack has %d frames, want all 256 kept", len(err.CallStack))
	}
}
