package stepper

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/funvibe/javatrace/internal/config"
	"github.com/funvibe/javatrace/internal/interpreter"
)

const program = `int a = 1;
int b = a + 1;
System.out.println("b=" + b);`

func newSession(t *testing.T, src, commands string) (*Session, *bytes.Buffer) {
	t.Helper()
	s := New(interpreter.New(interpreter.Options{}), "Main.java", src, nil)
	var out bytes.Buffer
	s.SetInput(strings.NewReader(commands))
	s.SetOutput(&out)
	s.Prompt = ""
	return s, &out
}

func TestSessionNavigation(t *testing.T) {
	s, out := newSession(t, program, "next\nnext\nnext\nback\nvars\nout\nquit\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	text := out.String()

	for _, want := range []string{
		"3 steps recorded.",
		"step 1/3  line 1: int a = 1;",
		"step 3/3  line 3: System.out.println(\"b=\" + b);",
		"already at the last step",
		"int a = 1\nint b = 2\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("session output missing %q:\n%s", want, text)
		}
	}
	if s.Cursor().Index() != 1 {
		t.Errorf("cursor index = %d, want 1", s.Cursor().Index())
	}
}

func TestSessionEmptyLineIsNext(t *testing.T) {
	s, _ := newSession(t, program, "\n\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !s.Cursor().AtEnd() {
		t.Errorf("cursor index = %d, want the last step", s.Cursor().Index())
	}
}

func TestSessionResetAndRun(t *testing.T) {
	s, out := newSession(t, program, "last\nreset\nnext\nrun\ngoto 2\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "steps cleared") || !strings.Contains(text, "no steps recorded") {
		t.Errorf("reset was not reported:\n%s", text)
	}
	if s.Cursor().Len() != 3 || s.Cursor().Index() != 1 {
		t.Errorf("after run and goto: len %d index %d", s.Cursor().Len(), s.Cursor().Index())
	}
}

func TestSessionError(t *testing.T) {
	s, out := newSession(t, "int a = 1;\nint b = c;", "next\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Err() == nil {
		t.Fatal("expected the run error to be kept")
	}
	if s.Cursor().Len() != 0 {
		t.Errorf("failed run kept %d steps", s.Cursor().Len())
	}
	if !strings.Contains(out.String(), "error: UndefinedSymbol") {
		t.Errorf("error not shown:\n%s", out.String())
	}
}

func TestSessionList(t *testing.T) {
	s, out := newSession(t, program, "next\nlist\nq\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "=>    2  int b = a + 1;") {
		t.Errorf("list output:\n%s", out.String())
	}
}

func TestSessionUnknownCommand(t *testing.T) {
	s, out := newSession(t, program, "jump\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Unknown command: jump") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestUseColor(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tests := []struct {
		mode string
		want bool
	}{
		{config.ColorAlways, true},
		{config.ColorNever, false},
		{config.ColorAuto, false}, // a regular file is not a terminal
	}
	for _, tt := range tests {
		if got := UseColor(tt.mode, f); got != tt.want {
			t.Errorf("UseColor(%q) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}
