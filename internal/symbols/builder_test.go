package symbols

import (
	"errors"
	"reflect"
	"testing"

	"github.com/funvibe/javatrace/internal/diagnostics"
	"github.com/funvibe/javatrace/internal/source"
)

const program = `public class Main {
    static int square(int x) {
        int y = x * x;
        return y;
    }

    public static void greet(String name, int times) {
        if (times > 0) System.out.println("{" + name);
        String s = "}";
    }

    public static void main(String[] args) {
        int a = square(4);
        greet("ann", a);
    }
}`

func TestBuild(t *testing.T) {
	lines := source.Split(program)
	table, err := Build(lines)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got, want := table.Names(), []string{"greet", "square"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	square, ok := table.Lookup("square")
	if !ok {
		t.Fatal("square not found")
	}
	if square.ReturnType != "int" || !reflect.DeepEqual(square.Params, []string{"x"}) {
		t.Errorf("square = %s %v", square.ReturnType, square.Params)
	}
	if square.Header.Number != 2 {
		t.Errorf("square header line = %d, want 2", square.Header.Number)
	}
	var body []string
	for _, l := range square.Body {
		body = append(body, l.Text)
	}
	if want := []string{"int y = x * x;", "return y;"}; !reflect.DeepEqual(body, want) {
		t.Errorf("square body = %q, want %q", body, want)
	}

	greet, _ := table.Lookup("greet")
	if greet.Arity() != 2 || greet.Params[0] != "name" || greet.Params[1] != "times" {
		t.Errorf("greet params = %v", greet.Params)
	}
	// braces inside literals do not move the depth counter
	if len(greet.Body) != 2 {
		t.Errorf("greet body has %d lines, want 2", len(greet.Body))
	}

	if _, ok := table.Lookup("main"); ok {
		t.Error("main must not be in the function table")
	}

	// class header, square (4 lines), greet (4 lines), main header...
	var top []string
	for i, l := range lines {
		if !table.IsDefinitionLine(i) {
			top = append(top, l.Text)
		}
	}
	wantTop := []string{
		"public class Main {",
		"public static void main(String[] args) {",
		"int a = square(4);",
		`greet("ann", a);`,
		"}",
		"}",
	}
	if !reflect.DeepEqual(top, wantTop) {
		t.Errorf("top-level lines = %q\nwant %q", top, wantTop)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diagnostics.ErrorCode
		line int
	}{
		{
			name: "unterminated",
			src:  "int f(int a) {\nreturn a;\n",
			code: diagnostics.ErrS001,
			line: 1,
		},
		{
			name: "unterminated nested",
			src:  "void f() {\nif (true) {\n}\n",
			code: diagnostics.ErrS001,
			line: 1,
		},
		{
			name: "duplicate",
			src:  "int f() {\nreturn 1;\n}\nint f() {\nreturn 2;\n}",
			code: diagnostics.ErrS002,
			line: 4,
		},
		{
			name: "parameter without type",
			src:  "int f(a) {\n}",
			code: diagnostics.ErrS004,
			line: 1,
		},
		{
			name: "repeated parameter",
			src:  "int f(int a, int a) {\n}",
			code: diagnostics.ErrS004,
			line: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(source.Split(tt.src))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, diagnostics.StructuralError) {
				t.Errorf("error %v is not a StructuralError", err)
			}
			de, ok := diagnostics.As(err)
			if !ok {
				t.Fatalf("error %T is not a DiagnosticError", err)
			}
			if de.Code != tt.code || de.Line != tt.line {
				t.Errorf("got %s at line %d, want %s at line %d", de.Code, de.Line, tt.code, tt.line)
			}
		})
	}
}

func TestIsHeader(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"static int add(int a, int b) {", true},
		{"public static void show() {", true},
		{"private double half(double x){", true},
		{"String name() throws Exception {", true},
		{"static int add(int a, int b) { // sum", true},
		{"public static void main(String[] args) {", false},
		{"static int add(int a, int b)", false},
		{"if (x > 1) {", false},
		{"} else if (x) {", false},
		{"int x = f(1);", false},
	}
	for _, tt := range tests {
		if got := IsHeader(tt.text); got != tt.want {
			t.Errorf("IsHeader(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestBraceDelta(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"{", 1},
		{"}", -1},
		{"} else {", 0},
		{`String s = "{{";`, 0},
		{`char c = '}';`, 0},
		{`String s = "a\"{";`, 0},
		{"x = 1; // }", 0},
	}
	for _, tt := range tests {
		if got := braceDelta(tt.text); got != tt.want {
			t.Errorf("braceDelta(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
