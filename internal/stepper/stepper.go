// Package stepper is the interactive terminal session over a computed trace:
// run once, then move through the recorded steps without re-running.
package stepper

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/javatrace/internal/config"
	"github.com/funvibe/javatrace/internal/interpreter"
	"github.com/funvibe/javatrace/internal/trace"
)

const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorCyan  = "\033[36m"
	colorRed   = "\033[31m"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// UseColor resolves a color setting against the output file.
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	return os.Getenv("NO_COLOR") == "" && IsTerminal(f)
}

// Session steps through the trace of one program.
type Session struct {
	interp *interpreter.Interpreter
	name   string
	source string
	inputs []string

	cursor *trace.Cursor
	doc    *trace.Document
	err    error

	scanner *bufio.Scanner
	input   io.Reader
	output  io.Writer

	// Color enables ANSI highlighting.
	Color bool
	// Prompt is printed before each command; empty disables it.
	Prompt string
}

func New(interp *interpreter.Interpreter, name, source string, inputs []string) *Session {
	return &Session{
		interp: interp,
		name:   name,
		source: source,
		inputs: inputs,
		cursor: trace.NewCursor(nil),
		input:  os.Stdin,
		output: os.Stdout,
		Prompt: "(javatrace) ",
	}
}

func (s *Session) SetInput(r io.Reader) {
	s.input = r
	s.scanner = bufio.NewScanner(r)
}

func (s *Session) SetOutput(w io.Writer) {
	s.output = w
}

// Cursor exposes the position for callers that drive the session directly.
func (s *Session) Cursor() *trace.Cursor { return s.cursor }

// Err is the error of the last run, nil when it succeeded.
func (s *Session) Err() error { return s.err }

// Load runs the program and rewinds to its first step. A failed run leaves
// the session without steps and remembers the error.
func (s *Session) Load(ctx context.Context) error {
	tr, err := s.interp.Run(ctx, s.source, s.inputs)
	s.err = err
	if err != nil {
		s.cursor.Reset()
		s.doc = trace.NewDocument(nil, trace.ExportOptions{Source: s.name, Err: err})
		return err
	}
	s.cursor.Load(tr)
	s.doc = trace.NewDocument(tr, trace.ExportOptions{Source: s.name})
	return nil
}

// Run loads the program and reads commands until quit or end of input.
func (s *Session) Run(ctx context.Context) error {
	if s.scanner == nil {
		s.scanner = bufio.NewScanner(s.input)
	}

	if err := s.Load(ctx); err != nil {
		s.printError(err)
	} else {
		fmt.Fprintf(s.output, "%d steps recorded. Type 'help' for commands.\n", s.cursor.Len())
		s.printCurrent()
	}

	for {
		if s.Prompt != "" {
			fmt.Fprint(s.output, s.Prompt)
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return fmt.Errorf("reading commands: %w", err)
			}
			fmt.Fprintln(s.output)
			return nil
		}
		if quit := s.Execute(ctx, s.scanner.Text()); quit {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the session should end.
// An empty line repeats "next".
func (s *Session) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		parts = []string{"next"}
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "help", "h", "?":
		printHelp(s.output)
	case "next", "n", "forward", "f":
		if s.cursor.Len() == 0 {
			s.notice("no steps recorded")
			return false
		}
		if !s.cursor.Forward() {
			s.notice("already at the last step")
			return false
		}
		s.printCurrent()
	case "back", "b", "prev", "p":
		if s.cursor.Len() == 0 {
			s.notice("no steps recorded")
			return false
		}
		if !s.cursor.Backward() {
			s.notice("already at the first step")
			return false
		}
		s.printCurrent()
	case "first":
		s.cursor.Seek(0)
		s.printCurrent()
	case "last":
		s.cursor.Seek(s.cursor.Len() - 1)
		s.printCurrent()
	case "goto", "g":
		s.handleGoto(args)
	case "reset":
		s.cursor.Reset()
		s.notice("steps cleared; type 'run' to execute again")
	case "run", "r":
		if err := s.Load(ctx); err != nil {
			s.printError(err)
			return false
		}
		fmt.Fprintf(s.output, "%d steps recorded.\n", s.cursor.Len())
		s.printCurrent()
	case "step", "show", "s":
		s.printCurrent()
	case "vars", "v":
		s.printVars()
	case "out", "o":
		s.printOutput()
	case "list", "l":
		s.printSource()
	case "quit", "q", "exit":
		return true
	default:
		fmt.Fprintf(s.output, "Unknown command: %s. Type 'help' for help.\n", cmd)
	}
	return false
}

func printHelp(output io.Writer) {
	help := `Stepping commands:
  help, h               - Show this help
  next, n, <enter>      - Move to the next step
  back, b               - Move to the previous step
  first, last           - Jump to the first or last step
  goto, g <n>           - Jump to step n
  step, s               - Show the current step again
  vars, v               - Show variables at the current step
  out, o                - Show output printed so far
  list, l               - Show the source around the current line
  reset                 - Discard the recorded steps
  run, r                - Run the program again
  quit, q, exit         - Leave the session
`
	fmt.Fprint(output, help)
}

func (s *Session) handleGoto(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(s.output, "Usage: goto <step>\n")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.output, "Invalid step number: %s\n", args[0])
		return
	}
	s.cursor.Seek(n - 1)
	s.printCurrent()
}

func (s *Session) current() (trace.StepDoc, bool) {
	if s.cursor.Len() == 0 || s.doc == nil {
		return trace.StepDoc{}, false
	}
	return s.doc.Steps[s.cursor.Index()], true
}

func (s *Session) printCurrent() {
	step, ok := s.current()
	if !ok {
		s.notice("no steps recorded")
		return
	}
	text := trace.FormatStep(step, s.cursor.Len())
	if s.Color {
		header, rest, _ := strings.Cut(strings.TrimPrefix(text, "\n"), "\n")
		text = "\n" + colorBold + colorCyan + header + colorReset + "\n" + rest
	}
	fmt.Fprint(s.output, text)
}

func (s *Session) printVars() {
	step, ok := s.current()
	if !ok {
		s.notice("no steps recorded")
		return
	}
	if len(step.Variables) == 0 {
		fmt.Fprintln(s.output, "(no variables)")
	}
	for _, v := range step.Variables {
		fmt.Fprintf(s.output, "%s %s = %s\n", v.Type, v.Name, trace.DisplayValue(v))
	}
}

func (s *Session) printOutput() {
	step, ok := s.current()
	if !ok {
		s.notice("no steps recorded")
		return
	}
	if len(step.Output) == 0 {
		fmt.Fprintln(s.output, "(no output)")
	}
	for _, line := range step.Output {
		fmt.Fprintln(s.output, line)
	}
}

func (s *Session) printSource() {
	step, ok := s.current()
	if !ok {
		s.notice("no steps recorded")
		return
	}
	lines := strings.Split(strings.ReplaceAll(s.source, "\r\n", "\n"), "\n")
	from := max(step.LineNumber-3, 1)
	to := min(step.LineNumber+3, len(lines))
	for n := from; n <= to; n++ {
		marker := "  "
		if n == step.LineNumber {
			marker = "=>"
		}
		fmt.Fprintf(s.output, "%s %4d  %s\n", marker, n, lines[n-1])
	}
}

func (s *Session) notice(msg string) {
	fmt.Fprintln(s.output, msg)
}

func (s *Session) printError(err error) {
	if s.Color {
		fmt.Fprintf(s.output, "%serror:%s %v\n", colorRed, colorReset, err)
		return
	}
	fmt.Fprintf(s.output, "error: %v\n", err)
}
