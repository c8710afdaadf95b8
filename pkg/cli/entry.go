// Package cli implements the javatrace command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/javatrace/internal/config"
	"github.com/funvibe/javatrace/internal/diagnostics"
	"github.com/funvibe/javatrace/internal/interpreter"
	"github.com/funvibe/javatrace/internal/server"
	"github.com/funvibe/javatrace/internal/source"
	"github.com/funvibe/javatrace/internal/stepper"
	"github.com/funvibe/javatrace/internal/trace"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1 // the program failed or a command could not finish
	ExitUsage   = 2
)

// App is one invocation of the command line with its standard streams.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// dial connects remote to a server; nil means server.Dial.
	dial func(addr string) (*server.Client, error)
}

// Run is the entry point used by cmd/javatrace.
func Run() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(ExitFailure)
		}
	}()

	app := &App{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	os.Exit(app.Run(os.Args[1:]))
}

// Run dispatches args to a subcommand and returns the exit code.
func (a *App) Run(args []string) int {
	if len(args) == 0 {
		a.printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "run":
		return a.handleRun(args[1:])
	case "step":
		return a.handleStep(args[1:])
	case "serve":
		return a.handleServe(args[1:])
	case "remote":
		return a.handleRemote(args[1:])
	case "version", "-v", "-version", "--version":
		fmt.Fprintln(a.Stdout, "javatrace "+config.Version)
		return ExitOK
	case "help", "-h", "-help", "--help":
		a.printUsage()
		return ExitOK
	}

	// javatrace Main.java is short for javatrace run Main.java
	if config.IsSourceFile(args[0]) {
		return a.handleRun(args)
	}
	fmt.Fprintf(a.Stderr, "Unknown command: %s\n", args[0])
	a.printUsage()
	return ExitUsage
}

func (a *App) printUsage() {
	fmt.Fprint(a.Stderr, `Usage:
  javatrace run [-input file] [-format text|json|yaml] [-config file] [-partial] [-v] <file>
  javatrace step [-input file] [-config file] <file>
  javatrace serve [-addr host:port] [-config file]
  javatrace remote [-addr host:port] [-input file] [-format text|json|yaml] [-config file] [-partial] <file>
  javatrace version

A file name of "-" reads the program from standard input.
`)
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	return fs
}

// loadSettings reads the explicit settings file, or the nearest
// javatrace.yaml above the current directory, or falls back to defaults.
func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		found, err := config.FindSettings(".")
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path == "" {
		return config.DefaultSettings(), nil
	}
	return config.LoadSettings(path)
}

// program holds the source and inputs named on the command line.
type program struct {
	name   string
	source string
	inputs []string
}

func (a *App) readProgram(fs *flag.FlagSet, inputPath string) (*program, error) {
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one source file, got %d", fs.NArg())
	}
	path := fs.Arg(0)
	if path == "-" && inputPath == "-" {
		return nil, errors.New("the program and its input cannot both come from standard input")
	}

	src, err := a.readFile(path)
	if err != nil {
		return nil, err
	}
	p := &program{name: filepath.Base(path), source: src}
	if path == "-" {
		p.name = "stdin"
	}
	if inputPath != "" {
		data, err := a.readFile(inputPath)
		if err != nil {
			return nil, err
		}
		p.inputs = source.SplitInputs(data)
	}
	return p, nil
}

func (a *App) readFile(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(a.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("Error reading input: %w", err)
	}
	return string(data), nil
}

func (a *App) handleRun(args []string) int {
	fs := a.newFlagSet("run")
	inputPath := fs.String("input", "", "file with one input value per line (\"-\" for stdin)")
	format := fs.String("format", "", "trace format: text, json or yaml")
	configPath := fs.String("config", "", "settings file (default: nearest javatrace.yaml)")
	partial := fs.Bool("partial", false, "show the steps recorded before an error")
	verbose := fs.Bool("v", false, "log every executed statement to stderr")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	settings, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitFailure
	}
	if *format == "" {
		*format = settings.Format
	}
	p, err := a.readProgram(fs, *inputPath)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	opts := interpreter.Options{MaxCallDepth: settings.MaxCallDepth, MaxSteps: settings.MaxSteps}
	if *verbose {
		opts.Logger = log.New(a.Stderr, "", 0)
	}
	tr, runErr := interpreter.New(opts).Run(context.Background(), p.source, p.inputs)
	if runErr != nil && !*partial {
		tr = nil
	}

	exportErr := trace.Export(a.Stdout, tr, *format, trace.ExportOptions{Source: p.name, Err: runErr})
	if exportErr != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", exportErr)
		return ExitFailure
	}
	if runErr != nil {
		a.reportError(runErr, settings.Color)
		return ExitFailure
	}
	return ExitOK
}

func (a *App) reportError(err error, colorMode string) {
	msg := err.Error()
	if de, ok := diagnostics.As(err); ok {
		msg = fmt.Sprintf("[%s] %s", de.Code, de.Error())
	}
	var fail *server.Failure
	if errors.As(err, &fail) && fail.Code != "" {
		msg = fmt.Sprintf("[%s] %s", fail.Code, fail.Error())
	}
	if f, ok := a.Stderr.(*os.File); ok && stepper.UseColor(colorMode, f) {
		fmt.Fprintf(a.Stderr, "\033[31m%s\033[0m\n", msg)
		return
	}
	fmt.Fprintln(a.Stderr, msg)
}

func (a *App) handleStep(args []string) int {
	fs := a.newFlagSet("step")
	inputPath := fs.String("input", "", "file with one input value per line")
	configPath := fs.String("config", "", "settings file (default: nearest javatrace.yaml)")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	settings, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitFailure
	}
	if fs.Arg(0) == "-" || *inputPath == "-" {
		fmt.Fprintln(a.Stderr, "Error: step reads commands from standard input; pass the program and its input as files")
		return ExitUsage
	}
	p, err := a.readProgram(fs, *inputPath)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	session := stepper.New(interpreter.New(interpreter.Options{
		MaxCallDepth: settings.MaxCallDepth,
		MaxSteps:     settings.MaxSteps,
	}), p.name, p.source, p.inputs)
	session.SetInput(a.Stdin)
	session.SetOutput(a.Stdout)
	if f, ok := a.Stdout.(*os.File); ok {
		session.Color = stepper.UseColor(settings.Color, f)
	} else {
		session.Color = settings.Color == config.ColorAlways
	}
	if f, ok := a.Stdin.(*os.File); !ok || !stepper.IsTerminal(f) {
		session.Prompt = ""
	}

	if err := session.Run(context.Background()); err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitFailure
	}
	return ExitOK
}

func (a *App) handleServe(args []string) int {
	fs := a.newFlagSet("serve")
	addr := fs.String("addr", "", "listen address (default from settings, "+config.DefaultServerAddr+")")
	configPath := fs.String("config", "", "settings file (default: nearest javatrace.yaml)")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	settings, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitFailure
	}
	if *addr == "" {
		*addr = settings.Server.Addr
	}

	srv, err := server.New(server.Options{
		MaxCallDepth: settings.MaxCallDepth,
		MaxSteps:     settings.MaxSteps,
		Timeout:      settings.Server.Timeout,
		Logger:       log.New(a.Stderr, "", log.LstdFlags),
	})
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		srv.Stop()
	}()

	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitFailure
	}
	return ExitOK
}

func (a *App) handleRemote(args []string) int {
	fs := a.newFlagSet("remote")
	addr := fs.String("addr", "", "server address (default from settings, "+config.DefaultServerAddr+")")
	inputPath := fs.String("input", "", "file with one input value per line")
	format := fs.String("format", "", "response format: text, json or yaml")
	configPath := fs.String("config", "", "settings file (default: nearest javatrace.yaml)")
	partial := fs.Bool("partial", false, "show the steps recorded before an error")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	settings, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitFailure
	}
	if *addr == "" {
		*addr = settings.Server.Addr
	}
	if *format == "" {
		*format = settings.Format
	}
	p, err := a.readProgram(fs, *inputPath)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	dial := a.dial
	if dial == nil {
		dial = server.Dial
	}
	client, err := dial(*addr)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitFailure
	}
	defer client.Close()

	resp, err := client.Run(context.Background(), &server.RunRequest{Source: p.source, Inputs: p.inputs})
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitFailure
	}
	if resp.Error != nil && !*partial {
		resp.Steps = nil
	}
	if err := writeResponse(a.Stdout, resp, *format, p.name); err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitFailure
	}
	if resp.Error != nil {
		a.reportError(resp.Error, settings.Color)
		return ExitFailure
	}
	return ExitOK
}

func writeResponse(w io.Writer, resp *server.RunResponse, format, name string) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	}

	doc := &trace.Document{
		RunID:          resp.RunID,
		Source:         name,
		InputsConsumed: resp.InputsConsumed,
		Steps:          []trace.StepDoc{},
	}
	for i, s := range resp.Steps {
		sd := trace.StepDoc{
			Index:      i + 1,
			LineNumber: s.LineNumber,
			Line:       s.Line,
			CallStack:  s.CallStack,
			Output:     s.Output,
		}
		for _, v := range s.Variables {
			sd.Variables = append(sd.Variables, trace.VariableDoc{Name: v.Name, Type: v.Type, Value: v.Value})
		}
		doc.Steps = append(doc.Steps, sd)
	}
	if resp.Error != nil {
		doc.Error = &trace.ErrorDoc{Message: resp.Error.Error()}
	}
	return trace.WriteText(w, doc)
}
