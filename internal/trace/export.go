package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/javatrace/internal/config"
	"github.com/funvibe/javatrace/internal/evaluator"
)

// Document is the exported form of a trace.
type Document struct {
	RunID          string    `json:"run_id" yaml:"run_id"`
	Source         string    `json:"source,omitempty" yaml:"source,omitempty"`
	InputsConsumed int       `json:"inputs_consumed" yaml:"inputs_consumed"`
	Steps          []StepDoc `json:"steps" yaml:"steps"`
	Error          *ErrorDoc `json:"error,omitempty" yaml:"error,omitempty"`
}

type StepDoc struct {
	Index      int           `json:"index" yaml:"index"`
	LineNumber int           `json:"line_number" yaml:"line_number"`
	Line       string        `json:"line" yaml:"line"`
	CallStack  []string      `json:"call_stack" yaml:"call_stack,flow"`
	Variables  []VariableDoc `json:"variables" yaml:"variables"`
	Output     []string      `json:"output" yaml:"output"`
}

type VariableDoc struct {
	Name  string      `json:"name" yaml:"name"`
	Type  string      `json:"type" yaml:"type"`
	Value interface{} `json:"value" yaml:"value"`
}

type ErrorDoc struct {
	Message string `json:"message" yaml:"message"`
}

// ExportOptions labels an exported document. An empty RunID gets a fresh
// random one.
type ExportOptions struct {
	RunID  string
	Source string
	Err    error
}

// NewRunID returns a random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewDocument converts t. Variables are listed in name order so equal traces
// give equal documents.
func NewDocument(t *Trace, opts ExportOptions) *Document {
	doc := &Document{
		RunID:  opts.RunID,
		Source: opts.Source,
		Steps:  []StepDoc{},
	}
	if doc.RunID == "" {
		doc.RunID = NewRunID()
	}
	if opts.Err != nil {
		doc.Error = &ErrorDoc{Message: opts.Err.Error()}
	}
	if t == nil {
		return doc
	}
	doc.InputsConsumed = t.InputsConsumed
	for i, s := range t.Steps {
		sd := StepDoc{
			Index:      i + 1,
			LineNumber: s.LineNumber,
			Line:       s.Line,
			CallStack:  append([]string{}, s.CallStack...),
			Variables:  []VariableDoc{},
			Output:     append([]string{}, s.Output...),
		}
		for _, name := range s.VariableNames() {
			v := s.Variables[name]
			sd.Variables = append(sd.Variables, VariableDoc{
				Name:  name,
				Type:  evaluator.TypeName(v.Type()),
				Value: valueToGo(v),
			})
		}
		doc.Steps = append(doc.Steps, sd)
	}
	return doc
}

// valueToGo gives the scalar an encoder can write. Non-finite reals have no
// JSON form and are written as their display text.
func valueToGo(v evaluator.Value) interface{} {
	switch val := v.(type) {
	case evaluator.Integer:
		return val.Value
	case evaluator.Real:
		if math.IsNaN(val.Value) || math.IsInf(val.Value, 0) {
			return val.Inspect()
		}
		return val.Value
	case evaluator.Text:
		return val.Value
	case evaluator.Boolean:
		return val.Value
	}
	return nil
}

// Export writes t to w in the given format (text, json or yaml).
func Export(w io.Writer, t *Trace, format string, opts ExportOptions) error {
	doc := NewDocument(t, opts)
	switch format {
	case config.FormatText, "":
		return WriteText(w, doc)
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("JSON encoding error: %w", err)
		}
		return nil
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("YAML encoding error: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}

// WriteText renders doc for a terminal, one block per step.
func WriteText(w io.Writer, doc *Document) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s", doc.RunID)
	if doc.Source != "" {
		fmt.Fprintf(&b, " (%s)", doc.Source)
	}
	fmt.Fprintf(&b, ": %d steps, %d inputs consumed\n", len(doc.Steps), doc.InputsConsumed)
	for _, s := range doc.Steps {
		b.WriteString(FormatStep(s, len(doc.Steps)))
	}
	if doc.Error != nil {
		fmt.Fprintf(&b, "\nerror: %s\n", doc.Error.Message)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatStep renders one step the way the stepping session shows it.
func FormatStep(s StepDoc, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nstep %d/%d  line %d: %s\n", s.Index, total, s.LineNumber, s.Line)
	if len(s.CallStack) > 0 {
		fmt.Fprintf(&b, "  stack:  %s\n", strings.Join(s.CallStack, " > "))
	}
	if len(s.Variables) == 0 {
		b.WriteString("  vars:   (none)\n")
	}
	for i, v := range s.Variables {
		label := "        "
		if i == 0 {
			label = "vars:   "
		}
		fmt.Fprintf(&b, "  %s%s %s = %s\n", label, v.Type, v.Name, DisplayValue(v))
	}
	if len(s.Output) > 0 {
		b.WriteString("  output:\n")
		for _, line := range s.Output {
			fmt.Fprintf(&b, "    | %s\n", line)
		}
	}
	return b.String()
}

// DisplayValue renders a variable's value the way the text export does.
// String values are quoted.
func DisplayValue(v VariableDoc) string {
	if s, ok := v.Value.(string); ok && v.Type == config.StringTypeName {
		return fmt.Sprintf("%q", s)
	}
	return RawValue(v)
}

// RawValue is the unquoted display form, as carried in RPC responses.
func RawValue(v VariableDoc) string {
	switch val := v.Value.(type) {
	case nil:
		return "unset"
	case float64:
		return evaluator.FormatReal(val)
	case string:
		return val
	}
	return fmt.Sprint(v.Value)
}
