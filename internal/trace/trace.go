// Package trace holds the result of a run: the ordered, immutable steps a
// stepping UI moves through, plus the cursor and exporters built on them.
package trace

import (
	"sort"

	"github.com/funvibe/javatrace/internal/evaluator"
	"github.com/funvibe/javatrace/internal/source"
)

// Step is the interpreter state right after one executed statement.
type Step struct {
	Line       string
	LineNumber int
	Variables  map[string]evaluator.Value
	Output     []string
	CallStack  []string
}

// VariableNames returns the names of Variables in sorted order.
func (s Step) VariableNames() []string {
	names := make([]string, 0, len(s.Variables))
	for name := range s.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Trace struct {
	Steps          []Step
	InputsConsumed int
}

func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Steps)
}

// Recorder appends steps. Every slice and map handed to Record is copied, so
// later changes to interpreter state never reach a recorded step.
type Recorder struct {
	trace Trace
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Record(line source.Line, vars map[string]evaluator.Value, output, callStack []string) {
	step := Step{
		Line:       line.Text,
		LineNumber: line.Number,
		Variables:  make(map[string]evaluator.Value, len(vars)),
		Output:     append([]string{}, output...),
		CallStack:  append([]string{}, callStack...),
	}
	// Values are immutable structs; copying the map is a deep copy.
	for name, v := range vars {
		step.Variables[name] = v
	}
	r.trace.Steps = append(r.trace.Steps, step)
}

func (r *Recorder) SetInputsConsumed(n int) {
	r.trace.InputsConsumed = n
}

func (r *Recorder) Len() int { return len(r.trace.Steps) }

// Trace returns the recorded trace. The recorder must not be used afterwards.
func (r *Recorder) Trace() *Trace {
	t := r.trace
	return &t
}
