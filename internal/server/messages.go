package server

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"

	"github.com/funvibe/javatrace/internal/diagnostics"
	"github.com/funvibe/javatrace/internal/trace"
)

type RunRequest struct {
	Source       string   `json:"source" yaml:"source"`
	Inputs       []string `json:"inputs" yaml:"inputs"`
	MaxCallDepth int      `json:"max_call_depth,omitempty" yaml:"max_call_depth,omitempty"`
}

type Variable struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"` // unquoted display form
}

type Step struct {
	Line       string     `json:"line" yaml:"line"`
	LineNumber int        `json:"line_number" yaml:"line_number"`
	Variables  []Variable `json:"variables" yaml:"variables"`
	Output     []string   `json:"output" yaml:"output"`
	CallStack  []string   `json:"call_stack" yaml:"call_stack,flow"`
}

type Failure struct {
	Kind       string `json:"kind" yaml:"kind"`
	Code       string `json:"code" yaml:"code"`
	Message    string `json:"message" yaml:"message"`
	LineNumber int    `json:"line_number" yaml:"line_number"`
}

func (f *Failure) Error() string {
	if f.LineNumber > 0 {
		return fmt.Sprintf("%s: %s (line %d)", f.Kind, f.Message, f.LineNumber)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// RunResponse carries a run's steps and, when it failed, the failure. The
// steps of a failed run are the ones recorded before the error.
type RunResponse struct {
	RunID          string   `json:"run_id" yaml:"run_id"`
	Steps          []Step   `json:"steps" yaml:"steps"`
	InputsConsumed int      `json:"inputs_consumed" yaml:"inputs_consumed"`
	Error          *Failure `json:"error,omitempty" yaml:"error,omitempty"`
}

func newRunResponse(runID string, tr *trace.Trace, err error) *RunResponse {
	resp := &RunResponse{RunID: runID}
	doc := trace.NewDocument(tr, trace.ExportOptions{RunID: runID})
	resp.InputsConsumed = doc.InputsConsumed
	for _, s := range doc.Steps {
		step := Step{
			Line:       s.Line,
			LineNumber: s.LineNumber,
			Output:     s.Output,
			CallStack:  s.CallStack,
		}
		for _, v := range s.Variables {
			step.Variables = append(step.Variables, Variable{Name: v.Name, Type: v.Type, Value: trace.RawValue(v)})
		}
		resp.Steps = append(resp.Steps, step)
	}
	if err != nil {
		resp.Error = newFailure(err)
	}
	return resp
}

func newFailure(err error) *Failure {
	if de, ok := diagnostics.As(err); ok {
		return &Failure{
			Kind:       de.Kind().String(),
			Code:       string(de.Code),
			Message:    de.Message,
			LineNumber: de.Line,
		}
	}
	return &Failure{Kind: "Error", Message: err.Error()}
}

// The conversions below set fields through their descriptors, as proto3
// leaves zero values unset.

func setField(msg *dynamic.Message, name string, v interface{}) error {
	fd := msg.GetMessageDescriptor().FindFieldByName(name)
	if fd == nil {
		return fmt.Errorf("%s has no field %s", msg.GetMessageDescriptor().GetName(), name)
	}
	return msg.TrySetField(fd, v)
}

func stringList(items []string) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, s := range items {
		out = append(out, s)
	}
	return out
}

func requestToMessage(req *RunRequest, md *desc.MessageDescriptor) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(md)
	if err := setField(msg, "source", req.Source); err != nil {
		return nil, err
	}
	if err := setField(msg, "inputs", stringList(req.Inputs)); err != nil {
		return nil, err
	}
	if err := setField(msg, "max_call_depth", int32(req.MaxCallDepth)); err != nil {
		return nil, err
	}
	return msg, nil
}

func messageToRequest(msg *dynamic.Message) *RunRequest {
	return &RunRequest{
		Source:       getString(msg, "source"),
		Inputs:       getStrings(msg, "inputs"),
		MaxCallDepth: getInt(msg, "max_call_depth"),
	}
}

func responseToMessage(resp *RunResponse, md *desc.MessageDescriptor) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(md)
	stepsFD := md.FindFieldByName("steps")
	errorFD := md.FindFieldByName("error")
	if stepsFD == nil || errorFD == nil {
		return nil, fmt.Errorf("%s is missing steps or error", md.GetName())
	}

	if err := setField(msg, "run_id", resp.RunID); err != nil {
		return nil, err
	}
	if err := setField(msg, "inputs_consumed", int32(resp.InputsConsumed)); err != nil {
		return nil, err
	}

	stepMD := stepsFD.GetMessageType()
	varMD := stepMD.FindFieldByName("variables").GetMessageType()
	steps := make([]interface{}, 0, len(resp.Steps))
	for _, s := range resp.Steps {
		sm := dynamic.NewMessage(stepMD)
		vars := make([]interface{}, 0, len(s.Variables))
		for _, v := range s.Variables {
			vm := dynamic.NewMessage(varMD)
			if err := setField(vm, "name", v.Name); err != nil {
				return nil, err
			}
			if err := setField(vm, "type", v.Type); err != nil {
				return nil, err
			}
			if err := setField(vm, "value", v.Value); err != nil {
				return nil, err
			}
			vars = append(vars, vm)
		}
		for name, v := range map[string]interface{}{
			"line":        s.Line,
			"line_number": int32(s.LineNumber),
			"variables":   vars,
			"output":      stringList(s.Output),
			"call_stack":  stringList(s.CallStack),
		} {
			if err := setField(sm, name, v); err != nil {
				return nil, err
			}
		}
		steps = append(steps, sm)
	}
	if err := msg.TrySetField(stepsFD, steps); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		fm := dynamic.NewMessage(errorFD.GetMessageType())
		for name, v := range map[string]interface{}{
			"kind":        resp.Error.Kind,
			"code":        resp.Error.Code,
			"message":     resp.Error.Message,
			"line_number": int32(resp.Error.LineNumber),
		} {
			if err := setField(fm, name, v); err != nil {
				return nil, err
			}
		}
		if err := msg.TrySetField(errorFD, fm); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func messageToResponse(msg *dynamic.Message) *RunResponse {
	resp := &RunResponse{
		RunID:          getString(msg, "run_id"),
		InputsConsumed: getInt(msg, "inputs_consumed"),
	}
	for _, sm := range getMessages(msg, "steps") {
		step := Step{
			Line:       getString(sm, "line"),
			LineNumber: getInt(sm, "line_number"),
			Output:     getStrings(sm, "output"),
			CallStack:  getStrings(sm, "call_stack"),
		}
		for _, vm := range getMessages(sm, "variables") {
			step.Variables = append(step.Variables, Variable{
				Name:  getString(vm, "name"),
				Type:  getString(vm, "type"),
				Value: getString(vm, "value"),
			})
		}
		resp.Steps = append(resp.Steps, step)
	}
	if msg.HasFieldName("error") {
		if fm, ok := msg.GetFieldByName("error").(*dynamic.Message); ok {
			resp.Error = &Failure{
				Kind:       getString(fm, "kind"),
				Code:       getString(fm, "code"),
				Message:    getString(fm, "message"),
				LineNumber: getInt(fm, "line_number"),
			}
		}
	}
	return resp
}

func getString(msg *dynamic.Message, name string) string {
	s, _ := msg.GetFieldByName(name).(string)
	return s
}

func getInt(msg *dynamic.Message, name string) int {
	n, _ := msg.GetFieldByName(name).(int32)
	return int(n)
}

func getStrings(msg *dynamic.Message, name string) []string {
	items, _ := msg.GetFieldByName(name).([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getMessages(msg *dynamic.Message, name string) []*dynamic.Message {
	items, _ := msg.GetFieldByName(name).([]interface{})
	out := make([]*dynamic.Message, 0, len(items))
	for _, item := range items {
		if m, ok := item.(*dynamic.Message); ok {
			out = append(out, m)
		}
	}
	return out
}
