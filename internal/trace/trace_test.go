package trace

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/javatrace/internal/evaluator"
	"github.com/funvibe/javatrace/internal/source"
)

func sampleTrace() *Trace {
	r := NewRecorder()
	vars := map[string]evaluator.Value{"x": evaluator.Integer{Value: 5}}
	r.Record(source.Line{Number: 3, Text: "int x = 5;"}, vars, nil, nil)
	vars["y"] = evaluator.Real{Value: 2.5}
	r.Record(source.Line{Number: 4, Text: "double y = x / 2.0;"}, vars, nil, nil)
	vars["s"] = evaluator.Text{Value: "hi"}
	r.Record(source.Line{Number: 8, Text: `String s = "hi";`}, vars, []string{"hi"}, []string{"greet"})
	r.SetInputsConsumed(1)
	return r.Trace()
}

func TestRecorderCopies(t *testing.T) {
	r := NewRecorder()
	vars := map[string]evaluator.Value{"a": evaluator.Integer{Value: 1}}
	output := []string{"one"}
	stack := []string{"f"}
	r.Record(source.Line{Number: 1, Text: "a = 1;"}, vars, output, stack)

	vars["a"] = evaluator.Integer{Value: 2}
	vars["b"] = evaluator.TRUE
	output[0] = "changed"
	stack[0] = "g"

	step := r.Trace().Steps[0]
	if got := step.Variables["a"]; got != (evaluator.Integer{Value: 1}) {
		t.Errorf("recorded a = %v, want 1", got)
	}
	if _, ok := step.Variables["b"]; ok {
		t.Error("variable declared after recording leaked into the step")
	}
	if step.Output[0] != "one" || step.CallStack[0] != "f" {
		t.Errorf("recorded output/stack changed: %v %v", step.Output, step.CallStack)
	}
}

func TestCursor(t *testing.T) {
	c := NewCursor(sampleTrace())

	if !c.AtStart() || c.AtEnd() || c.Len() != 3 {
		t.Fatalf("fresh cursor: index %d len %d", c.Index(), c.Len())
	}
	if c.Backward() {
		t.Error("Backward at start moved")
	}
	if !c.Forward() || !c.Forward() {
		t.Fatal("Forward did not move")
	}
	if c.Forward() {
		t.Error("Forward at end moved")
	}
	if !c.AtEnd() || c.Index() != 2 {
		t.Errorf("index = %d, want 2", c.Index())
	}
	step, ok := c.Current()
	if !ok || step.LineNumber != 8 {
		t.Errorf("Current() = %+v, %v", step, ok)
	}

	c.Seek(-4)
	if c.Index() != 0 {
		t.Errorf("Seek(-4) index = %d", c.Index())
	}
	c.Seek(99)
	if c.Index() != 2 {
		t.Errorf("Seek(99) index = %d", c.Index())
	}

	c.Reset()
	if _, ok := c.Current(); ok || c.Len() != 0 || c.Index() != 0 {
		t.Error("Reset kept steps")
	}
	if c.Forward() || c.Backward() {
		t.Error("empty cursor moved")
	}

	c.Load(sampleTrace())
	if c.Len() != 3 || c.Index() != 0 {
		t.Errorf("Load: len %d index %d", c.Len(), c.Index())
	}
}

func TestExportDeterministic(t *testing.T) {
	for _, format := range []string{"text", "json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			opts := ExportOptions{RunID: "fixed", Source: "Main.java"}
			var a, b bytes.Buffer
			if err := Export(&a, sampleTrace(), format, opts); err != nil {
				t.Fatal(err)
			}
			if err := Export(&b, sampleTrace(), format, opts); err != nil {
				t.Fatal(err)
			}
			if a.String() != b.String() {
				t.Errorf("two exports differ:\n%s\n---\n%s", a.String(), b.String())
			}
		})
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, sampleTrace(), "json", ExportOptions{RunID: "r1"}); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		RunID          string `json:"run_id"`
		InputsConsumed int    `json:"inputs_consumed"`
		Steps          []struct {
			Index     int      `json:"index"`
			CallStack []string `json:"call_stack"`
			Variables []struct {
				Name  string      `json:"name"`
				Type  string      `json:"type"`
				Value interface{} `json:"value"`
			} `json:"variables"`
		} `json:"steps"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if doc.RunID != "r1" || doc.InputsConsumed != 1 || len(doc.Steps) != 3 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	last := doc.Steps[2]
	var names []string
	for _, v := range last.Variables {
		names = append(names, v.Name)
	}
	if strings.Join(names, ",") != "s,x,y" {
		t.Errorf("variables not sorted: %v", names)
	}
	if last.Variables[2].Type != "double" || last.Variables[2].Value != 2.5 {
		t.Errorf("y = %+v", last.Variables[2])
	}
	if len(last.CallStack) != 1 || last.CallStack[0] != "greet" {
		t.Errorf("call stack = %v", last.CallStack)
	}
}

func TestExportYAMLNonFinite(t *testing.T) {
	r := NewRecorder()
	r.Record(source.Line{Number: 1, Text: "double d = 1.0 / 0;"},
		map[string]evaluator.Value{"d": evaluator.Real{Value: math.Inf(1)}}, nil, nil)

	var buf bytes.Buffer
	if err := Export(&buf, r.Trace(), "yaml", ExportOptions{RunID: "r"}); err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if got := doc.Steps[0].Variables[0].Value; got != "Infinity" {
		t.Errorf("value = %#v, want Infinity", got)
	}
}

func TestNewDocumentRunID(t *testing.T) {
	a := NewDocument(nil, ExportOptions{})
	b := NewDocument(nil, ExportOptions{})
	if a.RunID == "" || a.RunID == b.RunID {
		t.Errorf("run ids %q and %q", a.RunID, b.RunID)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, sampleTrace(), "text", ExportOptions{RunID: "r"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"run r: 3 steps, 1 inputs consumed",
		"step 3/3  line 8: String s = \"hi\";",
		"stack:  greet",
		"String s = \"hi\"",
		"double y = 2.5",
		"| hi",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text export missing %q:\n%s", want, out)
		}
	}
}

func TestUnknownFormat(t *testing.T) {
	if err := Export(&bytes.Buffer{}, sampleTrace(), "xml", ExportOptions{}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
