package pipeline

import (
	"context"
	"errors"
	"testing"
)

type recordingProcessor struct {
	name string
	seen *[]string
	fail error
}

func (p recordingProcessor) Process(ctx *PipelineContext) *PipelineContext {
	*p.seen = append(*p.seen, p.name)
	if p.fail != nil {
		ctx.AddError(p.fail)
	}
	return ctx
}

func TestRunVisitsEveryProcessor(t *testing.T) {
	var seen []string
	boom := errors.New("boom")
	p := New(
		recordingProcessor{name: "a", seen: &seen},
		recordingProcessor{name: "b", seen: &seen, fail: boom},
		recordingProcessor{name: "c", seen: &seen},
	)
	ctx := p.Run(NewPipelineContext(context.Background(), "", nil))

	if len(seen) != 3 || seen[0] != "a" || seen[2] != "c" {
		t.Errorf("processors run = %v", seen)
	}
	if !errors.Is(ctx.Err(), boom) {
		t.Errorf("Err() = %v, want boom", ctx.Err())
	}
}

func TestNilContext(t *testing.T) {
	ctx := NewPipelineContext(nil, "x", nil)
	if ctx.Context == nil {
		t.Error("nil context was not replaced")
	}
	if ctx.Err() != nil {
		t.Errorf("fresh context has error %v", ctx.Err())
	}
}
