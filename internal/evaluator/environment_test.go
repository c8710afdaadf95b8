package evaluator

import (
	"errors"
	"testing"

	"github.com/funvibe/javatrace/internal/diagnostics"
)

func TestEnvironmentLayering(t *testing.T) {
	global := NewEnvironment()
	if err := global.Declare("g", INTEGER_VALUE, Integer{Value: 1}); err != nil {
		t.Fatal(err)
	}
	if err := global.Declare("shadow", TEXT_VALUE, Text{Value: "global"}); err != nil {
		t.Fatal(err)
	}

	local := NewEnclosedEnvironment(global)
	if err := local.Declare("shadow", INTEGER_VALUE, Integer{Value: 7}); err != nil {
		t.Fatalf("shadowing an outer name should be allowed: %v", err)
	}
	if err := local.Declare("l", REAL_VALUE, Integer{Value: 2}); err != nil {
		t.Fatal(err)
	}

	// writes go to the declaring scope
	if err := local.Assign("g", Real{Value: 9.9}); err != nil {
		t.Fatal(err)
	}
	if v, _ := global.Get("g"); v.Value != (Integer{Value: 9}) {
		t.Errorf("global g = %v, want Integer 9", v.Value)
	}

	snap := local.Snapshot()
	if snap["shadow"] != (Integer{Value: 7}) {
		t.Errorf("local should shadow global, got %v", snap["shadow"])
	}
	if snap["l"] != (Real{Value: 2}) {
		t.Errorf("l = %v, want Real 2", snap["l"])
	}
	if _, ok := global.Snapshot()["l"]; ok {
		t.Error("local declaration leaked into global scope")
	}
	if v, _ := global.Get("shadow"); v.Value != (Text{Value: "global"}) {
		t.Errorf("global shadow = %v, want unchanged", v.Value)
	}
}

func TestEnvironmentErrors(t *testing.T) {
	env := NewEnvironment()
	if err := env.Declare("x", INTEGER_VALUE, Integer{Value: 1}); err != nil {
		t.Fatal(err)
	}
	if err := env.Declare("x", INTEGER_VALUE, Integer{Value: 2}); !errors.Is(err, diagnostics.EvaluationError) {
		t.Errorf("redeclaration: expected EvaluationError, got %v", err)
	}
	if err := env.Assign("y", Integer{Value: 2}); !errors.Is(err, diagnostics.UndefinedSymbol) {
		t.Errorf("undeclared assignment: expected UndefinedSymbol, got %v", err)
	}
	if err := env.Assign("x", Text{Value: "abc"}); !errors.Is(err, diagnostics.EvaluationError) {
		t.Errorf("bad coercion: expected EvaluationError, got %v", err)
	}
	if v, _ := env.Get("x"); v.Type != INTEGER_VALUE || v.Value != (Integer{Value: 1}) {
		t.Errorf("x changed after failed assignment: %+v", v)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	env := NewEnvironment()
	if err := env.Declare("x", INTEGER_VALUE, Integer{Value: 1}); err != nil {
		t.Fatal(err)
	}
	snap := env.Snapshot()
	if err := env.Assign("x", Integer{Value: 2}); err != nil {
		t.Fatal(err)
	}
	if snap["x"] != (Integer{Value: 1}) {
		t.Errorf("snapshot changed after assignment: %v", snap["x"])
	}
}
