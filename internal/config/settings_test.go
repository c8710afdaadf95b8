package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseSettings_Full(t *testing.T) {
	yaml := `
max_call_depth: 64
max_steps: 500
format: json
color: never
server:
  addr: 0.0.0.0:9000
  timeout: 2s
`
	s, err := ParseSettings([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.MaxCallDepth != 64 {
		t.Errorf("max_call_depth = %d, want 64", s.MaxCallDepth)
	}
	if s.Format != FormatJSON {
		t.Errorf("format = %q, want json", s.Format)
	}
	if s.Color != ColorNever {
		t.Errorf("color = %q, want never", s.Color)
	}
	if s.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("server.addr = %q, want 0.0.0.0:9000", s.Server.Addr)
	}
	if s.MaxSteps != 500 {
		t.Errorf("max_steps = %d, want 500", s.MaxSteps)
	}
	if s.Server.Timeout != 2*time.Second {
		t.Errorf("server.timeout = %v, want 2s", s.Server.Timeout)
	}
}

func TestParseSettings_Defaults(t *testing.T) {
	s, err := ParseSettings([]byte("{}"), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.MaxCallDepth != DefaultMaxCallDepth {
		t.Errorf("max_call_depth = %d, want %d", s.MaxCallDepth, DefaultMaxCallDepth)
	}
	if s.Format != FormatText {
		t.Errorf("format = %q, want text", s.Format)
	}
	if s.Color != ColorAuto {
		t.Errorf("color = %q, want auto", s.Color)
	}
	if s.Server.Addr != DefaultServerAddr {
		t.Errorf("server.addr = %q, want %q", s.Server.Addr, DefaultServerAddr)
	}
	if s.MaxSteps != DefaultMaxSteps {
		t.Errorf("max_steps = %d, want %d", s.MaxSteps, DefaultMaxSteps)
	}
	if s.Server.Timeout != DefaultRequestTimeout {
		t.Errorf("server.timeout = %v, want %v", s.Server.Timeout, DefaultRequestTimeout)
	}
}

func TestParseSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative depth", "max_call_depth: -1"},
		{"depth above limit", "max_call_depth: 50000000"},
		{"negative steps", "max_steps: -5"},
		{"negative timeout", "server:\n  timeout: -1s"},
		{"bad timeout", "server:\n  timeout: soon"},
		{"unknown format", "format: xml"},
		{"unknown color", "color: sometimes"},
		{"not yaml", "max_call_depth: [1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSettings([]byte(tt.yaml), "test.yaml"); err == nil {
				t.Errorf("expected error for %q", tt.yaml)
			}
		})
	}
}

func TestFindSettings_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "javatrace.yaml")
	if err := os.WriteFile(want, []byte("format: yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindSettings(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("FindSettings = %q, want %q", got, want)
	}

	s, err := LoadSettings(got)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Format != FormatYAML {
		t.Errorf("format = %q, want yaml", s.Format)
	}
}

func TestIsSourceFile(t *testing.T) {
	if !IsSourceFile("Main.java") {
		t.Error("Main.java should be a source file")
	}
	if IsSourceFile("notes.txt") {
		t.Error("notes.txt should not be a source file")
	}
	if got := TrimSourceExt("Main.java"); got != "Main" {
		t.Errorf("TrimSourceExt = %q, want Main", got)
	}
}

func TestParseSettings_DepthAtLimit(t *testing.T) {
	s, err := ParseSettings([]byte("max_call_depth: 10000"), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.MaxCallDepth != MaxCallDepthLimit {
		t.Errorf("max_call_depth = %d, want %d", s.MaxCallDepth, MaxCallDepthLimit)
	}
}
