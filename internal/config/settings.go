package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Output formats understood by the trace exporters.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const DefaultServerAddr = "127.0.0.1:7411"

// Settings represents the javatrace.yaml configuration.
type Settings struct {
	// MaxCallDepth is the deepest call stack a program may build before the
	// run aborts with a recursion-limit error.
	MaxCallDepth int `yaml:"max_call_depth,omitempty"`

	// MaxSteps is the most steps a run may record.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Format is the default trace format for `run`: text, json or yaml.
	Format string `yaml:"format,omitempty"`

	// Color controls ANSI colouring: auto (terminal only), always, never.
	Color string `yaml:"color,omitempty"`

	Server ServerSettings `yaml:"server,omitempty"`
}

type ServerSettings struct {
	// Addr is the listen address of `serve` and the target of `remote`.
	Addr string `yaml:"addr,omitempty"`

	// Timeout bounds each served run, e.g. "5s".
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// DefaultSettings returns the settings used when no file is found.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.setDefaults()
	return s
}

// LoadSettings reads and parses a javatrace.yaml file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseSettings(data, path)
}

// ParseSettings parses javatrace.yaml content from bytes.
// The path argument is used only for error messages.
func ParseSettings(data []byte, path string) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.validate(path); err != nil {
		return nil, err
	}
	s.setDefaults()
	return &s, nil
}

// FindSettings searches for javatrace.yaml starting from dir and walking up
// to parent directories. It returns "" and a nil error when there is none.
func FindSettings(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range SettingsFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (s *Settings) validate(path string) error {
	if s.MaxCallDepth < 0 {
		return fmt.Errorf("%s: max_call_depth must not be negative", path)
	}
	if s.MaxCallDepth > MaxCallDepthLimit {
		return fmt.Errorf("%s: max_call_depth %d is above the limit of %d", path, s.MaxCallDepth, MaxCallDepthLimit)
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("%s: max_steps must not be negative", path)
	}
	if s.Server.Timeout < 0 {
		return fmt.Errorf("%s: server.timeout must not be negative", path)
	}
	switch s.Format {
	case "", FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%s: unknown format %q (want text, json or yaml)", path, s.Format)
	}
	switch s.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: unknown color mode %q (want auto, always or never)", path, s.Color)
	}
	return nil
}

func (s *Settings) setDefaults() {
	if s.MaxCallDepth == 0 {
		s.MaxCallDepth = DefaultMaxCallDepth
	}
	if s.MaxSteps == 0 {
		s.MaxSteps = DefaultMaxSteps
	}
	if s.Format == "" {
		s.Format = FormatText
	}
	if s.Color == "" {
		s.Color = ColorAuto
	}
	if s.Server.Addr == "" {
		s.Server.Addr = DefaultServerAddr
	}
	if s.Server.Timeout == 0 {
		s.Server.Timeout = DefaultRequestTimeout
	}
}
