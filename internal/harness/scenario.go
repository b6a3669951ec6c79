package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative end-to-end test case: a session in command
// notation plus the expectations to check against the computed results.
type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Session     string       `yaml:"session"`
	Expect      Expectations `yaml:"expect"`
}

// Expectations declares what a scenario asserts about its session.
// All fields are optional, but a scenario must declare at least one.
type Expectations struct {
	// ParseError expects session parsing to fail with this error code.
	// When set, no other expectation may be used.
	ParseError string `yaml:"parse_error,omitempty"`

	// Canonical maps sequence labels to their expected canonical set text.
	Canonical map[string]string `yaml:"canonical,omitempty"`

	// CanonicalError maps sequence labels to the error code expected from
	// canonicalization, for sequences that are not canonicalizable.
	CanonicalError map[string]string `yaml:"canonical_error,omitempty"`

	// Refluent expects the family refluence check to return this value.
	Refluent *bool `yaml:"refluent,omitempty"`

	// Greedy expects the greedy merger to render as this set text.
	Greedy string `yaml:"greedy,omitempty"`

	// Mergers expects enumeration to yield exactly this many maximal mergers.
	Mergers *int `yaml:"mergers,omitempty"`

	// MergersInclude expects each listed set text to appear among the
	// enumerated mergers.
	MergersInclude []string `yaml:"mergers_include,omitempty"`
}

// LoadScenario reads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// validateScenario checks required fields and expectation consistency.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario missing required field: name")
	}
	if s.Description == "" {
		return fmt.Errorf("scenario %s missing required field: description", s.Name)
	}
	if s.Session == "" {
		return fmt.Errorf("scenario %s missing required field: session", s.Name)
	}

	e := s.Expect
	hasOther := len(e.Canonical) > 0 || len(e.CanonicalError) > 0 ||
		e.Refluent != nil || e.Greedy != "" ||
		e.Mergers != nil || len(e.MergersInclude) > 0

	if e.ParseError != "" && hasOther {
		return fmt.Errorf("scenario %s: parse_error cannot be combined with other expectations", s.Name)
	}
	if e.ParseError == "" && !hasOther {
		return fmt.Errorf("scenario %s declares no expectations", s.Name)
	}

	for label, want := range e.Canonical {
		if want == "" {
			return fmt.Errorf("scenario %s: canonical expectation for %s is empty", s.Name, label)
		}
		if _, dup := e.CanonicalError[label]; dup {
			return fmt.Errorf("scenario %s: sequence %s has both canonical and canonical_error expectations", s.Name, label)
		}
	}
	for label, code := range e.CanonicalError {
		if code == "" {
			return fmt.Errorf("scenario %s: canonical_error expectation for %s is empty", s.Name, label)
		}
	}

	return nil
}
