package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test: a program, a timeline of input
// writes, and the image values expected after each batch of scans.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden
	// trace file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the path to the ladder program file, relative to the
	// scenario file location.
	Program string `yaml:"program"`

	// Steps is the timeline. Each step applies its writes, runs a batch
	// of scans, and checks its expectations against the committed image.
	Steps []Step `yaml:"steps"`
}

// Step is one entry in a scenario timeline.
type Step struct {
	// Writes are applied to the I/O table before the step's scans, the
	// way an external writer (Modbus master, UI) would deposit inputs.
	// Booleans become bits, integers become words.
	Writes map[string]any `yaml:"writes,omitempty"`

	// Scans is the number of scan cycles to run. Defaults to 1.
	// Zero is allowed: a step may just write inputs or just assert.
	Scans *int `yaml:"scans,omitempty"`

	// Expect maps image IDs to the values they must hold after the
	// step's scans. Subset match: IDs not listed are not checked.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// ScanCount returns the step's scan count with the default applied.
func (s *Step) ScanCount() int {
	if s.Scans == nil {
		return 1
	}
	return *s.Scans
}

// LoadScenario reads and parses a scenario YAML file, resolving the
// program path relative to the scenario's directory. Unknown fields
// are rejected - a typo in "expect:" should fail loudly, not silently
// skip the assertion.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if scenario.Program != "" && !filepath.IsAbs(scenario.Program) {
		scenario.Program = filepath.Join(filepath.Dir(path), scenario.Program)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks required fields.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Program == "" {
		return fmt.Errorf("program is required")
	}
	if _, err := os.Stat(s.Program); err != nil {
		return fmt.Errorf("program file not found: %s", s.Program)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.ScanCount() < 0 {
			return fmt.Errorf("steps[%d]: scans must be non-negative", i)
		}
		if len(step.Writes) == 0 && step.ScanCount() == 0 && len(step.Expect) == 0 {
			return fmt.Errorf("steps[%d]: empty step", i)
		}
	}
	return nil
}
