package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a seeded in-memory database,
// a statement set, and a flow of statement executions whose observable
// behavior (row counts, cache hits) is recorded as a trace.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Statements is the path to the statement-set document, relative to
	// the scenario file location.
	Statements string `yaml:"statements"`

	// Schema contains DDL applied before the flow runs.
	Schema []string `yaml:"schema"`

	// Seed contains DML applied after the schema, outside the flow's
	// transaction.
	Seed []string `yaml:"seed,omitempty"`

	// Flow is the sequence of statement executions.
	Flow []FlowStep `yaml:"flow"`
}

// FlowStep executes one declared statement.
type FlowStep struct {
	// Run is the statement ID to execute.
	Run string `yaml:"run"`

	// Args contains the parameter values keyed by property name.
	Args map[string]any `yaml:"args,omitempty"`

	// Offset and Limit bound the returned rows for select statements.
	// A zero Limit means no limit.
	Offset int `yaml:"offset,omitempty"`
	Limit  int `yaml:"limit,omitempty"`

	// ExpectRows, when set, asserts the number of rows a select returns.
	// Mismatches are recorded as failures, not errors.
	ExpectRows *int `yaml:"expect_rows,omitempty"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.Statements == "" {
		return nil, fmt.Errorf("scenario %s: statements path is required", path)
	}
	if len(s.Flow) == 0 {
		return nil, fmt.Errorf("scenario %s: flow must have at least one step", path)
	}
	return &s, nil
}
