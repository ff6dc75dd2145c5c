package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ordinal/internal/order"
)

// Scenario defines an ordering scenario: initial parents, a flow of
// operations, and assertions on the final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup creates parents and their children in order before the flow.
	// Setup is not traced and must succeed.
	Setup []ParentSetup `yaml:"setup,omitempty"`

	// Flow is the sequence of operations under test.
	Flow []Step `yaml:"flow"`

	// Assertions validate the state after the flow.
	Assertions []Assertion `yaml:"assertions"`
}

// ParentSetup seeds one parent.
type ParentSetup struct {
	Parent   string   `yaml:"parent"`
	Children []string `yaml:"children,omitempty"`
}

// Step is one operation in the flow.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	Parent string `yaml:"parent,omitempty"`
	Child  string `yaml:"child,omitempty"`

	// Target is the requested index for move.
	Target *int `yaml:"target,omitempty"`

	// Order is the full order for set_order.
	Order []string `yaml:"order,omitempty"`

	// Expect checks the step's outcome. If nil, the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes a step's expected outcome. At most one of Order and
// Error may be set.
type Expect struct {
	// Order is the affected parent's order after the step.
	Order []string `yaml:"order,omitempty"`

	// Error is the expected error code: NOT_FOUND, INVARIANT_VIOLATION or
	// CONFLICT.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	Parent string `yaml:"parent,omitempty"`
	Child  string `yaml:"child,omitempty"`

	// Order is the expected order (final_order).
	Order []string `yaml:"order,omitempty"`

	// Position is the expected position (position).
	Position *int `yaml:"position,omitempty"`

	// Next and Previous are the expected neighbors (neighbors).
	// An empty string means no neighbor on that side.
	Next     *string `yaml:"next,omitempty"`
	Previous *string `yaml:"previous,omitempty"`

	// TraceOp and Count configure trace_count.
	TraceOp string `yaml:"op,omitempty"`
	Count   int    `yaml:"count,omitempty"`
}

// Operation names.
const (
	OpCreateParent = "create_parent"
	OpDeleteParent = "delete_parent"
	OpAppend       = "append"
	OpRemove       = "remove"
	OpMove         = "move"
	OpSetOrder     = "set_order"
)

// Assertion type constants.
const (
	AssertFinalOrder = "final_order"
	AssertPosition   = "position"
	AssertNeighbors  = "neighbors"
	AssertAbsent     = "absent"
	AssertIntegrity  = "integrity"
	AssertTraceCount = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML and validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, p := range s.Setup {
		if p.Parent == "" {
			return fmt.Errorf("setup[%d]: parent is required", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s *Step) error {
	need := func(field, value string) error {
		if value == "" {
			return fmt.Errorf("flow[%d]: %s is required for %s", index, field, s.Op)
		}
		return nil
	}

	var err error
	switch s.Op {
	case OpCreateParent, OpDeleteParent:
		err = need("parent", s.Parent)
	case OpAppend:
		if err = need("parent", s.Parent); err == nil {
			err = need("child", s.Child)
		}
	case OpRemove:
		err = need("child", s.Child)
	case OpMove:
		if err = need("child", s.Child); err == nil && s.Target == nil {
			err = fmt.Errorf("flow[%d]: target is required for move", index)
		}
	case OpSetOrder:
		err = need("parent", s.Parent)
	case "":
		return fmt.Errorf("flow[%d]: op is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown op %q", index, s.Op)
	}
	if err != nil {
		return err
	}

	if s.Expect != nil {
		if s.Expect.Order != nil && s.Expect.Error != "" {
			return fmt.Errorf("flow[%d].expect: order and error are mutually exclusive", index)
		}
		switch order.ErrorCode(s.Expect.Error) {
		case "", order.ErrCodeNotFound, order.ErrCodeInvariantViolation, order.ErrCodeConflict:
		default:
			return fmt.Errorf("flow[%d].expect: unknown error code %q", index, s.Expect.Error)
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertFinalOrder:
		if a.Parent == "" {
			return fmt.Errorf("assertions[%d]: parent is required for final_order", index)
		}
	case AssertPosition:
		if a.Child == "" || a.Position == nil {
			return fmt.Errorf("assertions[%d]: child and position are required for position", index)
		}
	case AssertNeighbors:
		if a.Child == "" {
			return fmt.Errorf("assertions[%d]: child is required for neighbors", index)
		}
		if a.Next == nil && a.Previous == nil {
			return fmt.Errorf("assertions[%d]: next or previous is required for neighbors", index)
		}
	case AssertAbsent:
		if (a.Parent == "") == (a.Child == "") {
			return fmt.Errorf("assertions[%d]: exactly one of parent or child is required for absent", index)
		}
	case AssertIntegrity:
	case AssertTraceCount:
		if a.TraceOp == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
