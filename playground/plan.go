package playground

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thalesfsp/tuner"
)

// Plan is a declarative list of variables for a host to declare, loaded
// from YAML:
//
//	variables:
//	  - name: "Chebyshev: Degree"
//	    kind: output
//	    valueType: int64
//	    category: ordinal
//	    quantity: set
//	    values: [1, 2, 3, 4, 5, 6]
//	    target: 5
//	    weight: 750
//	  - name: "Damping Factor"
//	    kind: output
//	    valueType: double
//	    category: interval
//	    quantity: range
//	    lower: 0.8
//	    upper: 1.2
//	    step: 0.01
//	    target: 0.9
//	    weight: 100
//
// Target and Weight describe a synthetic cost for demonstration hosts: the
// farther a sampled value from Target, the longer the simulated work.
type Plan struct {
	Variables []PlanVariable `yaml:"variables"`
}

// PlanVariable is one declaration of a Plan.
type PlanVariable struct {
	Name      string          `yaml:"name"`
	Kind      string          `yaml:"kind"`
	ValueType tuner.ValueType `yaml:"valueType"`
	Category  tuner.Category  `yaml:"category"`
	Quantity  tuner.Quantity  `yaml:"quantity"`
	Values    []scalar        `yaml:"values,omitempty"`
	Lower     scalar          `yaml:"lower,omitempty"`
	Upper     scalar          `yaml:"upper,omitempty"`
	Step      scalar          `yaml:"step,omitempty"`
	OpenLower bool            `yaml:"openLower,omitempty"`
	OpenUpper bool            `yaml:"openUpper,omitempty"`
	Target    *float64        `yaml:"target,omitempty"`
	Weight    float64         `yaml:"weight,omitempty"`
}

// DeclaredVariable is a plan variable after declaration.
type DeclaredVariable struct {
	PlanVariable

	// ID is the id the session allocated.
	ID uint64
}

// scalar keeps the raw text of a YAML scalar; it is parsed once the value
// type of the variable is known.
type scalar string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}

	*s = scalar(node.Value)

	return nil
}

// LoadPlan reads and parses a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}

	plan, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", path, err)
	}

	return plan, nil
}

// ParsePlan parses and validates a YAML plan.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}

	if len(plan.Variables) == 0 {
		return nil, errors.New("plan declares no variables")
	}

	for i, v := range plan.Variables {
		if v.Name == "" {
			return nil, fmt.Errorf("variable %d: name cannot be empty", i)
		}

		switch v.Kind {
		case "output", "input":
		default:
			return nil, fmt.Errorf("variable %q: kind must be output or input, got %q", v.Name, v.Kind)
		}

		domain, err := v.Domain()
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", v.Name, err)
		}

		if err := domain.Validate(); err != nil {
			return nil, fmt.Errorf("variable %q: %w", v.Name, err)
		}
	}

	return &plan, nil
}

// Domain builds the candidate domain of v.
func (v PlanVariable) Domain() (tuner.Domain, error) {
	domain := tuner.Domain{Type: v.ValueType, Category: v.Category, Quantity: v.Quantity}

	switch v.Quantity {
	case tuner.Set:
		for _, raw := range v.Values {
			value, err := tuner.ParseValue(v.ValueType, string(raw))
			if err != nil {
				return tuner.Domain{}, err
			}

			domain.Candidates.Values = append(domain.Candidates.Values, value)
		}
	case tuner.Range:
		bounds := make([]tuner.Value, 3)

		for i, raw := range []scalar{v.Lower, v.Upper, v.Step} {
			value, err := tuner.ParseValue(v.ValueType, string(raw))
			if err != nil {
				return tuner.Domain{}, err
			}

			bounds[i] = value
		}

		domain.Candidates.Lower = bounds[0]
		domain.Candidates.Upper = bounds[1]
		domain.Candidates.Step = bounds[2]
		domain.Candidates.OpenLower = v.OpenLower
		domain.Candidates.OpenUpper = v.OpenUpper
	}

	return domain, nil
}

// Declare declares every plan variable through s, in plan order.
func (p *Plan) Declare(s *Session) ([]DeclaredVariable, error) {
	declared := make([]DeclaredVariable, 0, len(p.Variables))

	for _, v := range p.Variables {
		domain, err := v.Domain()
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", v.Name, err)
		}

		var id uint64
		if v.Kind == "input" {
			id, err = s.DeclareInput(v.Name, domain)
		} else {
			id, err = s.DeclareOutput(v.Name, domain)
		}

		if err != nil {
			return nil, err
		}

		declared = append(declared, DeclaredVariable{PlanVariable: v, ID: id})
	}

	return declared, nil
}

// Cost returns the synthetic cost of value for v: Weight microseconds per
// unit of distance from Target. Variables without a target, or non-numeric
// values, cost nothing.
func (v PlanVariable) Cost(value tuner.Value) time.Duration {
	if v.Target == nil {
		return 0
	}

	var x float64

	if n, ok := value.Int64(); ok {
		x = float64(n)
	} else if f, ok := value.Float64(); ok {
		x = f
	} else {
		return 0
	}

	return time.Duration(math.Abs(x-*v.Target) * v.Weight * float64(time.Microsecond))
}
