package tuner

import (
	"fmt"
	"math"
	"strings"
)

// SampleSpace is the flattened form of a Domain that sampling works on.
//
// For Set domains, Values holds every candidate encoded as a string, in
// declaration order. For Range domains, Min and Max hold the effective
// bounds (open bounds already shifted by one Step). Unbounded domains yield
// an empty space that must never be sampled.
type SampleSpace struct {
	// Type is the value type of the domain.
	Type ValueType

	// Quantity is the quantity kind of the domain.
	Quantity Quantity

	// Values is the encoded enumeration of a Set domain.
	Values []string

	// Min is the effective lower bound of a Range domain.
	Min Value

	// Max is the effective upper bound of a Range domain.
	Max Value

	// Step is the declared step of a Range domain.
	Step Value
}

// Sampleable reports whether values can be drawn from the space.
func (s SampleSpace) Sampleable() bool {
	switch s.Quantity {
	case Set:
		return len(s.Values) > 0
	case Range:
		return true
	default:
		return false
	}
}

// Validate checks the invariants of the domain: a Set is non-empty and
// every candidate has the declared type; a Range is numeric, has a
// non-negative step and lower <= upper, both before and after shifting open
// bounds.
func (d Domain) Validate() error {
	switch d.Type {
	case Int64, Double, String:
	default:
		return fmt.Errorf("%w: unknown value type %d", ErrInvalidDomain, int(d.Type))
	}

	switch d.Category {
	case Categorical, Ordinal, Interval, Ratio:
	default:
		return fmt.Errorf("%w: unknown category %d", ErrInvalidDomain, int(d.Category))
	}

	switch d.Quantity {
	case Set:
		if len(d.Candidates.Values) == 0 {
			return fmt.Errorf("%w: empty candidate set", ErrInvalidDomain)
		}

		for i, v := range d.Candidates.Values {
			if v.Type() != d.Type {
				return fmt.Errorf("%w: candidate %d is %s, want %s", ErrInvalidDomain, i, v.Type(), d.Type)
			}
		}

		return nil
	case Range:
		_, err := effectiveBounds(d)

		return err
	case Unbounded:
		return nil
	default:
		return fmt.Errorf("%w: unknown quantity %d", ErrInvalidDomain, int(d.Quantity))
	}
}

// BuildSampleSpace flattens d into the form used for sampling.
func BuildSampleSpace(d Domain) (SampleSpace, error) {
	if err := d.Validate(); err != nil {
		return SampleSpace{}, err
	}

	space := SampleSpace{Type: d.Type, Quantity: d.Quantity}

	switch d.Quantity {
	case Set:
		space.Values = make([]string, len(d.Candidates.Values))
		for i, v := range d.Candidates.Values {
			space.Values[i] = v.encode()
		}
	case Range:
		bounds, err := effectiveBounds(d)
		if err != nil {
			return SampleSpace{}, err
		}

		space.Min = bounds[0]
		space.Max = bounds[1]
		space.Step = d.Candidates.Step
	}

	return space, nil
}

// effectiveBounds returns [min, max] of a Range domain after applying the
// open/closed flags:
//
//	[ includes the endpoint, ( excludes it by moving one step inwards.
func effectiveBounds(d Domain) ([2]Value, error) {
	c := d.Candidates

	for i, v := range []Value{c.Lower, c.Upper, c.Step} {
		if v.Type() != d.Type {
			name := [...]string{"lower", "upper", "step"}[i]

			return [2]Value{}, fmt.Errorf("%w: range %s is %s, want %s", ErrInvalidDomain, name, v.Type(), d.Type)
		}
	}

	switch d.Type {
	case Int64:
		lower, _ := c.Lower.Int64()
		upper, _ := c.Upper.Int64()
		step, _ := c.Step.Int64()

		if step < 0 {
			return [2]Value{}, fmt.Errorf("%w: negative step %d", ErrInvalidDomain, step)
		}

		if lower > upper {
			return [2]Value{}, fmt.Errorf("%w: lower %d > upper %d", ErrInvalidDomain, lower, upper)
		}

		if c.OpenLower {
			if lower > math.MaxInt64-step {
				return [2]Value{}, fmt.Errorf("%w: open lower %d + step %d overflows", ErrInvalidDomain, lower, step)
			}

			lower += step
		}

		if c.OpenUpper {
			if upper < math.MinInt64+step {
				return [2]Value{}, fmt.Errorf("%w: open upper %d - step %d overflows", ErrInvalidDomain, upper, step)
			}

			upper -= step
		}

		if lower > upper {
			return [2]Value{}, fmt.Errorf("%w: open bounds leave no values in range", ErrInvalidDomain)
		}

		return [2]Value{IntValue(lower), IntValue(upper)}, nil
	case Double:
		lower, _ := c.Lower.Float64()
		upper, _ := c.Upper.Float64()
		step, _ := c.Step.Float64()

		if !(step >= 0) {
			return [2]Value{}, fmt.Errorf("%w: invalid step %g", ErrInvalidDomain, step)
		}

		if !(lower <= upper) {
			return [2]Value{}, fmt.Errorf("%w: lower %g > upper %g", ErrInvalidDomain, lower, upper)
		}

		if c.OpenLower {
			lower += step
		}

		if c.OpenUpper {
			upper -= step
		}

		if lower > upper {
			return [2]Value{}, fmt.Errorf("%w: open bounds leave no values in range", ErrInvalidDomain)
		}

		return [2]Value{DoubleValue(lower), DoubleValue(upper)}, nil
	default:
		return [2]Value{}, fmt.Errorf("%w: %s values cannot form a range", ErrInvalidDomain, d.Type)
	}
}

// Describe renders the candidates of d for humans.
func (d Domain) Describe() string {
	switch d.Quantity {
	case Set:
		return joinValues(d.Candidates.Values)
	case Range:
		var sb strings.Builder

		c := d.Candidates
		fmt.Fprintf(&sb, "lower: %s, upper: %s, step: %s", c.Lower, c.Upper, c.Step)
		fmt.Fprintf(&sb, ", open lower: %t, open upper: %t", c.OpenLower, c.OpenUpper)

		return sb.String()
	case Unbounded:
		return "unbounded"
	default:
		return "unknown candidate values"
	}
}
