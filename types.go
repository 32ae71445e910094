package tuner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

//////
// Const, vars, types.
//////

// MaxStringLength is the maximum length, in bytes, of a string candidate or
// a string value handed back to the host. Longer strings are truncated.
const MaxStringLength = 64

var (
	// ErrUnknownID indicates a callback referenced a variable or context id
	// that was never declared, or that was already retired.
	ErrUnknownID = errors.New("tuner: unknown id")

	// ErrInvalidDomain indicates a candidate domain is malformed, or that an
	// operation needed candidates the domain cannot provide (e.g. sampling an
	// unbounded domain).
	ErrInvalidDomain = errors.New("tuner: invalid domain")

	// ErrInvalidState indicates a context transition that its current state
	// does not allow.
	ErrInvalidState = errors.New("tuner: invalid context state")
)

// ValueType is the concrete type of the values a variable can take.
type ValueType int

const (
	// Int64 values are 64-bit signed integers.
	Int64 ValueType = iota

	// Double values are double-precision floats.
	Double

	// String values are strings bounded by MaxStringLength.
	String
)

// String implements fmt.Stringer.
func (t ValueType) String() string {
	switch t {
	case Int64:
		return "int64"
	case Double:
		return "double"
	case String:
		return "string"
	default:
		return "unknown type"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ValueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ValueType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "int64", "int":
		*t = Int64
	case "double", "float64", "float":
		*t = Double
	case "string":
		*t = String
	default:
		return fmt.Errorf("%w: unknown value type %q", ErrInvalidDomain, text)
	}

	return nil
}

// Category is the statistical category of a variable. It is independent of
// how the candidates are enumerated.
type Category int

const (
	// Categorical values are unordered and discrete.
	Categorical Category = iota

	// Ordinal values are ordered and discrete.
	Ordinal

	// Interval values are continuous, without a meaningful zero.
	Interval

	// Ratio values are continuous, with a meaningful zero.
	Ratio
)

// String implements fmt.Stringer.
func (c Category) String() string {
	switch c {
	case Categorical:
		return "categorical"
	case Ordinal:
		return "ordinal"
	case Interval:
		return "interval"
	case Ratio:
		return "ratio"
	default:
		return "unknown category"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "categorical":
		*c = Categorical
	case "ordinal":
		*c = Ordinal
	case "interval":
		*c = Interval
	case "ratio":
		*c = Ratio
	default:
		return fmt.Errorf("%w: unknown category %q", ErrInvalidDomain, text)
	}

	return nil
}

// Quantity describes how the candidates of a domain are enumerated.
type Quantity int

const (
	// Set is an explicit, ordered list of candidates.
	Set Quantity = iota

	// Range is a bounded numeric interval with a step.
	Range

	// Unbounded candidates cannot be enumerated in advance.
	Unbounded
)

// String implements fmt.Stringer.
func (q Quantity) String() string {
	switch q {
	case Set:
		return "set"
	case Range:
		return "range"
	case Unbounded:
		return "unbounded"
	default:
		return "unknown candidate type"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (q Quantity) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quantity) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "set":
		*q = Set
	case "range":
		*q = Range
	case "unbounded":
		*q = Unbounded
	default:
		return fmt.Errorf("%w: unknown quantity %q", ErrInvalidDomain, text)
	}

	return nil
}

// Candidates holds the legal values of a domain. Only the part matching the
// domain's Quantity is meaningful: Values for Set, the bounds for Range,
// nothing for Unbounded.
type Candidates struct {
	// Values is the ordered candidate list of a Set domain.
	Values []Value

	// Lower is the lower bound of a Range domain.
	Lower Value

	// Upper is the upper bound of a Range domain.
	Upper Value

	// Step is the granularity of a Range domain. It only shifts open bounds;
	// it never defines a sampling grid.
	Step Value

	// OpenLower excludes Lower from the range.
	OpenLower bool

	// OpenUpper excludes Upper from the range.
	OpenUpper bool
}

// Domain is the candidate domain of a variable: the legal values it may
// take, and how they are described.
//
// Usage:
//
//	// Integer set {1,2,3,4,5,6}
//	degree := Domain{
//	    Type:       Int64,
//	    Category:   Ordinal,
//	    Quantity:   Set,
//	    Candidates: Candidates{Values: IntValues(1, 2, 3, 4, 5, 6)},
//	}
//
//	// Continuous [0.8, 1.2]
//	damping := Domain{
//	    Type:     Double,
//	    Category: Interval,
//	    Quantity: Range,
//	    Candidates: Candidates{
//	        Lower: DoubleValue(0.8),
//	        Upper: DoubleValue(1.2),
//	        Step:  DoubleValue(0.01),
//	    },
//	}
type Domain struct {
	// Type is the value type of every candidate.
	Type ValueType

	// Category is the statistical category of the variable.
	Category Category

	// Quantity selects which part of Candidates is meaningful.
	Quantity Quantity

	// Candidates holds the legal values.
	Candidates Candidates
}

// VariableValue is one slot exchanged with the host on RequestValues. For
// inputs only ID is read. For outputs the engine overwrites Value in place
// with the sampled value.
type VariableValue struct {
	// ID is the variable id the slot refers to.
	ID uint64

	// Value is the value carried by the slot.
	Value Value
}

// ProgressUpdate represents the state of the search after a context ended.
type ProgressUpdate struct {
	// ContextID is the id of the context that just ended.
	ContextID uint64

	// Elapsed is the measured duration of the context.
	Elapsed time.Duration

	// Sampled holds the values handed out for the context, keyed by variable
	// name.
	Sampled map[string]Value

	// Improved lists the names of the variables whose best value changed.
	Improved []string

	// ContextsClosed is the number of contexts ended so far.
	ContextsClosed int
}
