package tuner

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a tagged variant holding exactly one of an int64, a float64 or a
// bounded string. The arm is fixed by the constructor, and the accessors
// refuse to read any other arm.
//
// The zero Value is an Int64 zero.
type Value struct {
	typ ValueType
	i   int64
	f   float64
	s   string
}

// IntValue returns an Int64 value.
func IntValue(v int64) Value {
	return Value{typ: Int64, i: v}
}

// DoubleValue returns a Double value.
func DoubleValue(v float64) Value {
	return Value{typ: Double, f: v}
}

// StringValue returns a String value, truncated to MaxStringLength bytes.
func StringValue(v string) Value {
	return Value{typ: String, s: truncate(v, MaxStringLength)}
}

// IntValues is a convenience for building Set candidates.
func IntValues(vs ...int64) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = IntValue(v)
	}

	return out
}

// DoubleValues is a convenience for building Set candidates.
func DoubleValues(vs ...float64) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = DoubleValue(v)
	}

	return out
}

// StringValues is a convenience for building Set candidates.
func StringValues(vs ...string) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = StringValue(v)
	}

	return out
}

// ZeroValue returns the zero value of t.
func ZeroValue(t ValueType) Value {
	return Value{typ: t}
}

// ParseValue parses s as a value of type t.
func ParseValue(t ValueType, s string) (Value, error) {
	switch t {
	case Int64:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: parse int64 %q: %w", ErrInvalidDomain, s, err)
		}

		return IntValue(v), nil
	case Double:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: parse double %q: %w", ErrInvalidDomain, s, err)
		}

		return DoubleValue(v), nil
	case String:
		return StringValue(s), nil
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrInvalidDomain, t)
	}
}

// Type returns the arm held by v.
func (v Value) Type() ValueType {
	return v.typ
}

// Int64 returns the integer arm. ok is false if v is not an Int64.
func (v Value) Int64() (int64, bool) {
	return v.i, v.typ == Int64
}

// Float64 returns the double arm. ok is false if v is not a Double.
func (v Value) Float64() (float64, bool) {
	return v.f, v.typ == Double
}

// Text returns the string arm. ok is false if v is not a String.
func (v Value) Text() (string, bool) {
	return v.s, v.typ == String
}

// String formats v per its type: an integer, a fixed-point double, or the
// raw string.
func (v Value) String() string {
	switch v.typ {
	case Int64:
		return strconv.FormatInt(v.i, 10)
	case Double:
		return strconv.FormatFloat(v.f, 'f', 6, 64)
	case String:
		return v.s
	default:
		return ""
	}
}

// encode is the sample space encoding: exact round-trip for every arm.
func (v Value) encode() string {
	if v.typ == Double {
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}

	return v.String()
}
