// Package playground is the host-side helper library for describing
// candidate domains and driving a tuner.Tool: id allocation, declaration
// helpers, human-readable option printing, YAML declaration plans and the
// fastest-of convenience.
package playground

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/thalesfsp/tuner"
)

//////
// Const, vars, types.
//////

// Number is the set of numeric types candidates can be built from.
type Number interface {
	constraints.Integer | constraints.Float
}

// Range defines a candidate range for a tunable.
//
// Type Parameter:
//   - T: The numeric type for this range (int64 or float64)
//
// Fields:
// - Min: The minimum (inclusive) value
// - Max: The maximum (inclusive) value
// - Step: The increment between enumerated values
//
// Usage:
//
//	degree := Range[int64]{Min: 1, Max: 6, Step: 1}
//	values := degree.Values() // [1 2 3 4 5 6]
type Range[T Number] struct {
	Min  T
	Max  T
	Step T
}

//////
// Exported functionalities.
//////

// Values enumerates the range.
func (r Range[T]) Values() []T {
	return MakeRange(r.Min, r.Max, r.Step)
}

// MakeRange returns min, min+step, ... up to and including max. Values are
// computed as min + k*step so float ranges do not accumulate error. A
// non-positive step yields nil.
func MakeRange[T Number](min, max, step T) []T {
	if step <= 0 || min > max {
		return nil
	}

	var out []T

	for k := 0; ; k++ {
		v := min + T(k)*step
		if v > max || (k > 0 && v <= min) {
			break
		}

		out = append(out, v)
	}

	return out
}

// FactorsOf returns every positive divisor of size, in ascending order.
// Useful for tile sizes.
func FactorsOf[T constraints.Integer](size T) []T {
	var factors []T

	// i <= size/i keeps i*i from overflowing T.
	for i := T(1); i > 0 && i <= size/i; i++ {
		if size%i != 0 {
			continue
		}

		factors = append(factors, i)

		if pair := size / i; pair != i {
			factors = append(factors, pair)
		}
	}

	slices.Sort(factors)

	return factors
}

// ToValues converts numeric candidates to engine values: integers become
// Int64 values, floats become Double values.
func ToValues[T Number](values []T) ([]tuner.Value, tuner.ValueType) {
	out := make([]tuner.Value, len(values))
	typ := valueTypeOf[T]()

	for i, v := range values {
		if typ == tuner.Double {
			out[i] = tuner.DoubleValue(float64(v))
		} else {
			out[i] = tuner.IntValue(int64(v))
		}
	}

	return out, typ
}

// ReportOptions prints "Options for <name> [a,b,c]".
func ReportOptions[T Number](w io.Writer, name string, candidates []T) {
	values, _ := ToValues(candidates)

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}

	fmt.Fprintf(w, "Options for %s [%s]\n", name, strings.Join(parts, ","))
}

// ReportContinuous prints "Options for <name> [lower,upper]" using ( and )
// for open bounds.
func ReportContinuous(w io.Writer, name string, lower, upper float64, openLower, openUpper bool) {
	left, right := "[", "]"
	if openLower {
		left = "("
	}

	if openUpper {
		right = ")"
	}

	fmt.Fprintf(w, "Options for %s %s%s,%s%s\n", name, left,
		tuner.DoubleValue(lower), tuner.DoubleValue(upper), right)
}

func valueTypeOf[T Number]() tuner.ValueType {
	var zero T

	switch any(zero).(type) {
	case float32, float64:
		return tuner.Double
	default:
		return tuner.Int64
	}
}
