package tuner

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

//////
// Const, vars, types.
//////

// Source is the randomness a Variable samples from. *rand.Rand satisfies it.
type Source interface {
	// Intn returns a uniform int in [0, n).
	Intn(n int) int

	// Int63n returns a uniform int64 in [0, n).
	Int63n(n int64) int64

	// Uint64 returns a uniform uint64.
	Uint64() uint64

	// Float64 returns a uniform float64 in [0, 1).
	Float64() float64
}

// Variable is a named entity the engine knows about: either an output
// (tunable, sampled and reported) or an input (descriptive, bookkeeping
// only).
//
// Fields:
// - lastValue: the most recently sampled value
// - bestValue, bestScore: the value sampled for the shortest context seen
// - bins: observations of unbounded variables
//
// A Variable is not safe for concurrent use; the Registry serialises every
// access to the variables it owns.
type Variable struct {
	id     uint64
	name   string
	domain Domain
	space  SampleSpace
	output bool

	lastValue Value
	bestValue Value
	bestScore time.Duration

	bins Binner
}

//////
// Factory.
//////

// NewVariable creates a variable and derives its sample space. Output
// variables must have a sampleable domain.
func NewVariable(id uint64, name string, domain Domain, output bool) (*Variable, error) {
	space, err := BuildSampleSpace(domain)
	if err != nil {
		return nil, fmt.Errorf("variable %q (%d): %w", name, id, err)
	}

	if output && !space.Sampleable() {
		return nil, fmt.Errorf("%w: output variable %q (%d) has %s candidates", ErrInvalidDomain, name, id, domain.Quantity)
	}

	return &Variable{
		id:        id,
		name:      name,
		domain:    domain,
		space:     space,
		output:    output,
		lastValue: ZeroValue(domain.Type),
		bestValue: ZeroValue(domain.Type),
		bestScore: time.Duration(math.MaxInt64),
	}, nil
}

//////
// Methods.
//////

// ID returns the caller-supplied id.
func (v *Variable) ID() uint64 { return v.id }

// Name returns the display name.
func (v *Variable) Name() string { return v.name }

// IsOutput reports whether v is a tunable variable.
func (v *Variable) IsOutput() bool { return v.output }

// Domain returns the declared candidate domain.
func (v *Variable) Domain() Domain { return v.domain }

// SampleSpace returns the space derived at declaration.
func (v *Variable) SampleSpace() SampleSpace { return v.space }

// Last returns the most recently sampled value.
func (v *Variable) Last() Value { return v.lastValue }

// Best returns the best value and its score. ok is false until a score has
// been recorded.
func (v *Variable) Best() (value Value, score time.Duration, ok bool) {
	return v.bestValue, v.bestScore, v.bestScore != time.Duration(math.MaxInt64)
}

// Sample draws a new value uniformly at random from the domain and stores
// it as the last value. Draws are independent of each other.
//
// - Set: uniform index over the enumeration.
// - Int64 range: uniform integer in [min, max], both inclusive.
// - Double range: min + u*(max-min), u in [0, 1). Step is not a grid.
func (v *Variable) Sample(src Source) (Value, error) {
	var (
		value Value
		err   error
	)

	switch v.space.Quantity {
	case Set:
		if len(v.space.Values) == 0 {
			return Value{}, fmt.Errorf("%w: variable %q has no candidates", ErrInvalidDomain, v.name)
		}

		value, err = ParseValue(v.space.Type, v.space.Values[src.Intn(len(v.space.Values))])
		if err != nil {
			return Value{}, err
		}
	case Range:
		value = v.sampleRange(src)
	default:
		return Value{}, fmt.Errorf("%w: cannot sample %s variable %q", ErrInvalidDomain, v.space.Quantity, v.name)
	}

	v.lastValue = value

	return value, nil
}

func (v *Variable) sampleRange(src Source) Value {
	if v.space.Type == Double {
		lo, _ := v.space.Min.Float64()
		hi, _ := v.space.Max.Float64()

		return DoubleValue(lo + src.Float64()*(hi-lo))
	}

	lo, _ := v.space.Min.Int64()
	hi, _ := v.space.Max.Int64()

	// Wrapping subtraction gives the exact width as uint64.
	span := uint64(hi-lo) + 1

	switch {
	case span == 0:
		return IntValue(int64(src.Uint64()))
	case span > math.MaxInt64:
		for {
			if n := int64(src.Uint64()); n >= lo && n <= hi {
				return IntValue(n)
			}
		}
	default:
		return IntValue(lo + src.Int63n(int64(span)))
	}
}

// RecordScore feeds the duration of a context v was bound to. If it beats
// the best score, the last sampled value becomes the best value. The best
// score never increases. It reports whether the best value changed.
func (v *Variable) RecordScore(score time.Duration) bool {
	if score >= v.bestScore {
		return false
	}

	v.bestScore = score
	v.bestValue = v.lastValue

	return true
}

// ReportBest writes the best value line of an output variable to w. Input
// variables produce nothing.
func (v *Variable) ReportBest(w io.Writer) error {
	if !v.output {
		return nil
	}

	_, err := fmt.Fprintf(w, "Best random value for variable %s: %s\n", v.name, v.bestValue)

	return err
}

// Classify assigns an observation of an unbounded variable to a bin and
// returns the bin name.
func (v *Variable) Classify(value float64) string {
	return v.bins.Classify(value)
}

// Bins returns the observation bins in creation order.
func (v *Variable) Bins() []Bin {
	return v.bins.Bins()
}

// Describe dumps the variable for diagnostics.
func (v *Variable) Describe() string {
	var sb strings.Builder

	sb.WriteString("  name: " + v.name + "\n")
	sb.WriteString("  id: " + strconv.FormatUint(v.id, 10) + "\n")
	sb.WriteString("  output: " + strconv.FormatBool(v.output) + "\n")
	sb.WriteString("  type: " + v.domain.Type.String() + "\n")
	sb.WriteString("  category: " + v.domain.Category.String() + "\n")
	sb.WriteString("  quantity: " + v.domain.Quantity.String() + "\n")
	sb.WriteString("  candidates: " + v.domain.Describe() + "\n")

	if v.domain.Quantity == Unbounded {
		bins := v.bins.Bins()

		sb.WriteString("  num_bins: " + strconv.Itoa(len(bins)) + "\n")

		for _, b := range bins {
			fmt.Fprintf(&sb, "  %s: min %f, mean %f, max %f, count %d\n", b.Name, b.Min, b.Mean, b.Max, b.Count)
		}
	}

	return sb.String()
}
