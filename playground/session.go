package playground

import (
	"fmt"
	"io"

	"github.com/thalesfsp/tuner"
)

// Scheduler choices offered by DeclareOutputSchedules.
const (
	StaticSchedule int64 = iota
	DynamicSchedule
)

// ScheduleNames maps scheduler choices to their display names.
var ScheduleNames = map[int64]string{
	StaticSchedule:  "static",
	DynamicSchedule: "dynamic",
}

// fastestImplementationInput is the name of the input variable describing
// which implementation FastestOf picked.
const fastestImplementationInput = "fastest_implementation_of"

// Session drives a tuner.Tool on behalf of a host: it allocates variable and
// context ids and wraps the declaration boilerplate.
//
// A Session is not safe for concurrent use.
type Session struct {
	tool tuner.Tool
	out  io.Writer

	nextVariable uint64
	nextContext  uint64

	tuners       map[string]uint64
	fastestInput uint64
	flipper      int
}

// NewSession returns a session declaring on tool. Human-readable option
// listings are written to out.
func NewSession(tool tuner.Tool, out io.Writer) *Session {
	if out == nil {
		out = io.Discard
	}

	return &Session{
		tool:   tool,
		out:    out,
		tuners: make(map[string]uint64),
	}
}

// Tool returns the underlying tool.
func (s *Session) Tool() tuner.Tool { return s.tool }

// NewContextID returns a fresh context id.
func (s *Session) NewContextID() uint64 {
	s.nextContext++

	return s.nextContext
}

// DeclareOutput declares a tunable variable and returns its id.
func (s *Session) DeclareOutput(name string, domain tuner.Domain) (uint64, error) {
	s.nextVariable++
	id := s.nextVariable

	if err := s.tool.DeclareOutputVariable(name, id, domain); err != nil {
		return 0, fmt.Errorf("declare output %q: %w", name, err)
	}

	return id, nil
}

// DeclareInput declares a descriptive variable and returns its id.
func (s *Session) DeclareInput(name string, domain tuner.Domain) (uint64, error) {
	s.nextVariable++
	id := s.nextVariable

	if err := s.tool.DeclareInputVariable(name, id, domain); err != nil {
		return 0, fmt.Errorf("declare input %q: %w", name, err)
	}

	return id, nil
}

// DeclareOutputRange declares an ordinal set enumerating lower..upper by
// step, and prints the options.
func DeclareOutputRange[T Number](s *Session, name string, lower, upper, step T) (uint64, error) {
	candidates := MakeRange(lower, upper, step)
	ReportOptions(s.out, name, candidates)

	values, typ := ToValues(candidates)

	return s.DeclareOutput(name, tuner.Domain{
		Type:       typ,
		Category:   tuner.Ordinal,
		Quantity:   tuner.Set,
		Candidates: tuner.Candidates{Values: values},
	})
}

// DeclareOutputContinuous declares a continuous double range and prints the
// options.
func (s *Session) DeclareOutputContinuous(name string, lower, upper, step float64, openLower, openUpper bool) (uint64, error) {
	ReportContinuous(s.out, name, lower, upper, openLower, openUpper)

	return s.DeclareOutput(name, tuner.Domain{
		Type:     tuner.Double,
		Category: tuner.Interval,
		Quantity: tuner.Range,
		Candidates: tuner.Candidates{
			Lower:     tuner.DoubleValue(lower),
			Upper:     tuner.DoubleValue(upper),
			Step:      tuner.DoubleValue(step),
			OpenLower: openLower,
			OpenUpper: openUpper,
		},
	})
}

// DeclareOutputSchedules declares a categorical choice between the static
// and dynamic schedulers.
func (s *Session) DeclareOutputSchedules(name string) (uint64, error) {
	return s.DeclareOutput(name, tuner.Domain{
		Type:       tuner.Int64,
		Category:   tuner.Categorical,
		Quantity:   tuner.Set,
		Candidates: tuner.Candidates{Values: tuner.IntValues(StaticSchedule, DynamicSchedule)},
	})
}

// DeclareOutputTileSize declares an ordinal choice among the factors of
// limit.
func (s *Session) DeclareOutputTileSize(name string, limit int64) (uint64, error) {
	candidates := FactorsOf(limit)
	ReportOptions(s.out, name, candidates)

	return s.DeclareOutput(name, tuner.Domain{
		Type:       tuner.Int64,
		Category:   tuner.Ordinal,
		Quantity:   tuner.Set,
		Candidates: tuner.Candidates{Values: tuner.IntValues(candidates...)},
	})
}

// DeclareOutputThreadCount declares a categorical choice among the even
// thread counts up to limit.
func (s *Session) DeclareOutputThreadCount(name string, limit int64) (uint64, error) {
	return s.DeclareOutput(name, tuner.Domain{
		Type:       tuner.Int64,
		Category:   tuner.Categorical,
		Quantity:   tuner.Set,
		Candidates: tuner.Candidates{Values: tuner.IntValues(MakeRange[int64](2, limit, 2)...)},
	})
}

// DeclareInputViewSize declares an input describing a problem size.
func (s *Session) DeclareInputViewSize(name string, size int64) (uint64, error) {
	return s.DeclareInput(name, tuner.Domain{
		Type:       tuner.Int64,
		Category:   tuner.Ordinal,
		Quantity:   tuner.Set,
		Candidates: tuner.Candidates{Values: tuner.IntValues(size)},
	})
}

// CategoricalTuner declares a categorical choice among 0..options-1.
func (s *Session) CategoricalTuner(name string, options int) (uint64, error) {
	return s.DeclareOutput(name, tuner.Domain{
		Type:       tuner.Int64,
		Category:   tuner.Categorical,
		Quantity:   tuner.Set,
		Candidates: tuner.Candidates{Values: tuner.IntValues(MakeRange[int64](0, int64(options-1), 1)...)},
	})
}

// Run brackets work with a context: begin, request values for outputs
// (filled in place), run work, end.
func (s *Session) Run(inputs, outputs []tuner.VariableValue, work func()) error {
	id := s.NewContextID()
	s.tool.BeginContext(id)

	if err := s.tool.RequestValues(id, inputs, outputs); err != nil {
		_ = s.tool.EndContext(id)

		return err
	}

	work()

	return s.tool.EndContext(id)
}

// FastestOf picks one of implementations through a categorical tuner named
// label, runs it inside a context, and lets the engine time it. When the
// tool hands back no usable value, implementations are alternated
// round-robin.
func (s *Session) FastestOf(label string, implementations ...func()) error {
	if len(implementations) == 0 {
		return fmt.Errorf("fastest of %q: no implementations", label)
	}

	varID, ok := s.tuners[label]
	if !ok {
		id, err := s.CategoricalTuner(label, len(implementations))
		if err != nil {
			return err
		}

		s.tuners[label] = id
		varID = id
	}

	if s.fastestInput == 0 {
		id, err := s.DeclareInput(fastestImplementationInput, tuner.Domain{
			Type:     tuner.Int64,
			Category: tuner.Categorical,
			Quantity: tuner.Unbounded,
		})
		if err != nil {
			return err
		}

		s.fastestInput = id
	}

	inputs := []tuner.VariableValue{{ID: s.fastestInput, Value: tuner.IntValue(0)}}
	outputs := []tuner.VariableValue{{ID: varID, Value: tuner.IntValue(-1)}}

	return s.Run(inputs, outputs, func() {
		pick, ok := outputs[0].Value.Int64()
		if !ok || pick < 0 || pick >= int64(len(implementations)) {
			pick = int64(s.flipper)
			s.flipper = (s.flipper + 1) % len(implementations)
		}

		implementations[pick]()
	})
}
