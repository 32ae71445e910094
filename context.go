package tuner

import (
	"fmt"
	"time"
)

// ContextState is the lifecycle state of a Context.
type ContextState int

const (
	// Open is the state after BeginContext.
	Open ContextState = iota

	// Timing is the state after RequestValues: variables are bound and the
	// timer runs.
	Timing

	// Closed is the state after EndContext.
	Closed
)

// String implements fmt.Stringer.
func (s ContextState) String() string {
	switch s {
	case Open:
		return "open"
	case Timing:
		return "timing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Context is a scoped timer bound to a set of input and output variable ids.
// Its elapsed time becomes the score of every bound output variable.
type Context struct {
	id        uint64
	state     ContextState
	inputIDs  []uint64
	outputIDs []uint64
	outputs   []*Variable
	sampled   map[string]Value
	start     time.Time
}

func newContext(id uint64) *Context {
	return &Context{id: id, state: Open}
}

// ID returns the caller-supplied id.
func (c *Context) ID() uint64 { return c.id }

// State returns the lifecycle state.
func (c *Context) State() ContextState { return c.state }

// InputIDs returns the ids of the variables describing the context.
func (c *Context) InputIDs() []uint64 { return c.inputIDs }

// OutputIDs returns the ids of the variables tuned in the context.
func (c *Context) OutputIDs() []uint64 { return c.outputIDs }

// bind records the input ids, samples every output variable into its slot,
// and starts the timer. outputs[i] is the variable slots[i] refers to.
func (c *Context) bind(inputs []VariableValue, outputs []*Variable, slots []VariableValue, src Source, now func() time.Time) error {
	if c.state != Open {
		return fmt.Errorf("%w: context %d is %s, want %s", ErrInvalidState, c.id, c.state, Open)
	}

	for _, in := range inputs {
		c.inputIDs = append(c.inputIDs, in.ID)
	}

	c.sampled = make(map[string]Value, len(outputs))

	for i, v := range outputs {
		value, err := v.Sample(src)
		if err != nil {
			return fmt.Errorf("context %d: %w", c.id, err)
		}

		slots[i].Value = value
		c.outputIDs = append(c.outputIDs, v.ID())
		c.outputs = append(c.outputs, v)
		c.sampled[v.Name()] = value
	}

	c.state = Timing
	c.start = now()

	return nil
}

// finish stops the timer and scores the variables sampled by bind. A
// variable whose id was redeclared meanwhile is still the one scored; its
// replacement never is. It returns the elapsed duration and the names of
// the variables whose best value improved.
func (c *Context) finish(now func() time.Time) (time.Duration, []string) {
	if c.state != Timing {
		c.state = Closed

		return 0, nil
	}

	elapsed := now().Sub(c.start)
	c.state = Closed

	var improved []string

	for _, v := range c.outputs {
		if v.RecordScore(elapsed) {
			improved = append(improved, v.Name())
		}
	}

	return elapsed, improved
}
