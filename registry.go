package tuner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
)

//////
// Const, vars, types.
//////

// bannerWidth is the width of the report banners.
const bannerWidth = 80

// Registry owns every declared Variable and every open Context, keyed by
// their caller-supplied ids. It implements Tool.
//
// Id reuse is overwrite-and-warn: declaring a variable id, or beginning a
// context id, that is already live replaces the previous entry and logs a
// warning. A replaced context never records a score.
//
// Thread safety:
// - Every method is serialised by one mutex, so a host may call from
//   several goroutines; contexts still score whatever ran between their
//   RequestValues and EndContext, concurrent work included.
type Registry struct {
	mu sync.Mutex

	config Config
	log    *slog.Logger
	rng    *rand.Rand

	variables map[uint64]*Variable
	contexts  map[uint64]*Context
	closed    int
}

//////
// Factory.
//////

// NewRegistry creates an empty registry.
func NewRegistry(config Config) *Registry {
	config = config.withDefaults()

	return &Registry{
		config:    config,
		log:       config.Logger,
		rng:       rand.New(rand.NewSource(config.Seed)),
		variables: make(map[uint64]*Variable),
		contexts:  make(map[uint64]*Context),
	}
}

//////
// Exported functionalities.
//////

// Init opens the process-wide bracket.
func (r *Registry) Init() {
	r.log.Debug("init library", "seed", r.config.Seed)
}

// DeclareOutputVariable registers a tunable variable. Its domain must be a
// non-empty set or a numeric range.
func (r *Registry) DeclareOutputVariable(name string, id uint64, domain Domain) error {
	return r.declare(name, id, domain, true)
}

// DeclareInputVariable registers a descriptive variable. Any valid domain is
// accepted, unbounded included, since inputs are never sampled.
func (r *Registry) DeclareInputVariable(name string, id uint64, domain Domain) error {
	return r.declare(name, id, domain, false)
}

func (r *Registry) declare(name string, id uint64, domain Domain, output bool) error {
	v, err := NewVariable(id, name, domain, output)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.variables[id]; ok {
		r.log.Warn("variable id reused, overwriting", "id", id, "previous", prev.Name(), "name", name)
		r.config.Metrics.overwritten("variable")
	}

	r.variables[id] = v
	r.config.Metrics.declared(output)

	r.log.Debug("declare variable", "id", id, "name", name, "output", output, "variable", v.Describe())

	return nil
}

// BeginContext opens the context id.
func (r *Registry) BeginContext(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.contexts[id]; ok {
		r.log.Warn("context id reused, previous context dropped", "id", id, "state", prev.State().String())
		r.config.Metrics.overwritten("context")
	}

	r.contexts[id] = newContext(id)
	r.config.Metrics.begun()

	r.log.Debug("begin context", "id", id)
}

// RequestValues binds inputs and outputs to the context, samples a value for
// every output slot (overwriting slot.Value), then starts the context timer.
//
// Input ids are recorded verbatim and never looked up. Every output id must
// name a declared output variable; all of them are resolved before anything
// is sampled, so a failed call changes nothing.
func (r *Registry) RequestValues(contextID uint64, inputs, outputs []VariableValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contexts[contextID]
	if !ok {
		return fmt.Errorf("%w: context %d", ErrUnknownID, contextID)
	}

	bound := make([]*Variable, len(outputs))

	for i, slot := range outputs {
		v, ok := r.variables[slot.ID]
		if !ok {
			return fmt.Errorf("%w: variable %d requested in context %d", ErrUnknownID, slot.ID, contextID)
		}

		if !v.IsOutput() {
			return fmt.Errorf("%w: variable %d (%s) is an input and cannot be sampled", ErrInvalidDomain, slot.ID, v.Name())
		}

		bound[i] = v
	}

	if err := c.bind(inputs, bound, outputs, r.rng, r.config.Now); err != nil {
		return err
	}

	r.config.Metrics.sampled(len(bound))

	if r.log.Enabled(context.Background(), slog.LevelDebug) {
		for i, v := range bound {
			r.log.Debug("setting variable", "context", contextID, "name", v.Name(), "value", outputs[i].Value.String())
		}

		r.log.Debug("request values", "context", contextID, "inputs", c.InputIDs(), "outputs", c.OutputIDs())
	}

	return nil
}

// EndContext stops the context timer, records the elapsed time as the score
// of every bound output variable, and retires the context.
func (r *Registry) EndContext(contextID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contexts[contextID]
	if !ok {
		return fmt.Errorf("%w: context %d", ErrUnknownID, contextID)
	}

	timed := c.State() == Timing

	elapsed, improved := c.finish(r.config.Now)

	delete(r.contexts, contextID)
	r.closed++

	r.config.Metrics.ended(elapsed, timed, len(improved))
	r.log.Debug("end context", "id", contextID, "elapsed", elapsed, "improved", improved)

	r.sendProgress(c, elapsed, improved)

	return nil
}

// Finalize writes the best value of every output variable, in ascending id
// order, to Config.Out. If no variable was ever declared, a warning is
// written to Config.Err instead.
func (r *Registry) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Debug("finalize library", "variables", len(r.variables), "open_contexts", len(r.contexts))

	banner := strings.Repeat("*", bannerWidth)

	if len(r.variables) == 0 {
		r.log.Warn("no variables tuned")

		_, err := fmt.Fprintf(r.config.Err,
			"%s\nNo variables tuned! Did the host enable the tuning interface?\n%s\n", banner, banner)

		return err
	}

	if _, err := fmt.Fprintf(r.config.Out, "Best values found:\n%s\n", banner); err != nil {
		return err
	}

	for _, id := range sortedKeys(r.variables) {
		if err := r.variables[id].ReportBest(r.config.Out); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(r.config.Out, banner)

	return err
}

// Variable returns the variable declared with id.
func (r *Registry) Variable(id uint64) (*Variable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.variables[id]

	return v, ok
}

// Variables returns every declared variable in ascending id order.
func (r *Registry) Variables() []*Variable {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Variable, 0, len(r.variables))
	for _, id := range sortedKeys(r.variables) {
		out = append(out, r.variables[id])
	}

	return out
}

// OpenContexts returns the number of contexts not yet ended.
func (r *Registry) OpenContexts() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.contexts)
}

// ContextState returns the state of the live context id.
func (r *Registry) ContextState(id uint64) (ContextState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contexts[id]
	if !ok {
		return Closed, false
	}

	return c.State(), true
}

//////
// Internals.
//////

// sendProgress sends an update without blocking. Must hold r.mu.
func (r *Registry) sendProgress(c *Context, elapsed time.Duration, improved []string) {
	if r.config.ProgressChan == nil {
		return
	}

	update := ProgressUpdate{
		ContextID:      c.ID(),
		Elapsed:        elapsed,
		Sampled:        c.sampled,
		Improved:       improved,
		ContextsClosed: r.closed,
	}

	select {
	case r.config.ProgressChan <- update:
	default:
		// Skip update if channel is full.
	}
}
