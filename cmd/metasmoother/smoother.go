package main

import (
	"fmt"
	"math"
	"time"

	"github.com/thalesfsp/tuner"
	"github.com/thalesfsp/tuner/playground"
)

//////
// Const, vars, types.
//////

// Values each smoother is fastest at. Random search does not converge, the
// report shows how close it got.
const (
	chebyshevDegree     int64   = 5
	chebyshevRatio      float64 = 15
	chebyshevIterations int64   = 75

	multiThreadedSweeps  int64   = 1
	multiThreadedDamping float64 = 0.9

	twoStageSweeps  int64   = 2
	twoStageDamping float64 = 1.1
)

// host carries what every smoother needs to run.
type host struct {
	session *playground.Session

	// kernel and policy are the ids of the input variables describing
	// the running kernel.
	kernel uint64
	policy uint64

	// scale multiplies every simulated delay. 0 disables sleeping.
	scale float64
	sleep func(time.Duration)
}

// work simulates a kernel taking cost.
func (h *host) work(cost time.Duration) {
	if h.scale <= 0 {
		return
	}

	h.sleep(time.Duration(float64(cost) * h.scale))
}

// inputs describes the context of a kernel named name.
func (h *host) inputs(name string) []tuner.VariableValue {
	return []tuner.VariableValue{
		{ID: h.kernel, Value: tuner.StringValue(name)},
		{ID: h.policy, Value: tuner.StringValue("parallel_for")},
	}
}

// smoother is one implementation the meta-smoother chooses from.
type smoother interface {
	Name() string
	Apply(h *host) error
}

//////
// Chebyshev.
//////

type chebyshev struct {
	degree     uint64
	ratio      uint64
	iterations uint64

	// slots keep the previous answer as starting point.
	slots []tuner.VariableValue
}

func newChebyshev(s *playground.Session) (*chebyshev, error) {
	degree, err := playground.DeclareOutputRange[int64](s, "Chebyshev: Degree", 1, 6, 1)
	if err != nil {
		return nil, err
	}

	ratio, err := s.DeclareOutputContinuous("Chebyshev: Eigenvalue Ratio", 10, 50, 0.1, false, false)
	if err != nil {
		return nil, err
	}

	iterations, err := playground.DeclareOutputRange[int64](s, "Chebyshev: Maximum Iterations", 5, 100, 1)
	if err != nil {
		return nil, err
	}

	return &chebyshev{
		degree:     degree,
		ratio:      ratio,
		iterations: iterations,
		slots: []tuner.VariableValue{
			{ID: degree, Value: tuner.IntValue(3)},
			{ID: ratio, Value: tuner.DoubleValue(25)},
			{ID: iterations, Value: tuner.IntValue(50)},
		},
	}, nil
}

func (c *chebyshev) Name() string { return "Chebyshev" }

func (c *chebyshev) Apply(h *host) error {
	return h.session.Run(h.inputs(c.Name()), c.slots, func() {
		degree, _ := c.slots[0].Value.Int64()
		ratio, _ := c.slots[1].Value.Float64()
		iterations, _ := c.slots[2].Value.Int64()

		h.work(chebyshevCost(degree, ratio, iterations))
	})
}

// chebyshevCost is 750µs per degree, 25µs per ratio unit and 10µs per
// iteration away from the fastest setting.
func chebyshevCost(degree int64, ratio float64, iterations int64) time.Duration {
	us := 1 +
		math.Abs(float64(chebyshevDegree-degree))*750 +
		math.Abs(chebyshevRatio-ratio)*25 +
		math.Abs(float64(chebyshevIterations-iterations))*10

	return time.Duration(us * float64(time.Microsecond))
}

//////
// Gauss-Seidel.
//////

// gaussSeidel covers both Gauss-Seidel variants; they only differ by name
// and fastest setting.
type gaussSeidel struct {
	name    string
	sweeps  int64
	damping float64

	slots []tuner.VariableValue
}

func newGaussSeidel(s *playground.Session, name, dampingName string, sweeps int64, damping float64) (*gaussSeidel, error) {
	sweepsID, err := playground.DeclareOutputRange[int64](s, name+": Number of Sweeps", 1, 2, 1)
	if err != nil {
		return nil, err
	}

	dampingID, err := s.DeclareOutputContinuous(name+": "+dampingName, 0.8, 1.2, 0.01, false, false)
	if err != nil {
		return nil, err
	}

	return &gaussSeidel{
		name:    name,
		sweeps:  sweeps,
		damping: damping,
		slots: []tuner.VariableValue{
			{ID: sweepsID, Value: tuner.IntValue(2)},
			{ID: dampingID, Value: tuner.DoubleValue(1)},
		},
	}, nil
}

func newMultiThreadedGaussSeidel(s *playground.Session) (*gaussSeidel, error) {
	return newGaussSeidel(s, "Multi-threaded Gauss-Seidel", "Damping Factor", multiThreadedSweeps, multiThreadedDamping)
}

func newTwoStageGaussSeidel(s *playground.Session) (*gaussSeidel, error) {
	return newGaussSeidel(s, "Two-Stage Gauss-Seidel", "Inner Damping Factor", twoStageSweeps, twoStageDamping)
}

func (g *gaussSeidel) Name() string { return g.name }

func (g *gaussSeidel) Apply(h *host) error {
	return h.session.Run(h.inputs(g.name), g.slots, func() {
		sweeps, _ := g.slots[0].Value.Int64()
		damping, _ := g.slots[1].Value.Float64()

		h.work(g.cost(sweeps, damping))
	})
}

// cost is 100µs per sweep and 100µs per damping unit away from the fastest
// setting.
func (g *gaussSeidel) cost(sweeps int64, damping float64) time.Duration {
	us := 1 +
		math.Abs(float64(g.sweeps-sweeps))*100 +
		math.Abs(g.damping-damping)*100

	return time.Duration(us * float64(time.Microsecond))
}

//////
// Meta-smoother.
//////

// metaSmoother picks among its smoothers.
type metaSmoother struct {
	host      *host
	smoothers []smoother

	// implementation is the id of the explicit outer choice, 0 until
	// declared.
	implementation uint64
	slots          []tuner.VariableValue
}

func newMetaSmoother(h *host) (*metaSmoother, error) {
	cheb, err := newChebyshev(h.session)
	if err != nil {
		return nil, err
	}

	multi, err := newMultiThreadedGaussSeidel(h.session)
	if err != nil {
		return nil, err
	}

	two, err := newTwoStageGaussSeidel(h.session)
	if err != nil {
		return nil, err
	}

	return &metaSmoother{host: h, smoothers: []smoother{cheb, multi, two}}, nil
}

// FastestOf runs one smoother chosen through Session.FastestOf.
func (m *metaSmoother) FastestOf() error {
	var failure error

	impls := make([]func(), len(m.smoothers))
	for i, s := range m.smoothers {
		impls[i] = func() {
			failure = s.Apply(m.host)
		}
	}

	if err := m.host.session.FastestOf("meta-smoother", impls...); err != nil {
		return err
	}

	return failure
}

// Explicit runs one smoother chosen through an explicitly declared outer
// variable, its context enclosing the smoother's own.
func (m *metaSmoother) Explicit() error {
	s := m.host.session

	if m.implementation == 0 {
		id, err := playground.DeclareOutputRange[int64](s, "meta smoother: implementation", 0, int64(len(m.smoothers)-1), 1)
		if err != nil {
			return err
		}

		m.implementation = id
		m.slots = []tuner.VariableValue{{ID: id, Value: tuner.IntValue(int64(len(m.smoothers) - 1))}}
	}

	inputs := []tuner.VariableValue{{ID: m.host.kernel, Value: tuner.StringValue("meta smoother explicit search loop")}}

	var failure error

	err := s.Run(inputs, m.slots, func() {
		failure = m.smoothers[m.lastPick()].Apply(m.host)
	})
	if err != nil {
		return err
	}

	if failure != nil {
		return fmt.Errorf("%s: %w", m.smoothers[m.lastPick()].Name(), failure)
	}

	return nil
}

// lastPick is the smoother the outer variable selected. Out-of-range picks
// fall back to the last smoother.
func (m *metaSmoother) lastPick() int64 {
	pick, _ := m.slots[0].Value.Int64()
	if pick < 0 || pick >= int64(len(m.smoothers)) {
		return int64(len(m.smoothers) - 1)
	}

	return pick
}
