// Command metasmoother tunes a simulated meta-smoother: three smoother
// implementations, each with its own parameters and a simulated run time
// that shrinks near a fixed target. The search runs once through the
// fastest-of helper and once through an explicit outer variable, then the
// best values found are reported.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/thalesfsp/tuner"
	"github.com/thalesfsp/tuner/internal/logger"
	"github.com/thalesfsp/tuner/playground"
)

//////
// Const, vars, types.
//////

var banner = strings.Repeat("=", 80)

// options are the command flags.
type options struct {
	iterations int
	seed       int64
	verbose    bool
	plan       string
	delayScale float64
	metrics    bool
}

//////
// Command.
//////

func newRootCmd() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "metasmoother",
		Short: "Random-search tuning of a simulated meta-smoother",
		Long: `Declares the parameters of three simulated smoothers (Chebyshev,
multi-threaded and two-stage Gauss-Seidel) and searches them at random.

Each smoother sleeps longer the farther its parameters are from a fixed
target, so the best values reported at the end drift towards the targets.

Set TUNER_VERBOSE to trace every callback, TUNER_SEED to fix the seed.`,
		Example: `  metasmoother
  metasmoother --iterations 50 --delay-scale 0
  metasmoother --plan plan.yaml --metrics`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.iterations, "iterations", "n", 300, "Search iterations per method")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed, 0 keeps TUNER_SEED or a time-based seed")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Trace every callback to stderr")
	flags.StringVar(&opts.plan, "plan", "", "YAML plan of extra variables to tune after the smoothers")
	flags.Float64Var(&opts.delayScale, "delay-scale", 1, "Multiplier of the simulated delays, 0 disables sleeping")
	flags.BoolVar(&opts.metrics, "metrics", false, "Print the engine metrics to stderr when done")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

//////
// Run.
//////

func run(stdout, stderr io.Writer, opts options) error {
	if opts.iterations < 0 {
		return fmt.Errorf("iterations cannot be negative, got %d", opts.iterations)
	}

	config, err := tuner.ConfigFromEnv()
	if err != nil {
		return err
	}

	if opts.seed != 0 {
		config.Seed = opts.seed
	}

	if opts.verbose {
		config.Logger = logger.NewText("debug", stderr)
	}

	promReg := prometheus.NewRegistry()

	config.Out = stdout
	config.Err = stderr
	config.Metrics = tuner.NewMetrics(promReg)

	reg := tuner.NewRegistry(config)
	reg.Init()

	session := playground.NewSession(reg, stdout)

	h := &host{session: session, scale: opts.delayScale, sleep: time.Sleep}

	if h.kernel, err = session.DeclareInput("kernel", kernelDomain()); err != nil {
		return err
	}

	if h.policy, err = session.DeclareInput("execution policy", kernelDomain()); err != nil {
		return err
	}

	meta, err := newMetaSmoother(h)
	if err != nil {
		return err
	}

	reportTargets(stdout)

	if err := loop(stdout, "fastest_of() method:", opts.iterations, meta.FastestOf); err != nil {
		return err
	}

	if err := loop(stdout, "Explicit method:", opts.iterations, meta.Explicit); err != nil {
		return err
	}

	if opts.plan != "" {
		step, err := planStep(h, opts.plan)
		if err != nil {
			return err
		}

		if err := loop(stdout, "Plan "+opts.plan+":", opts.iterations, step); err != nil {
			return err
		}
	}

	if err := reg.Finalize(); err != nil {
		return err
	}

	if opts.metrics {
		return writeMetrics(stderr, promReg)
	}

	return nil
}

// loop runs step iterations times under a titled banner.
func loop(w io.Writer, title string, iterations int, step func() error) error {
	fmt.Fprintf(w, "%s\n%s\n%s\n", banner, title, banner)

	for i := 0; i < iterations; i++ {
		if err := step(); err != nil {
			return fmt.Errorf("%s iteration %d: %w", strings.TrimSuffix(title, ":"), i, err)
		}
	}

	fmt.Fprintf(w, "done.\n%s\n\n", banner)

	return nil
}

func kernelDomain() tuner.Domain {
	return tuner.Domain{Type: tuner.String, Category: tuner.Categorical, Quantity: tuner.Unbounded}
}

func reportTargets(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Chebyshev: Degree target value: %d\n", chebyshevDegree)
	fmt.Fprintf(w, "Chebyshev: Eigenvalue Ratio target value: %g\n", chebyshevRatio)
	fmt.Fprintf(w, "Chebyshev: Maximum Iterations target value: %d\n", chebyshevIterations)
	fmt.Fprintf(w, "Multi-threaded Gauss-Seidel: Number of Sweeps target value: %d\n", multiThreadedSweeps)
	fmt.Fprintf(w, "Multi-threaded Gauss-Seidel: Damping Factor target value: %g\n", multiThreadedDamping)
	fmt.Fprintf(w, "Two-Stage Gauss-Seidel: Number of Sweeps target value: %d\n", twoStageSweeps)
	fmt.Fprintf(w, "Two-Stage Gauss-Seidel: Inner Damping Factor target value: %g\n\n", twoStageDamping)
}

// planStep declares the variables of the plan at path and returns a step
// running one context over them, simulating their summed cost.
func planStep(h *host, path string) (func() error, error) {
	plan, err := playground.LoadPlan(path)
	if err != nil {
		return nil, err
	}

	declared, err := plan.Declare(h.session)
	if err != nil {
		return nil, err
	}

	var (
		inputs  []tuner.VariableValue
		outputs []tuner.VariableValue
		costs   []playground.PlanVariable
	)

	for _, v := range declared {
		if v.Kind == "input" {
			inputs = append(inputs, tuner.VariableValue{ID: v.ID})

			continue
		}

		outputs = append(outputs, tuner.VariableValue{ID: v.ID})
		costs = append(costs, v.PlanVariable)
	}

	return func() error {
		return h.session.Run(inputs, outputs, func() {
			var total time.Duration
			for i, slot := range outputs {
				total += costs[i].Cost(slot.Value)
			}

			h.work(time.Microsecond + total)
		})
	}, nil
}

// writeMetrics prints every gathered metric family in the text exposition
// format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	return nil
}
