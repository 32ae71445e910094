// Package tuner provides a runtime random-search tuning engine. An
// instrumented host declares variables, brackets units of work with timed
// contexts, asks the engine for a value for every tunable variable inside a
// context, and closes the context. The engine keeps, for every tunable, the
// value that was handed out for the shortest context seen so far.
//
// # Features
//
// The package includes the following key features:
//
//   - Candidate domains: enumerated sets, bounded numeric ranges with
//     open/closed bounds, and unbounded (descriptive only) domains
//   - Uniform random sampling: stateless draws, independent of each other
//   - Best-value tracking: the minimum observed context duration wins
//   - Typed values: a tagged variant for int64, double and bounded strings
//   - Value binning: adaptive online clustering for unbounded observations
//   - Progress Monitoring: updates after every ended context via channels
//   - Prometheus metrics and structured logging through log/slog
//
// # Protocol
//
// The callback surface is the Tool interface, implemented by Registry:
//
//	reg := tuner.NewRegistry(tuner.DefaultConfig())
//	reg.Init()
//
//	_ = reg.DeclareOutputVariable("Degree", 1, tuner.Domain{
//	    Type:       tuner.Int64,
//	    Category:   tuner.Ordinal,
//	    Quantity:   tuner.Set,
//	    Candidates: tuner.Candidates{Values: tuner.IntValues(1, 2, 3, 4, 5, 6)},
//	})
//
//	for i := uint64(0); i < 300; i++ {
//	    reg.BeginContext(i)
//
//	    slots := []tuner.VariableValue{{ID: 1}}
//	    _ = reg.RequestValues(i, nil, slots)
//
//	    degree, _ := slots[0].Value.Int64()
//	    smooth(degree)
//
//	    _ = reg.EndContext(i)
//	}
//
//	_ = reg.Finalize()
//
// # Contexts
//
// A context goes Open (BeginContext), Timing (RequestValues) and Closed
// (EndContext). Contexts may nest; each one scores only the output
// variables bound to it. Input variables are recorded by id and never
// scored.
//
// # Id reuse
//
// Declaring a variable id twice, or beginning a context id that is still
// open, replaces the previous entry and logs a warning. Warnings are written
// to Config.Err unless another Logger is configured. A replaced context
// never records a score, and a context already bound keeps scoring the
// variables it sampled, not their replacements.
//
// # Configuration
//
// Config carries the seed, logger, report sinks, clock, metrics and
// progress channel. ConfigFromEnv honours TUNER_VERBOSE (trace lines to
// stderr) and TUNER_SEED.
//
// # Thread Safety
//
// Registry serialises every callback with a mutex. Variable and Binner are
// not safe for concurrent mutation on their own.
package tuner
