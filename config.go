package tuner

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/thalesfsp/tuner/internal/logger"
)

// SeedEnv is the environment variable holding the random seed. Unset or 0
// means a time-based seed.
const SeedEnv = "TUNER_SEED"

// Config holds the configuration of a Registry.
//
// Usage example:
//
//	config := DefaultConfig()
//	config.Seed = 42                     // Reproducible sampling
//	config.Metrics = NewMetrics(promReg) // Expose Prometheus metrics
//
//	reg := NewRegistry(config)
//
// Note:
// - Logging never influences sampling nor timing.
type Config struct {
	// Seed seeds the random source. 0 means a time-based seed.
	Seed int64

	// Logger receives the engine trace lines (Debug) and warnings (Warn).
	// If nil, warnings are written as text to Err and trace lines are
	// dropped.
	Logger *slog.Logger

	// Out receives the best-value report.
	Out io.Writer

	// Err receives the "no variables tuned" warning.
	Err io.Writer

	// Now is the monotonic clock used to time contexts.
	Now func() time.Time

	// Metrics, if set, is updated by every callback.
	Metrics *Metrics

	// ProgressChan is used to send an update after every ended context.
	// If nil, no updates will be sent. Updates are dropped when full.
	ProgressChan chan<- ProgressUpdate
}

// DefaultConfig returns a default configuration: time-seeded, reporting to
// stdout, warnings to stderr.
func DefaultConfig() Config {
	return Config{
		Seed:         0,
		Logger:       logger.NewText("warn", os.Stderr),
		Out:          os.Stdout,
		Err:          os.Stderr,
		Now:          time.Now,
		Metrics:      nil, // Default to no metrics.
		ProgressChan: nil, // Default to no progress updates.
	}
}

// ConfigFromEnv returns DefaultConfig adjusted by the process environment:
// logger.VerboseEnv turns trace lines on (to stderr), SeedEnv sets the seed.
func ConfigFromEnv() (Config, error) {
	return configFromLookup(os.LookupEnv)
}

func configFromLookup(lookup func(string) (string, bool)) (Config, error) {
	config := DefaultConfig()
	config.Logger = logger.FromEnv(lookup, os.Stderr)

	if raw, ok := lookup(SeedEnv); ok && raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", SeedEnv, raw, err)
		}

		config.Seed = seed
	}

	return config, nil
}

// withDefaults fills the zero fields of c.
func (c Config) withDefaults() Config {
	d := DefaultConfig()

	if c.Out == nil {
		c.Out = d.Out
	}

	if c.Err == nil {
		c.Err = d.Err
	}

	if c.Logger == nil {
		c.Logger = logger.NewText("warn", c.Err)
	}

	if c.Now == nil {
		c.Now = d.Now
	}

	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}

	return c
}
