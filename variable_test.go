package tuner

import (
	"bytes"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOutput(t *testing.T, name string, domain Domain) *Variable {
	t.Helper()

	v, err := NewVariable(1, name, domain, true)
	require.NoError(t, err)

	return v
}

func TestSampleSetCoversEveryValue(t *testing.T) {
	v := newOutput(t, "Degree", intSet(1, 2, 3, 4, 5, 6))
	src := rand.New(rand.NewSource(1))

	seen := make(map[int64]int)

	for i := 0; i < 10000; i++ {
		value, err := v.Sample(src)
		require.NoError(t, err)

		n, ok := value.Int64()
		require.True(t, ok)

		seen[n]++
		assert.Equal(t, value, v.Last())
	}

	assert.Len(t, seen, 6)

	for n := int64(1); n <= 6; n++ {
		assert.Positive(t, seen[n], "value %d never sampled", n)
	}
}

func TestSampleStringSet(t *testing.T) {
	v := newOutput(t, "schedule", Domain{
		Type:       String,
		Category:   Categorical,
		Quantity:   Set,
		Candidates: Candidates{Values: StringValues("static", "dynamic")},
	})
	src := rand.New(rand.NewSource(2))

	for i := 0; i < 100; i++ {
		value, err := v.Sample(src)
		require.NoError(t, err)

		s, ok := value.Text()
		require.True(t, ok)
		assert.Contains(t, []string{"static", "dynamic"}, s)
	}
}

func TestSampleDoubleSetRoundTrips(t *testing.T) {
	candidates := []float64{0.1, 1.0 / 3.0, 1e-12}
	v := newOutput(t, "ratio", Domain{
		Type:       Double,
		Category:   Ordinal,
		Quantity:   Set,
		Candidates: Candidates{Values: DoubleValues(candidates...)},
	})
	src := rand.New(rand.NewSource(3))

	for i := 0; i < 100; i++ {
		value, err := v.Sample(src)
		require.NoError(t, err)

		f, ok := value.Float64()
		require.True(t, ok)
		assert.Contains(t, candidates, f)
	}
}

func TestSampleIntRange(t *testing.T) {
	v := newOutput(t, "Chebyshev: Degree", intRange(1, 6, 1, false, false))
	src := rand.New(rand.NewSource(4))

	seen := make(map[int64]bool)

	for i := 0; i < 5000; i++ {
		value, err := v.Sample(src)
		require.NoError(t, err)

		n, _ := value.Int64()
		assert.GreaterOrEqual(t, n, int64(1))
		assert.LessOrEqual(t, n, int64(6))

		seen[n] = true
	}

	assert.Len(t, seen, 6)
}

func TestSampleIntRangeFullWidth(t *testing.T) {
	v := newOutput(t, "wide", intRange(math.MinInt64, math.MaxInt64, 1, false, false))
	src := rand.New(rand.NewSource(5))

	for i := 0; i < 10; i++ {
		_, err := v.Sample(src)
		require.NoError(t, err)
	}

	half := newOutput(t, "half", intRange(-1, math.MaxInt64, 1, false, false))

	for i := 0; i < 10; i++ {
		value, err := half.Sample(src)
		require.NoError(t, err)

		n, _ := value.Int64()
		assert.GreaterOrEqual(t, n, int64(-1))
	}
}

func TestSampleDoubleRange(t *testing.T) {
	v := newOutput(t, "Damping Factor", doubleRange(0.8, 1.2, 0.01, false, false))
	src := rand.New(rand.NewSource(6))

	for i := 0; i < 5000; i++ {
		value, err := v.Sample(src)
		require.NoError(t, err)

		f, _ := value.Float64()
		assert.GreaterOrEqual(t, f, 0.8)
		assert.LessOrEqual(t, f, 1.2)
	}
}

func TestSampleUnboundedFails(t *testing.T) {
	v, err := NewVariable(2, "kernel_name", Domain{Type: String, Quantity: Unbounded}, false)
	require.NoError(t, err)

	_, err = v.Sample(rand.New(rand.NewSource(7)))
	assert.ErrorIs(t, err, ErrInvalidDomain)
}

func TestNewVariableRejectsUnboundedOutput(t *testing.T) {
	_, err := NewVariable(3, "fastest", Domain{Type: Int64, Quantity: Unbounded}, true)
	assert.ErrorIs(t, err, ErrInvalidDomain)
}

func TestRecordScoreIsMonotonic(t *testing.T) {
	v := newOutput(t, "Degree", intSet(1, 2, 3, 4, 5, 6))
	src := rand.New(rand.NewSource(8))

	scores := []time.Duration{50, 30, 80, 10}
	wantBest := []time.Duration{50, 30, 30, 10}

	var wantValue Value

	for i, score := range scores {
		value, err := v.Sample(src)
		require.NoError(t, err)

		if score == wantBest[i] {
			wantValue = value
		}

		v.RecordScore(score)

		best, bestScore, ok := v.Best()
		require.True(t, ok)
		assert.Equal(t, wantBest[i], bestScore)
		assert.Equal(t, wantValue, best)
	}
}

func TestRecordScoreFirstCallAlwaysWins(t *testing.T) {
	v := newOutput(t, "Degree", intSet(4))

	_, _, ok := v.Best()
	assert.False(t, ok)

	_, err := v.Sample(rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	assert.True(t, v.RecordScore(999999999))

	best, score, ok := v.Best()
	require.True(t, ok)
	assert.Equal(t, time.Duration(999999999), score)
	assert.Equal(t, IntValue(4), best)

	assert.False(t, v.RecordScore(999999999), "equal score is not an improvement")
}

func TestReportBest(t *testing.T) {
	out := newOutput(t, "Degree", intSet(4))

	_, err := out.Sample(rand.New(rand.NewSource(10)))
	require.NoError(t, err)
	out.RecordScore(750 * time.Microsecond)

	var buf bytes.Buffer
	require.NoError(t, out.ReportBest(&buf))
	assert.Equal(t, "Best random value for variable Degree: 4\n", buf.String())

	in, err := NewVariable(2, "View size", intSet(1024), false)
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, in.ReportBest(&buf))
	assert.Empty(t, buf.String())
}

func TestReportBestFormatsDouble(t *testing.T) {
	v := newOutput(t, "Damping Factor", Domain{
		Type:       Double,
		Category:   Ordinal,
		Quantity:   Set,
		Candidates: Candidates{Values: DoubleValues(0.9)},
	})

	_, err := v.Sample(rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	v.RecordScore(1)

	var buf bytes.Buffer
	require.NoError(t, v.ReportBest(&buf))
	assert.Equal(t, "Best random value for variable Damping Factor: 0.900000\n", buf.String())
}

func TestVariableClassifyAndDescribe(t *testing.T) {
	v, err := NewVariable(5, "problem size", Domain{Type: Double, Category: Ratio, Quantity: Unbounded}, false)
	require.NoError(t, err)

	assert.Equal(t, "bin_0", v.Classify(100))
	assert.Equal(t, "bin_0", v.Classify(110))
	assert.Equal(t, "bin_1", v.Classify(1000))
	assert.Len(t, v.Bins(), 2)

	desc := v.Describe()
	assert.Contains(t, desc, "name: problem size")
	assert.Contains(t, desc, "num_bins: 2")
	assert.Contains(t, desc, "bin_1:")
}
