package tuner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intRange(lower, upper, step int64, openLower, openUpper bool) Domain {
	return Domain{
		Type:     Int64,
		Category: Ordinal,
		Quantity: Range,
		Candidates: Candidates{
			Lower:     IntValue(lower),
			Upper:     IntValue(upper),
			Step:      IntValue(step),
			OpenLower: openLower,
			OpenUpper: openUpper,
		},
	}
}

func doubleRange(lower, upper, step float64, openLower, openUpper bool) Domain {
	return Domain{
		Type:     Double,
		Category: Interval,
		Quantity: Range,
		Candidates: Candidates{
			Lower:     DoubleValue(lower),
			Upper:     DoubleValue(upper),
			Step:      DoubleValue(step),
			OpenLower: openLower,
			OpenUpper: openUpper,
		},
	}
}

func intSet(values ...int64) Domain {
	return Domain{
		Type:       Int64,
		Category:   Ordinal,
		Quantity:   Set,
		Candidates: Candidates{Values: IntValues(values...)},
	}
}

func TestBuildSampleSpaceSet(t *testing.T) {
	space, err := BuildSampleSpace(Domain{
		Type:       Double,
		Category:   Categorical,
		Quantity:   Set,
		Candidates: Candidates{Values: DoubleValues(0.5, 1e-9, 3)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"0.5", "1e-09", "3"}, space.Values)
	assert.True(t, space.Sampleable())
}

func TestBuildSampleSpaceRange(t *testing.T) {
	tests := []struct {
		name     string
		domain   Domain
		min, max Value
	}{
		{
			name:   "closed int",
			domain: intRange(1, 6, 1, false, false),
			min:    IntValue(1),
			max:    IntValue(6),
		},
		{
			name:   "open lower int shifts by one step",
			domain: intRange(1, 6, 1, true, false),
			min:    IntValue(2),
			max:    IntValue(6),
		},
		{
			name:   "open both int",
			domain: intRange(0, 100, 5, true, true),
			min:    IntValue(5),
			max:    IntValue(95),
		},
		{
			name:   "open lower at the int64 edge",
			domain: intRange(math.MaxInt64-1, math.MaxInt64, 1, true, false),
			min:    IntValue(math.MaxInt64),
			max:    IntValue(math.MaxInt64),
		},
		{
			name:   "open upper at the int64 edge",
			domain: intRange(math.MinInt64, math.MinInt64+1, 1, false, true),
			min:    IntValue(math.MinInt64),
			max:    IntValue(math.MinInt64),
		},
		{
			name:   "closed double unchanged",
			domain: doubleRange(10.0, 50.0, 0.1, false, false),
			min:    DoubleValue(10.0),
			max:    DoubleValue(50.0),
		},
		{
			name:   "open upper double",
			domain: doubleRange(0.0, 1.0, 0.25, false, true),
			min:    DoubleValue(0.0),
			max:    DoubleValue(0.75),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			space, err := BuildSampleSpace(tt.domain)
			require.NoError(t, err)

			assert.Equal(t, tt.min, space.Min)
			assert.Equal(t, tt.max, space.Max)
			assert.Empty(t, space.Values)
		})
	}
}

func TestBuildSampleSpaceUnboundedIsEmpty(t *testing.T) {
	space, err := BuildSampleSpace(Domain{Type: String, Category: Categorical, Quantity: Unbounded})
	require.NoError(t, err)

	assert.Empty(t, space.Values)
	assert.False(t, space.Sampleable())
}

func TestDomainValidate(t *testing.T) {
	tests := []struct {
		name   string
		domain Domain
	}{
		{"empty set", Domain{Type: Int64, Quantity: Set}},
		{"mixed set", Domain{Type: Int64, Quantity: Set, Candidates: Candidates{Values: []Value{IntValue(1), DoubleValue(2)}}}},
		{"inverted range", intRange(6, 1, 1, false, false)},
		{"negative step", intRange(1, 6, -1, false, false)},
		{"open bounds cross", intRange(1, 2, 1, true, true)},
		{"open lower overflows", intRange(math.MaxInt64-1, math.MaxInt64, 10, true, false)},
		{"open upper overflows", intRange(math.MinInt64, math.MinInt64+1, 10, false, true)},
		{"string range", Domain{
			Type:     String,
			Quantity: Range,
			Candidates: Candidates{
				Lower: StringValue("a"), Upper: StringValue("z"), Step: StringValue("b"),
			},
		}},
		{"range arm mismatch", Domain{
			Type:       Double,
			Quantity:   Range,
			Candidates: Candidates{Lower: IntValue(1), Upper: DoubleValue(2), Step: DoubleValue(0.1)},
		}},
		{"unknown type", Domain{Type: ValueType(9), Quantity: Unbounded}},
		{"unknown quantity", Domain{Type: Int64, Quantity: Quantity(9)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.domain.Validate(), ErrInvalidDomain)

			_, err := BuildSampleSpace(tt.domain)
			assert.ErrorIs(t, err, ErrInvalidDomain)
		})
	}
}

func TestDomainDescribe(t *testing.T) {
	assert.Equal(t, "[1,2,3]", intSet(1, 2, 3).Describe())
	assert.Equal(t, "unbounded", Domain{Quantity: Unbounded}.Describe())
	assert.Equal(t,
		"lower: 1, upper: 6, step: 1, open lower: true, open upper: false",
		intRange(1, 6, 1, true, false).Describe(),
	)
}

func TestEnumText(t *testing.T) {
	var (
		vt ValueType
		c  Category
		q  Quantity
	)

	require.NoError(t, vt.UnmarshalText([]byte("double")))
	require.NoError(t, c.UnmarshalText([]byte("Ratio")))
	require.NoError(t, q.UnmarshalText([]byte("unbounded")))

	assert.Equal(t, Double, vt)
	assert.Equal(t, Ratio, c)
	assert.Equal(t, Unbounded, q)

	assert.ErrorIs(t, q.UnmarshalText([]byte("cloud")), ErrInvalidDomain)
}
