package tuner

import "strconv"

//////
// Const, vars, types.
//////

// binTolerance is how far, relative to a bin's mean, a value may fall and
// still join that bin.
const binTolerance = 0.25

// Bin summarises the observations that fell into it.
//
// Fields:
// - Name: bin_<n>, n being the creation index
// - Min, Max: extremes observed so far
// - Mean: running mean
// - Total: running sum
// - Count: number of observations.
type Bin struct {
	Name  string
	Min   float64
	Mean  float64
	Max   float64
	Total float64
	Count int
}

// Binner is an adaptive online clustering of scalar observations, used to
// summarise values of variables whose domain is unbounded.
//
// Bins are append-only: they are never merged nor evicted. The zero value is
// ready to use. A Binner is not safe for concurrent mutation.
type Binner struct {
	bins []*Bin
}

//////
// Methods.
//////

// contains reports whether value joins b: it is inside [Min, Max], or
// within binTolerance of the mean.
func (b *Bin) contains(value float64) bool {
	if value >= b.Min && value <= b.Max {
		return true
	}

	lo, hi := b.Mean*(1-binTolerance), b.Mean*(1+binTolerance)
	if lo > hi {
		lo, hi = hi, lo
	}

	return value >= lo && value <= hi
}

func (b *Bin) add(value float64) {
	b.Count++
	b.Total += value
	b.Mean = b.Total / float64(b.Count)

	if value < b.Min {
		b.Min = value
	}

	if value > b.Max {
		b.Max = value
	}
}

// Classify returns the name of the bin value belongs to. Bins are scanned
// in creation order and the first match absorbs the value. When nothing
// matches, a new bin seeded with value is appended.
func (bn *Binner) Classify(value float64) string {
	for _, b := range bn.bins {
		if b.contains(value) {
			b.add(value)

			return b.Name
		}
	}

	b := &Bin{
		Name:  "bin_" + strconv.Itoa(len(bn.bins)),
		Min:   value,
		Mean:  value,
		Max:   value,
		Total: value,
		Count: 1,
	}
	bn.bins = append(bn.bins, b)

	return b.Name
}

// Len returns the number of bins.
func (bn *Binner) Len() int {
	return len(bn.bins)
}

// Bins returns a snapshot of the bins in creation order.
func (bn *Binner) Bins() []Bin {
	out := make([]Bin, len(bn.bins))
	for i, b := range bn.bins {
		out[i] = *b
	}

	return out
}
