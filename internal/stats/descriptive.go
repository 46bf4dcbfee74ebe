package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Descriptive summarizes one group of observations. Std is the sample
// standard deviation and is NaN for n < 2.
type Descriptive struct {
	Mean   float64
	Median float64
	Std    float64
	Min    float64
	Max    float64
	Q25    float64
	Q75    float64
	N      int
}

// Describe computes descriptive statistics. ok is false for an empty input.
func Describe(values []float64) (Descriptive, bool) {
	if len(values) == 0 {
		return Descriptive{}, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Descriptive{
		Mean:   stat.Mean(values, nil),
		Median: quantileSorted(sorted, 0.5),
		Std:    stat.StdDev(values, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q25:    quantileSorted(sorted, 0.25),
		Q75:    quantileSorted(sorted, 0.75),
		N:      len(values),
	}, true
}

// quantileSorted interpolates the p-quantile linearly between order
// statistics, the same convention spreadsheet tools and dataframe libraries
// use, so exported numbers and re-analysis agree.
func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
