package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrSampleTooSmall is returned by ShapiroWilk for fewer than three
// observations, where the test statistic is undefined.
var ErrSampleTooSmall = errors.New("stats: sample too small for normality test")

// errDegenerate covers samples with zero range.
var errDegenerate = errors.New("stats: all observations are identical")

// Polynomial coefficients from Royston (1995), Algorithm AS R94, in
// ascending order of power.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

func swPoly(c []float64, x float64) float64 {
	r := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}

// ShapiroWilk tests the sample against a normal distribution and returns
// the W statistic and its approximate p-value. Small p indicates departure
// from normality.
func ShapiroWilk(sample []float64) (w, p float64, err error) {
	n := len(sample)
	if n < 3 {
		return 0, 0, ErrSampleTooSmall
	}
	if n > 5000 {
		return 0, 0, errors.New("stats: sample too large for normality test")
	}
	x := append([]float64(nil), sample...)
	sort.Float64s(x)
	if x[n-1]-x[0] == 0 {
		return 0, 0, errDegenerate
	}

	a := swWeights(n)

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)
	var num, ssq float64
	for i, v := range x {
		num += a[i] * v
		d := v - mean
		ssq += d * d
	}
	w = num * num / ssq
	if w > 1 {
		w = 1
	}

	p = swPValue(w, n)
	return w, p, nil
}

// swWeights builds the coefficient vector a for sorted observations.
// The vector is antisymmetric; the outermost one or two entries carry
// Royston's polynomial corrections.
func swWeights(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0] = -math.Sqrt(0.5)
		a[2] = math.Sqrt(0.5)
		return a
	}

	norm := distuv.UnitNormal
	an := float64(n)
	m := make([]float64, n)
	var summ2 float64
	for i := 0; i < n; i++ {
		m[i] = norm.Quantile((float64(i+1) - 0.375) / (an + 0.25))
		summ2 += m[i] * m[i]
	}
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)

	last := m[n-1]/ssumm2 + swPoly(swC1, rsn)
	a[n-1] = last
	a[0] = -last

	var phi float64
	first := 1
	if n > 5 {
		second := m[n-2]/ssumm2 + swPoly(swC2, rsn)
		a[n-2] = second
		a[1] = -second
		first = 2
		phi = (summ2 - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) /
			(1 - 2*last*last - 2*second*second)
	} else {
		phi = (summ2 - 2*m[n-1]*m[n-1]) / (1 - 2*last*last)
	}
	scale := math.Sqrt(phi)
	for i := first; i < n-first; i++ {
		a[i] = m[i] / scale
	}
	return a
}

// swPValue maps W to a p-value using Royston's normalizing transforms.
func swPValue(w float64, n int) float64 {
	an := float64(n)
	if n == 3 {
		// Exact small-sample formula.
		const pi6 = 1.90985931710274
		const stqr = 1.04719755119660
		p := pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		return math.Min(math.Max(p, 0), 1)
	}

	y := math.Log1p(-w)
	var mu, sigma float64
	if n <= 11 {
		gamma := swPoly(swG, an)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		mu = swPoly(swC3, an)
		sigma = math.Exp(swPoly(swC4, an))
	} else {
		ln := math.Log(an)
		mu = swPoly(swC5, ln)
		sigma = math.Exp(swPoly(swC6, ln))
	}
	z := (y - mu) / sigma
	return distuv.UnitNormal.Survival(z)
}
