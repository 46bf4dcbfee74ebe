package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Test names as they appear in exports.
const (
	TestTTest       = "Independent t-test"
	TestMannWhitney = "Mann-Whitney U test"
)

// NormalityResult carries the verdict of a Shapiro-Wilk check for one group.
// Statistic and PValue are nil when the test could not run; Note says why.
type NormalityResult struct {
	Statistic *float64
	PValue    *float64
	Normal    bool
	Note      string
}

// Comparison is the outcome of one institutional-versus-private contrast.
type Comparison struct {
	Metric       string
	TestUsed     string
	Statistic    float64
	PValue       float64
	Significant  bool
	EffectSize   float64
	EffectName   string
	Group1Mean   float64
	Group2Mean   float64
	Direction    string
	Group1Normal bool
	Group2Normal bool
}

// Normality runs Shapiro-Wilk on one group. Samples below three
// observations or degenerate samples are treated as non-normal so the
// downstream comparison falls back to the rank-based test.
func Normality(values []float64, alpha float64) NormalityResult {
	w, p, err := ShapiroWilk(values)
	if err != nil {
		note := "normality test failed"
		if errors.Is(err, ErrSampleTooSmall) {
			note = "sample too small for normality test"
		} else if errors.Is(err, errDegenerate) {
			note = "all observations identical"
		}
		return NormalityResult{Normal: false, Note: note}
	}
	return NormalityResult{
		Statistic: &w,
		PValue:    &p,
		Normal:    p > alpha,
	}
}

// CompareGroups contrasts two groups on one metric. Both groups normal
// selects the pooled-variance t-test with Cohen's d; otherwise the
// Mann-Whitney U test with the rank-biserial correlation. The first group
// is the institutional one by convention.
func CompareGroups(metric string, group1, group2 []float64, alpha float64) (Comparison, error) {
	if len(group1) < 2 || len(group2) < 2 {
		return Comparison{}, fmt.Errorf("stats: %s: need at least two observations per group", metric)
	}

	n1 := Normality(group1, alpha)
	n2 := Normality(group2, alpha)

	c := Comparison{
		Metric:       metric,
		Group1Mean:   mean(group1),
		Group2Mean:   mean(group2),
		Group1Normal: n1.Normal,
		Group2Normal: n2.Normal,
	}

	if n1.Normal && n2.Normal {
		t, p := tTestEqualVar(group1, group2)
		c.TestUsed = TestTTest
		c.Statistic = t
		c.PValue = p
		c.EffectSize = cohensD(group1, group2)
		c.EffectName = "Cohen's d"
	} else {
		u, p := mannWhitneyU(group1, group2)
		c.TestUsed = TestMannWhitney
		c.Statistic = u
		c.PValue = p
		c.EffectSize = rankBiserial(u, len(group1), len(group2))
		c.EffectName = "Rank-biserial r"
	}

	c.Significant = c.PValue < alpha
	if c.Group1Mean < c.Group2Mean {
		c.Direction = "Institutional < Private"
	} else if c.Group1Mean > c.Group2Mean {
		c.Direction = "Institutional > Private"
	} else {
		c.Direction = "Institutional = Private"
	}
	return c, nil
}

// Interpretation renders a one-line reading of the comparison, with lower
// scores meaning easier text.
func (c Comparison) Interpretation() string {
	if !c.Significant {
		return fmt.Sprintf("No significant difference in %s between source types (p=%.4f)", c.Metric, c.PValue)
	}
	easier := "institutional"
	if c.Direction == "Institutional > Private" {
		easier = "private"
	}
	return fmt.Sprintf("Significant difference in %s: %s sources are more readable (p=%.4f)", c.Metric, easier, c.PValue)
}

func mean(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s / float64(len(values))
}

func sampleVar(values []float64) float64 {
	m := mean(values)
	s := 0.0
	for _, v := range values {
		d := v - m
		s += d * d
	}
	return s / float64(len(values)-1)
}

// tTestEqualVar is the two-sided independent two-sample t-test with pooled
// variance.
func tTestEqualVar(g1, g2 []float64) (t, p float64) {
	n1, n2 := float64(len(g1)), float64(len(g2))
	v1, v2 := sampleVar(g1), sampleVar(g2)
	df := n1 + n2 - 2
	pooled := ((n1-1)*v1 + (n2-1)*v2) / df
	se := math.Sqrt(pooled * (1/n1 + 1/n2))
	if se == 0 {
		if mean(g1) == mean(g2) {
			return 0, 1
		}
		return math.Inf(sign(mean(g1)-mean(g2))), 0
	}
	t = (mean(g1) - mean(g2)) / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.Survival(math.Abs(t))
	if p > 1 {
		p = 1
	}
	return t, p
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}

// cohensD uses the pooled standard deviation.
func cohensD(g1, g2 []float64) float64 {
	n1, n2 := float64(len(g1)), float64(len(g2))
	pooled := ((n1-1)*sampleVar(g1) + (n2-1)*sampleVar(g2)) / (n1 + n2 - 2)
	if pooled == 0 {
		return 0
	}
	return (mean(g1) - mean(g2)) / math.Sqrt(pooled)
}

// mannWhitneyU returns the U statistic of the first group and the two-sided
// p-value from the normal approximation with tie and continuity corrections.
func mannWhitneyU(g1, g2 []float64) (u, p float64) {
	n1, n2 := len(g1), len(g2)
	combined := make([]float64, 0, n1+n2)
	combined = append(combined, g1...)
	combined = append(combined, g2...)
	ranks, tieTerm := rankWithTies(combined)

	r1 := 0.0
	for i := 0; i < n1; i++ {
		r1 += ranks[i]
	}
	u = r1 - float64(n1)*float64(n1+1)/2

	fn1, fn2 := float64(n1), float64(n2)
	n := fn1 + fn2
	mu := fn1 * fn2 / 2
	variance := fn1 * fn2 / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if variance <= 0 {
		return u, 1
	}
	sd := math.Sqrt(variance)

	// Continuity correction pulls the statistic half a step toward the mean.
	diff := u - mu
	switch {
	case diff > 0:
		diff -= 0.5
	case diff < 0:
		diff += 0.5
	}
	z := diff / sd
	p = 2 * distuv.UnitNormal.Survival(math.Abs(z))
	if p > 1 {
		p = 1
	}
	return u, p
}

// rankBiserial converts a U statistic into the rank-biserial correlation.
// Negative values mean the first group tends to rank lower.
func rankBiserial(u float64, n1, n2 int) float64 {
	return 1 - 2*u/(float64(n1)*float64(n2))
}

// rankWithTies assigns average ranks (1-based) and returns the tie
// correction term sum(t^3 - t) over tie groups.
func rankWithTies(values []float64) (ranks []float64, tieTerm float64) {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		if t := float64(j - i + 1); t > 1 {
			tieTerm += t*t*t - t
		}
		i = j + 1
	}
	return ranks, tieTerm
}
