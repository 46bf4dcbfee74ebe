package stats

import (
	"strings"
	"testing"
)

// Standard normal quantiles at (i-0.5)/10, the shape both synthetic normal
// groups below are built from.
var normalShape10 = []float64{
	-1.6449, -1.0364, -0.6745, -0.3853, -0.1257,
	0.1257, 0.3853, 0.6745, 1.0364, 1.6449,
}

func scaleShift(values []float64, scale, shift float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v*scale + shift
	}
	return out
}

func TestRankWithTies(t *testing.T) {
	ranks, tieTerm := rankWithTies([]float64{3, 1, 4, 1, 5})
	want := []float64{3, 1.5, 4, 1.5, 5}
	for i := range want {
		if ranks[i] != want[i] {
			t.Fatalf("ranks = %v, want %v", ranks, want)
		}
	}
	if tieTerm != 6 {
		t.Fatalf("tieTerm = %v, want 6 (one pair)", tieTerm)
	}
}

func TestMannWhitneyUFullySeparated(t *testing.T) {
	u, p := mannWhitneyU([]float64{1, 2, 3}, []float64{4, 5, 6})
	if u != 0 {
		t.Fatalf("U = %v, want 0 when all of group1 ranks below group2", u)
	}
	if !closeTo(p, 0.0809, 0.002) {
		t.Fatalf("p = %v, want about 0.0809", p)
	}
	if r := rankBiserial(u, 3, 3); r != 1 {
		t.Fatalf("rank-biserial = %v, want 1", r)
	}
}

func TestMannWhitneyUSymmetry(t *testing.T) {
	g1 := []float64{1, 4, 6, 9}
	g2 := []float64{2, 3, 7, 8, 10}
	u1, p1 := mannWhitneyU(g1, g2)
	u2, p2 := mannWhitneyU(g2, g1)
	if !closeTo(u1+u2, float64(len(g1)*len(g2)), 1e-9) {
		t.Fatalf("U1 + U2 = %v, want n1*n2 = 20", u1+u2)
	}
	if !closeTo(p1, p2, 1e-12) {
		t.Fatalf("two-sided p not symmetric: %v vs %v", p1, p2)
	}
}

func TestTTestEqualVarHandChecked(t *testing.T) {
	tt, p := tTestEqualVar([]float64{1, 2, 3, 4, 5}, []float64{3, 4, 5, 6, 7})
	if !closeTo(tt, -2, 1e-9) {
		t.Fatalf("t = %v, want -2", tt)
	}
	if !closeTo(p, 0.0805, 0.002) {
		t.Fatalf("p = %v, want about 0.0805 at 8 df", p)
	}
}

func TestCohensDPooled(t *testing.T) {
	d := cohensD([]float64{1, 2, 3, 4, 5}, []float64{3, 4, 5, 6, 7})
	if !closeTo(d, -1.2649, 0.001) {
		t.Fatalf("d = %v, want about -1.265", d)
	}
}

func TestNormalityVerdicts(t *testing.T) {
	r := Normality(scaleShift(normalShape10, 2, 20), DefaultAlpha)
	if !r.Normal || r.PValue == nil {
		t.Fatalf("ideal sample judged non-normal: %+v", r)
	}

	r = Normality([]float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512}, DefaultAlpha)
	if r.Normal {
		t.Fatalf("geometric sample judged normal: %+v", r)
	}

	r = Normality([]float64{1, 2}, DefaultAlpha)
	if r.Normal || r.Statistic != nil {
		t.Fatalf("tiny sample should be non-normal without a statistic: %+v", r)
	}
	if !strings.Contains(r.Note, "too small") {
		t.Fatalf("Note = %q, want mention of sample size", r.Note)
	}
}

func TestCompareGroupsPicksTTest(t *testing.T) {
	g1 := scaleShift(normalShape10, 2, 20)
	g2 := scaleShift(normalShape10, 2, 24)
	c, err := CompareGroups("GFI", g1, g2, DefaultAlpha)
	if err != nil {
		t.Fatalf("CompareGroups: %v", err)
	}
	if c.TestUsed != TestTTest {
		t.Fatalf("TestUsed = %q, want %q", c.TestUsed, TestTTest)
	}
	if !c.Group1Normal || !c.Group2Normal {
		t.Fatalf("normality flags = %v/%v, want true/true", c.Group1Normal, c.Group2Normal)
	}
	if !c.Significant {
		t.Fatalf("4-point shift not significant: p = %v", c.PValue)
	}
	if c.Statistic >= 0 {
		t.Fatalf("t = %v, want negative for lower group1", c.Statistic)
	}
	if c.EffectName != "Cohen's d" {
		t.Fatalf("EffectName = %q", c.EffectName)
	}
	if c.Direction != "Institutional < Private" {
		t.Fatalf("Direction = %q", c.Direction)
	}
}

func TestCompareGroupsPicksMannWhitney(t *testing.T) {
	g1 := []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512}
	g2 := []float64{3, 6, 12, 24, 48, 96, 192, 384, 768, 1536}
	c, err := CompareGroups("SMOG", g1, g2, DefaultAlpha)
	if err != nil {
		t.Fatalf("CompareGroups: %v", err)
	}
	if c.TestUsed != TestMannWhitney {
		t.Fatalf("TestUsed = %q, want %q", c.TestUsed, TestMannWhitney)
	}
	if c.Group1Normal || c.Group2Normal {
		t.Fatalf("normality flags = %v/%v, want false/false", c.Group1Normal, c.Group2Normal)
	}
	if c.EffectName != "Rank-biserial r" {
		t.Fatalf("EffectName = %q", c.EffectName)
	}
	if c.EffectSize < -1 || c.EffectSize > 1 {
		t.Fatalf("rank-biserial = %v out of [-1, 1]", c.EffectSize)
	}
}

func TestCompareGroupsRejectsTinyGroups(t *testing.T) {
	if _, err := CompareGroups("ARI", []float64{1}, []float64{2, 3, 4}, DefaultAlpha); err == nil {
		t.Fatalf("expected error for single-observation group")
	}
}

func TestComparisonInterpretation(t *testing.T) {
	c := Comparison{Metric: "GFI", PValue: 0.003, Significant: true, Direction: "Institutional < Private"}
	got := c.Interpretation()
	if !strings.Contains(got, "institutional sources are more readable") {
		t.Fatalf("Interpretation = %q", got)
	}
	c = Comparison{Metric: "GFI", PValue: 0.4}
	if got := c.Interpretation(); !strings.Contains(got, "No significant difference") {
		t.Fatalf("Interpretation = %q", got)
	}
}
