// Package stats compares readability metrics between institutional and
// private sources. It picks the two-sample test per metric from a
// Shapiro-Wilk normality check on both groups and reports effect sizes
// alongside p-values, plus a Spearman correlation matrix across metrics.
package stats

import (
	"github.com/healthtextlab/medread/internal/classify"
	"github.com/healthtextlab/medread/internal/dataset"
)

// DefaultAlpha is the significance level used when none is configured.
const DefaultAlpha = 0.05

// CorrelationColumns are the columns entering the Spearman matrix, in
// presentation order.
var CorrelationColumns = []string{"GFI", "SMOG", "FKG", "ARI", "rank"}

// Analysis aggregates every statistical output for one dataset. Maps are
// keyed by metric column; render in dataset.MetricColumns order.
type Analysis struct {
	Alpha        float64
	Overall      map[string]Descriptive
	ByGroup      map[string]map[string]Descriptive
	Normality    map[string]map[string]NormalityResult
	Comparisons  map[string]Comparison
	Failures     map[string]string
	Correlations Correlations
}

// Analyze runs the whole statistical battery. A metric whose comparison
// cannot run (too few observations in a group) lands in Failures and does
// not block the other metrics.
func Analyze(ds *dataset.Dataset, alpha float64) *Analysis {
	if alpha <= 0 {
		alpha = DefaultAlpha
	}
	a := &Analysis{
		Alpha:       alpha,
		Overall:     make(map[string]Descriptive),
		ByGroup:     make(map[string]map[string]Descriptive),
		Normality:   make(map[string]map[string]NormalityResult),
		Comparisons: make(map[string]Comparison),
		Failures:    make(map[string]string),
	}

	for _, metric := range dataset.MetricColumns {
		if d, ok := Describe(ds.MetricValues(metric)); ok {
			a.Overall[metric] = d
		}

		inst := ds.GroupValues(metric, classify.Institutional)
		priv := ds.GroupValues(metric, classify.Private)

		byGroup := make(map[string]Descriptive, 2)
		norm := make(map[string]NormalityResult, 2)
		for label, vals := range map[string][]float64{
			classify.Institutional: inst,
			classify.Private:       priv,
		} {
			if d, ok := Describe(vals); ok {
				byGroup[label] = d
			}
			norm[label] = Normality(vals, alpha)
		}
		a.ByGroup[metric] = byGroup
		a.Normality[metric] = norm

		comp, err := CompareGroups(metric, inst, priv, alpha)
		if err != nil {
			a.Failures[metric] = err.Error()
			continue
		}
		a.Comparisons[metric] = comp
	}

	a.Correlations = Correlate(CorrelationColumns, correlationInput(ds))
	return a
}

// correlationInput lays the dataset out as row-aligned columns, scores as
// recorded and ranks always present.
func correlationInput(ds *dataset.Dataset) map[string][]*float64 {
	cols := make(map[string][]*float64, len(CorrelationColumns))
	for _, r := range ds.Records {
		for _, metric := range CorrelationColumns {
			if metric == "rank" {
				rank := float64(r.Rank)
				cols[metric] = append(cols[metric], &rank)
				continue
			}
			cols[metric] = append(cols[metric], r.Score(metric))
		}
	}
	return cols
}
