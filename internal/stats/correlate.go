package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Correlations holds a symmetric Spearman matrix over the given columns.
// Entries are NaN where fewer than three paired observations exist.
type Correlations struct {
	Columns []string
	Matrix  [][]float64
	Notes   []string
}

// At returns the coefficient for the named pair, NaN if either column is
// unknown.
func (c Correlations) At(col1, col2 string) float64 {
	i := indexOf(c.Columns, col1)
	j := indexOf(c.Columns, col2)
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return c.Matrix[i][j]
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Correlate builds the pairwise Spearman matrix. columns maps a name to a
// row-aligned slice where nil entries mark missing values; every slice must
// have the same length. Pairs are correlated over rows where both values
// are present.
func Correlate(names []string, columns map[string][]*float64) Correlations {
	k := len(names)
	c := Correlations{
		Columns: names,
		Matrix:  make([][]float64, k),
	}
	for i := range c.Matrix {
		c.Matrix[i] = make([]float64, k)
	}

	for i := 0; i < k; i++ {
		c.Matrix[i][i] = 1
		for j := i + 1; j < k; j++ {
			rho := spearmanPairwise(columns[names[i]], columns[names[j]])
			c.Matrix[i][j] = rho
			c.Matrix[j][i] = rho
			if note := interpretCorrelation(names[i], names[j], rho); note != "" {
				c.Notes = append(c.Notes, note)
			}
		}
	}
	return c
}

// spearmanPairwise ranks the complete pairs of two columns and returns the
// Pearson correlation of the ranks.
func spearmanPairwise(a, b []*float64) float64 {
	var xs, ys []float64
	for i := range a {
		if i >= len(b) {
			break
		}
		if a[i] == nil || b[i] == nil {
			continue
		}
		xs = append(xs, *a[i])
		ys = append(ys, *b[i])
	}
	if len(xs) < 3 {
		return math.NaN()
	}
	rx, _ := rankWithTies(xs)
	ry, _ := rankWithTies(ys)
	return stat.Correlation(rx, ry, nil)
}

func interpretCorrelation(col1, col2 string, rho float64) string {
	abs := math.Abs(rho)
	if math.IsNaN(rho) || abs <= 0.4 {
		return ""
	}
	strength := "Moderate"
	if abs > 0.7 {
		strength = "Strong"
	}
	direction := "positive"
	if rho < 0 {
		direction = "negative"
	}
	return fmt.Sprintf("%s %s correlation between %s and %s (r=%.3f)", strength, direction, col1, col2, rho)
}
