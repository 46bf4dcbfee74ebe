// Package report renders the PDF summary of one analysis run: headline
// findings per metric, descriptive statistics for both source groups, the
// classification distribution, and the optional narrative.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/healthtextlab/medread/internal/classify"
	"github.com/healthtextlab/medread/internal/dataset"
	"github.com/healthtextlab/medread/internal/readability"
	"github.com/healthtextlab/medread/internal/stats"
)

const reportTitle = "Medical Website Readability Analysis"

// Summary writes the PDF report to path. narrative is optional free text
// appended as its own section when non-empty.
func Summary(path string, ds *dataset.Dataset, an *stats.Analysis, narrative string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts cover cp1252 only; the translator maps everything else to
	// its closest representable form.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(reportTitle, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, reportTitle, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Query: %s", ds.Query)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, fmt.Sprintf("Run started %s, report generated %s",
		ds.StartedAt.Format("2006-01-02 15:04"), time.Now().UTC().Format("2006-01-02 15:04")),
		"", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	writeOverview(pdf, tr, ds, an)
	writeFindings(pdf, tr, an)
	writeDescriptives(pdf, tr, an)
	writeClassification(pdf, tr, ds)
	if narrative != "" {
		heading(pdf, "Narrative summary")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(narrative), "", "L", false)
		pdf.Ln(2)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func writeOverview(pdf *gofpdf.Fpdf, tr func(string) string, ds *dataset.Dataset, an *stats.Analysis) {
	heading(pdf, "Overview")
	success := ds.CountStatus(dataset.StatusSuccess)
	lines := []string{
		fmt.Sprintf("Documents analyzed: %d (%d with extracted text, %d failed)",
			ds.Len(), success, ds.Len()-success),
		fmt.Sprintf("Source groups: %d institutional, %d private",
			ds.CountSource(classify.Institutional), ds.CountSource(classify.Private)),
	}
	if d, ok := an.Overall["mean_readability"]; ok {
		lines = append(lines, fmt.Sprintf("Overall mean readability: %.2f, %s",
			d.Mean, readability.Category(d.Mean)))
	}
	lines = append(lines, fmt.Sprintf("Significance level: %.2f", an.Alpha))
	for _, l := range lines {
		pdf.CellFormat(0, 5.5, tr(l), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func writeFindings(pdf *gofpdf.Fpdf, tr func(string) string, an *stats.Analysis) {
	heading(pdf, "Findings")

	widths := []float64{30, 45, 25, 25, 45}
	tableRow(pdf, tr, widths, true, "Metric", "Test", "Statistic", "p-value", "Effect size")
	for _, m := range dataset.MetricColumns {
		if msg, ok := an.Failures[m]; ok {
			tableRow(pdf, tr, widths, false, m, "not run", "", "", msg)
			continue
		}
		c, ok := an.Comparisons[m]
		if !ok {
			continue
		}
		p := fmt.Sprintf("%.4f", c.PValue)
		if c.Significant {
			p += " *"
		}
		tableRow(pdf, tr, widths, false, m, c.TestUsed,
			fmt.Sprintf("%.3f", c.Statistic), p,
			fmt.Sprintf("%s = %.3f", c.EffectName, c.EffectSize))
	}
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("* p < %.2f", an.Alpha), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "", 10)
	for _, m := range dataset.MetricColumns {
		if c, ok := an.Comparisons[m]; ok {
			pdf.MultiCell(0, 5, tr(c.Interpretation()), "", "L", false)
		}
	}
	pdf.Ln(3)
}

func writeDescriptives(pdf *gofpdf.Fpdf, tr func(string) string, an *stats.Analysis) {
	heading(pdf, "Descriptive statistics")

	widths := []float64{30, 28, 14, 20, 20, 20, 20, 20}
	tableRow(pdf, tr, widths, true, "Metric", "Group", "n", "Mean", "SD", "Median", "Min", "Max")
	for _, m := range dataset.MetricColumns {
		for _, g := range []string{classify.Institutional, classify.Private} {
			d, ok := an.ByGroup[m][g]
			if !ok {
				tableRow(pdf, tr, widths, false, m, g, "0", "", "", "", "", "")
				continue
			}
			tableRow(pdf, tr, widths, false, m, g, fmt.Sprintf("%d", d.N),
				fmt.Sprintf("%.2f", d.Mean), fmtStd(d.Std), fmt.Sprintf("%.2f", d.Median),
				fmt.Sprintf("%.2f", d.Min), fmt.Sprintf("%.2f", d.Max))
		}
	}
	pdf.Ln(3)
}

// fmtStd renders the sample standard deviation, blank for the single
// observation case where it is undefined.
func fmtStd(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.2f", v)
}

func writeClassification(pdf *gofpdf.Fpdf, tr func(string) string, ds *dataset.Dataset) {
	heading(pdf, "Source classification")
	total := ds.Len()
	for _, label := range []string{classify.Institutional, classify.Private} {
		n := ds.CountSource(label)
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(n) / float64(total)
		}
		pdf.CellFormat(0, 5.5, tr(fmt.Sprintf("%s: %d (%.1f%%)", label, n, pct)),
			"", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func tableRow(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, header bool, cells ...string) {
	if header {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(79, 129, 189)
		pdf.SetTextColor(255, 255, 255)
	} else {
		pdf.SetFont("Helvetica", "", 9)
	}
	for i, c := range cells {
		w := 0.0
		if i < len(widths) {
			w = widths[i]
		}
		ln := 0
		if i == len(cells)-1 {
			ln = 1
		}
		pdf.CellFormat(w, 6, tr(c), "1", ln, "L", header, 0, "")
	}
	if header {
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.SetFont("Helvetica", "", 10)
}
