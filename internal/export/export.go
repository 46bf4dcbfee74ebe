// Package export renders a finished analysis into its shareable artifacts:
// an annotated Excel workbook and a plain CSV of the per-document table.
// The Readability_Data sheet name and column order are a contract; the
// re-analysis loader validates incoming workbooks against them.
package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/healthtextlab/medread/internal/classify"
	"github.com/healthtextlab/medread/internal/dataset"
	"github.com/healthtextlab/medread/internal/stats"
)

// Sheet names in the exported workbook.
const (
	SummarySheet = "Summary"
	DataSheet    = "Readability_Data"
	StatsSheet   = "Statistical_Analysis"
	TextSheet    = "Full_Text"
	ClassSheet   = "Classification_Details"
)

// DataColumns is the fixed column order of the Readability_Data sheet and of
// the CSV table.
var DataColumns = []string{
	"rank", "url", "domain", "source_type", "classification_confidence",
	"GFI", "SMOG", "FKG", "ARI", "mean_readability",
	"word_count", "sentence_count", "status",
}

// textCellLimit keeps extracted text under the 32767-character spreadsheet
// cell maximum.
const textCellLimit = 32000

// maxColWidth caps auto-sized column widths.
const maxColWidth = 50

// Workbook writes the five-sheet analysis workbook to path. narrative is
// optional free text appended to the Summary sheet when non-empty.
func Workbook(path string, ds *dataset.Dataset, an *stats.Analysis, narrative string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{DataSheet, StatsSheet, TextSheet, ClassSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := writeSummary(f, st, ds, an, narrative); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeData(f, st, ds); err != nil {
		return fmt.Errorf("data sheet: %w", err)
	}
	if err := writeStats(f, st, an); err != nil {
		return fmt.Errorf("statistics sheet: %w", err)
	}
	if err := writeFullText(f, st, ds); err != nil {
		return fmt.Errorf("full text sheet: %w", err)
	}
	if err := writeClassification(f, st, ds); err != nil {
		return fmt.Errorf("classification sheet: %w", err)
	}

	idx, err := f.GetSheetIndex(SummarySheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// styles holds the style IDs shared across sheets.
type styles struct {
	header int
	score  int // one decimal place shown, full precision stored
	stat   int // three decimal places
	green  int
	yellow int
	red    int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F81BD"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return st, fmt.Errorf("header style: %w", err)
	}

	one := "0.0"
	if st.score, err = f.NewStyle(&excelize.Style{CustomNumFmt: &one}); err != nil {
		return st, fmt.Errorf("score style: %w", err)
	}
	three := "0.000"
	if st.stat, err = f.NewStyle(&excelize.Style{CustomNumFmt: &three}); err != nil {
		return st, fmt.Errorf("statistic style: %w", err)
	}

	for _, c := range []struct {
		color string
		dst   *int
	}{
		{"90EE90", &st.green},
		{"FFFF99", &st.yellow},
		{"FF9999", &st.red},
	} {
		id, err := f.NewConditionalStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{c.color}},
		})
		if err != nil {
			return st, fmt.Errorf("conditional style %s: %w", c.color, err)
		}
		*c.dst = id
	}
	return st, nil
}

// sheetWriter appends rows to one sheet, tracking column widths and the
// first write error.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	row    int
	err    error
	widths []float64
}

func newSheetWriter(f *excelize.File, sheet string) *sheetWriter {
	return &sheetWriter{f: f, sheet: sheet}
}

// writeRow appends one row. Calling it with no cells leaves a blank
// separator row.
func (w *sheetWriter) writeRow(cells ...any) {
	if w.err != nil {
		return
	}
	w.row++
	if len(cells) == 0 {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &cells); err != nil {
		w.err = err
		return
	}
	for i, v := range cells {
		for len(w.widths) <= i {
			w.widths = append(w.widths, 0)
		}
		if wd := displayWidth(v); wd > w.widths[i] {
			w.widths[i] = wd
		}
	}
}

// finish styles the header row, freezes it, and sets column widths from the
// longest display value seen, capped at maxColWidth.
func (w *sheetWriter) finish(headerStyle int) error {
	if w.err != nil {
		return w.err
	}
	if len(w.widths) > 0 {
		last, err := excelize.ColumnNumberToName(len(w.widths))
		if err != nil {
			return err
		}
		if err := w.f.SetCellStyle(w.sheet, "A1", last+"1", headerStyle); err != nil {
			return err
		}
		for i, wd := range w.widths {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			if err := w.f.SetColWidth(w.sheet, name, name, math.Min(wd+2, maxColWidth)); err != nil {
				return err
			}
		}
	}
	return w.f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// displayWidth estimates how wide a cell renders. Floats display with at most
// a few decimals, so their width is estimated from a short form rather than
// the full-precision stored value.
func displayWidth(v any) float64 {
	var s string
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', 2, 64)
	default:
		s = fmt.Sprint(x)
	}
	return float64(utf8.RuneCountInString(s))
}

func writeSummary(f *excelize.File, st styles, ds *dataset.Dataset, an *stats.Analysis, narrative string) error {
	w := newSheetWriter(f, SummarySheet)

	success := ds.CountStatus(dataset.StatusSuccess)
	rate := 0.0
	if ds.Len() > 0 {
		rate = 100 * float64(success) / float64(ds.Len())
	}

	w.writeRow("Field", "Value")
	w.writeRow("Query", ds.Query)
	w.writeRow("Run started", ds.StartedAt.Format("2006-01-02 15:04:05"))
	w.writeRow("Exported", time.Now().UTC().Format("2006-01-02 15:04:05"))
	w.writeRow("Documents", ds.Len())
	w.writeRow("Successful extractions", success)
	w.writeRow("Failed", ds.Len()-success)
	w.writeRow("Success rate", fmt.Sprintf("%.1f%%", rate))
	w.writeRow("Institutional sources", ds.CountSource(classify.Institutional))
	w.writeRow("Private sources", ds.CountSource(classify.Private))
	if d, ok := an.Overall["mean_readability"]; ok {
		w.writeRow("Mean readability (overall)", fmt.Sprintf("%.2f", d.Mean))
	}
	w.writeRow("Significance level", an.Alpha)
	w.writeRow("Significant metrics", significantList(an))

	if narrative != "" {
		w.writeRow()
		w.writeRow("Narrative summary")
		w.writeRow(truncateRunes(narrative, textCellLimit))
	}
	return w.finish(st.header)
}

func significantList(an *stats.Analysis) string {
	var names []string
	for _, m := range dataset.MetricColumns {
		if c, ok := an.Comparisons[m]; ok && c.Significant {
			names = append(names, m)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func writeData(f *excelize.File, st styles, ds *dataset.Dataset) error {
	w := newSheetWriter(f, DataSheet)

	header := make([]any, len(DataColumns))
	for i, c := range DataColumns {
		header[i] = c
	}
	w.writeRow(header...)

	for i := range ds.Records {
		r := &ds.Records[i]
		w.writeRow(
			r.Rank, r.URL, r.Domain, r.SourceType, r.Confidence,
			floatCell(r.GFI), floatCell(r.SMOG), floatCell(r.FKG), floatCell(r.ARI),
			floatCell(r.MeanReadability),
			r.WordCount, r.SentenceCount, string(r.Status),
		)
	}
	if err := w.finish(st.header); err != nil {
		return err
	}
	if ds.Len() == 0 {
		return nil
	}

	first := colFor("GFI")
	mean := colFor("mean_readability")
	lastRow := ds.Len() + 1
	if err := f.SetCellStyle(DataSheet, first+"2", fmt.Sprintf("%s%d", mean, lastRow), st.score); err != nil {
		return err
	}

	// Traffic-light fills over mean readability: grade 8 and under reads as
	// generally accessible, above 10 as difficult.
	ref := fmt.Sprintf("%s2:%s%d", mean, mean, lastRow)
	return f.SetConditionalFormat(DataSheet, ref, []excelize.ConditionalFormatOptions{
		{Type: "cell", Criteria: "<=", Value: "8", Format: &st.green},
		{Type: "cell", Criteria: "between", MinValue: "8", MaxValue: "10", Format: &st.yellow},
		{Type: "cell", Criteria: ">", Value: "10", Format: &st.red},
	})
}

func writeStats(f *excelize.File, st styles, an *stats.Analysis) error {
	w := newSheetWriter(f, StatsSheet)

	w.writeRow("Metric", "Test", "Statistic", "p-value", "Significant",
		"Effect size", "Effect measure", "Institutional mean", "Private mean", "Direction")
	for _, m := range dataset.MetricColumns {
		if msg, ok := an.Failures[m]; ok {
			w.writeRow(m, "not run: "+msg)
			continue
		}
		c, ok := an.Comparisons[m]
		if !ok {
			continue
		}
		w.writeRow(m, c.TestUsed, c.Statistic, c.PValue, yesNo(c.Significant),
			c.EffectSize, c.EffectName, c.Group1Mean, c.Group2Mean, c.Direction)
	}
	compBottom := w.row

	w.writeRow()
	w.writeRow("Normality (Shapiro-Wilk)")
	w.writeRow("Metric", "Group", "W", "p-value", "Normal", "Note")
	normTop := w.row + 1
	for _, m := range dataset.MetricColumns {
		for _, g := range []string{classify.Institutional, classify.Private} {
			n := an.Normality[m][g]
			w.writeRow(m, g, floatCell(n.Statistic), floatCell(n.PValue), yesNo(n.Normal), n.Note)
		}
	}
	normBottom := w.row

	cols := an.Correlations.Columns
	w.writeRow()
	w.writeRow("Spearman correlation matrix")
	head := make([]any, 0, len(cols)+1)
	head = append(head, "")
	for _, c := range cols {
		head = append(head, c)
	}
	w.writeRow(head...)
	matrixTop := w.row + 1
	for i, name := range cols {
		row := make([]any, 0, len(cols)+1)
		row = append(row, name)
		for j := range cols {
			rho := an.Correlations.Matrix[i][j]
			if math.IsNaN(rho) {
				row = append(row, nil)
			} else {
				row = append(row, rho)
			}
		}
		w.writeRow(row...)
	}
	matrixBottom := w.row
	for _, note := range an.Correlations.Notes {
		w.writeRow(note)
	}

	w.writeRow()
	w.writeRow("Interpretation")
	for _, m := range dataset.MetricColumns {
		if c, ok := an.Comparisons[m]; ok {
			w.writeRow(c.Interpretation())
		}
	}
	if err := w.finish(st.header); err != nil {
		return err
	}

	for _, span := range []struct {
		from, to string
	}{
		{"C2", fmt.Sprintf("F%d", compBottom)},
		{"H2", fmt.Sprintf("I%d", compBottom)},
		{fmt.Sprintf("C%d", normTop), fmt.Sprintf("D%d", normBottom)},
		{fmt.Sprintf("B%d", matrixTop), fmt.Sprintf("%s%d", colLetter(len(cols)+1), matrixBottom)},
	} {
		if err := f.SetCellStyle(StatsSheet, span.from, span.to, st.stat); err != nil {
			return err
		}
	}
	return nil
}

func writeFullText(f *excelize.File, st styles, ds *dataset.Dataset) error {
	w := newSheetWriter(f, TextSheet)
	w.writeRow("rank", "url", "extracted_text")
	for i := range ds.Records {
		r := &ds.Records[i]
		w.writeRow(r.Rank, r.URL, truncateRunes(r.ExtractedText, textCellLimit))
	}
	return w.finish(st.header)
}

func writeClassification(f *excelize.File, st styles, ds *dataset.Dataset) error {
	w := newSheetWriter(f, ClassSheet)
	w.writeRow("rank", "url", "domain", "title", "source_type", "confidence", "ambiguous")
	for i := range ds.Records {
		r := &ds.Records[i]
		res := classify.Result{Label: r.SourceType, Confidence: r.Confidence}
		w.writeRow(r.Rank, r.URL, r.Domain, r.Title, r.SourceType, r.Confidence, yesNo(res.Ambiguous()))
	}
	return w.finish(st.header)
}

// floatCell stores the full-precision value; nil leaves the cell empty. Cell
// styles trim the display, so re-reading a workbook reproduces the numbers
// exactly.
func floatCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func colFor(column string) string {
	for i, c := range DataColumns {
		if c == column {
			return colLetter(i + 1)
		}
	}
	return ""
}

func colLetter(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

// truncateRunes cuts s to at most n runes without splitting a character.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
