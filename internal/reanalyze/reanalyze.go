// Package reanalyze loads a previously exported workbook back into a
// dataset so the statistical stage can re-run over human corrections.
// Only the Readability_Data sheet is consulted; edits to other sheets
// never affect the result.
package reanalyze

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/healthtextlab/medread/internal/classify"
	"github.com/healthtextlab/medread/internal/dataset"
	"github.com/healthtextlab/medread/internal/export"
	"github.com/healthtextlab/medread/internal/readability"
)

// ErrInvalidWorkbook marks files rejected by validation. The wrapped message
// names the failed check.
var ErrInvalidWorkbook = errors.New("invalid workbook")

// RequiredColumns must all appear on the Readability_Data sheet. Columns
// beyond these are optional and recomputed or defaulted when absent.
var RequiredColumns = []string{"rank", "url", "domain", "source_type", "GFI", "SMOG", "FKG", "ARI"}

// minScoredRows is the fewest rows with at least one component score that
// still support a comparison.
const minScoredRows = 3

const (
	minScore = 0.0
	maxScore = 30.0
)

// LoadReport describes what the loader accepted and repaired.
type LoadReport struct {
	Rows            int
	ScoredRows      int
	RecomputedMeans int
	Warnings        []string
}

// Load validates path and converts its data sheet into a dataset. All
// rejections wrap ErrInvalidWorkbook. Validation order: file extension and
// readability, sheet presence, required columns, source labels, score
// ranges, minimum scored rows, URLs on every row.
func Load(path string) (*dataset.Dataset, LoadReport, error) {
	var rep LoadReport

	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return nil, rep, fmt.Errorf("%w: %s is not an .xlsx file", ErrInvalidWorkbook, filepath.Base(path))
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, rep, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	// Raw values, not display values: score cells store full precision
	// behind a one-decimal display format.
	rows, err := f.GetRows(export.DataSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, rep, fmt.Errorf("%w: sheet %q not found", ErrInvalidWorkbook, export.DataSheet)
	}
	if len(rows) == 0 {
		return nil, rep, fmt.Errorf("%w: sheet %q is empty", ErrInvalidWorkbook, export.DataSheet)
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := col[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, rep, fmt.Errorf("%w: missing columns %s", ErrInvalidWorkbook, strings.Join(missing, ", "))
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	ds := dataset.New(workbookQuery(f, path))
	for n, row := range rows[1:] {
		sheetRow := n + 2
		if blankRow(row) {
			continue
		}

		url := cell(row, "url")
		if url == "" {
			return nil, rep, fmt.Errorf("%w: row %d has no url", ErrInvalidWorkbook, sheetRow)
		}
		label := cell(row, "source_type")
		if label != classify.Institutional && label != classify.Private {
			return nil, rep, fmt.Errorf("%w: row %d has source_type %q, want %s or %s",
				ErrInvalidWorkbook, sheetRow, label, classify.Institutional, classify.Private)
		}

		r := dataset.Record{
			URL:        url,
			Domain:     cell(row, "domain"),
			Title:      cell(row, "title"),
			SourceType: label,
			Status:     dataset.Status(cell(row, "status")),
		}
		if r.Domain == "" {
			r.Domain = classify.Domain(url)
		}

		rank, err := strconv.Atoi(cell(row, "rank"))
		if err != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("row %d: unreadable rank, using sheet order", sheetRow))
			rank = len(ds.Records) + 1
		}
		r.Rank = rank
		r.Confidence = intCell(cell(row, "classification_confidence"))
		r.WordCount = intCell(cell(row, "word_count"))
		r.SentenceCount = intCell(cell(row, "sentence_count"))

		scored := false
		for _, m := range []struct {
			name string
			dst  **float64
		}{
			{"GFI", &r.GFI}, {"SMOG", &r.SMOG}, {"FKG", &r.FKG}, {"ARI", &r.ARI},
		} {
			v, ok, err := scoreCell(cell(row, m.name))
			if err != nil {
				rep.Warnings = append(rep.Warnings,
					fmt.Sprintf("row %d: unreadable %s %q ignored", sheetRow, m.name, cell(row, m.name)))
				continue
			}
			if !ok {
				continue
			}
			if v < minScore || v > maxScore {
				return nil, rep, fmt.Errorf("%w: row %d has %s=%v outside [%v,%v]",
					ErrInvalidWorkbook, sheetRow, m.name, v, minScore, maxScore)
			}
			*m.dst = dataset.Float(v)
			scored = true
		}

		if v, ok, err := scoreCell(cell(row, "mean_readability")); err == nil && ok {
			if v < minScore || v > maxScore {
				return nil, rep, fmt.Errorf("%w: row %d has mean_readability=%v outside [%v,%v]",
					ErrInvalidWorkbook, sheetRow, v, minScore, maxScore)
			}
			r.MeanReadability = dataset.Float(v)
		} else if scored {
			r.MeanReadability = readability.MeanOf(r.GFI, r.SMOG, r.FKG, r.ARI)
			rep.RecomputedMeans++
		}

		if scored {
			rep.ScoredRows++
		}
		ds.Append(r)
	}

	rep.Rows = ds.Len()
	if rep.ScoredRows < minScoredRows {
		return nil, rep, fmt.Errorf("%w: only %d rows carry a readability score, need at least %d",
			ErrInvalidWorkbook, rep.ScoredRows, minScoredRows)
	}
	return ds, rep, nil
}

// workbookQuery recovers the original query from the Summary sheet, falling
// back to the workbook filename.
func workbookQuery(f *excelize.File, path string) string {
	rows, err := f.GetRows(export.SummarySheet)
	if err == nil {
		for _, row := range rows {
			if len(row) >= 2 && strings.TrimSpace(row[0]) == "Query" {
				if q := strings.TrimSpace(row[1]); q != "" {
					return q
				}
			}
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// scoreCell parses one score cell. ok is false for an empty cell.
func scoreCell(s string) (v float64, ok bool, err error) {
	if s == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func intCell(s string) int {
	if s == "" {
		return 0
	}
	// Spreadsheet tools may store integers as "3" or "3.0".
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	return 0
}
