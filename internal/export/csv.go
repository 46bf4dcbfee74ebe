package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/healthtextlab/medread/internal/dataset"
)

// CSV writes the Readability_Data table to path, same column order as the
// workbook sheet. Scores keep full precision; absent scores are empty fields.
func CSV(path string, ds *dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	w := csv.NewWriter(f)

	write := func(rec []string) error {
		if err := w.Write(rec); err != nil {
			f.Close()
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	}

	if err := write(DataColumns); err != nil {
		return err
	}
	for i := range ds.Records {
		r := &ds.Records[i]
		rec := []string{
			strconv.Itoa(r.Rank), r.URL, r.Domain, r.SourceType, strconv.Itoa(r.Confidence),
			scoreField(r.GFI), scoreField(r.SMOG), scoreField(r.FKG), scoreField(r.ARI),
			scoreField(r.MeanReadability),
			strconv.Itoa(r.WordCount), strconv.Itoa(r.SentenceCount), string(r.Status),
		}
		if err := write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

func scoreField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
