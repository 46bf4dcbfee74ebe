package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/healthtextlab/medread/internal/classify"
	"github.com/healthtextlab/medread/internal/dataset"
	"github.com/healthtextlab/medread/internal/stats"
)

// manifestEntry is a compact record of a single analyzed URL.
type manifestEntry struct {
	Rank       int    `json:"rank"`
	URL        string `json:"url"`
	Domain     string `json:"domain"`
	Status     string `json:"status"`
	SourceType string `json:"source_type"`
	Confidence int    `json:"confidence"`
	Words      int    `json:"words,omitempty"`
	SHA256     string `json:"sha256,omitempty"`
}

// runManifest captures run details that make an exported workbook
// reproducible and auditable without reopening it.
type runManifest struct {
	Query         string          `json:"query"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Version       string          `json:"version"`
	Documents     int             `json:"documents"`
	Successful    int             `json:"successful"`
	Institutional int             `json:"institutional"`
	Private       int             `json:"private"`
	Alpha         float64         `json:"significance_level"`
	Significant   []string        `json:"significant_metrics,omitempty"`
	Workbook      string          `json:"workbook"`
	Report        string          `json:"report"`
	Sources       []manifestEntry `json:"sources"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of the given text.
func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// buildManifest assembles the sidecar content for one finished run. The
// digest covers the exact extracted text each score was computed from.
func buildManifest(ds *dataset.Dataset, an *stats.Analysis, paths artifacts) runManifest {
	m := runManifest{
		Query:         ds.Query,
		GeneratedAt:   time.Now().UTC(),
		Version:       BuildVersion,
		Documents:     ds.Len(),
		Successful:    ds.CountStatus(dataset.StatusSuccess),
		Institutional: ds.CountSource(classify.Institutional),
		Private:       ds.CountSource(classify.Private),
		Workbook:      filepath.Base(paths.Workbook),
		Report:        filepath.Base(paths.Report),
	}
	if an != nil {
		m.Alpha = an.Alpha
		for _, metric := range dataset.MetricColumns {
			if comp, ok := an.Comparisons[metric]; ok && comp.Significant {
				m.Significant = append(m.Significant, metric)
			}
		}
	}
	for i := range ds.Records {
		r := &ds.Records[i]
		e := manifestEntry{
			Rank:       r.Rank,
			URL:        r.URL,
			Domain:     r.Domain,
			Status:     string(r.Status),
			SourceType: r.SourceType,
			Confidence: r.Confidence,
			Words:      r.WordCount,
		}
		if r.ExtractedText != "" {
			e.SHA256 = computeSHA256Hex(r.ExtractedText)
		}
		m.Sources = append(m.Sources, e)
	}
	return m
}

// writeManifest writes the sidecar JSON next to the workbook.
func writeManifest(path string, m runManifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
