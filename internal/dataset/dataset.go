package dataset

import (
	"fmt"
	"strings"
	"time"
)

// Status is the terminal outcome recorded for one URL. A record gets exactly
// one status; retries happen upstream and are not visible here.
type Status string

const (
	StatusSuccess          Status = "success"
	StatusTimeout          Status = "timeout"
	StatusRequestError     Status = "request_error"
	StatusExtractionFailed Status = "extraction_failed"
	StatusInsufficientText Status = "insufficient_text"
	StatusError            Status = "error"
)

// HTTPError returns the status for a failed HTTP response, e.g. http_error_404.
func HTTPError(code int) Status {
	return Status(fmt.Sprintf("http_error_%d", code))
}

// IsHTTPError reports whether s is an http_error_<code> status.
func (s Status) IsHTTPError() bool {
	return strings.HasPrefix(string(s), "http_error_")
}

// Metric names as they appear in the exported table. MetricColumns is the
// set compared between source groups.
var MetricColumns = []string{"GFI", "SMOG", "FKG", "ARI", "mean_readability"}

// Record is the unit of work: one searched URL with everything learned about
// it. Score fields are nil until computed and stay nil when a formula result
// was rejected.
type Record struct {
	Rank   int
	URL    string
	Domain string
	Title  string

	Status Status

	ExtractedText string
	WordCount     int
	SentenceCount int
	Warnings      []string

	SourceType string
	Confidence int

	GFI             *float64
	SMOG            *float64
	FKG             *float64
	ARI             *float64
	MeanReadability *float64
}

// Score returns the value of the named metric column, or nil.
func (r *Record) Score(metric string) *float64 {
	switch metric {
	case "GFI":
		return r.GFI
	case "SMOG":
		return r.SMOG
	case "FKG":
		return r.FKG
	case "ARI":
		return r.ARI
	case "mean_readability":
		return r.MeanReadability
	}
	return nil
}

// Dataset is the ordered collection of records for one run. Records are
// appended in search-rank order during processing and read-only afterwards.
type Dataset struct {
	Query     string
	StartedAt time.Time
	Records   []Record
}

// New returns an empty dataset for the given query.
func New(query string) *Dataset {
	return &Dataset{Query: query, StartedAt: time.Now().UTC()}
}

// Append adds a finished record. Rank order is the caller's responsibility.
func (d *Dataset) Append(r Record) {
	d.Records = append(d.Records, r)
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// CountStatus returns how many records carry the given status.
func (d *Dataset) CountStatus(s Status) int {
	n := 0
	for i := range d.Records {
		if d.Records[i].Status == s {
			n++
		}
	}
	return n
}

// CountSource returns how many records carry the given source label.
func (d *Dataset) CountSource(label string) int {
	n := 0
	for i := range d.Records {
		if d.Records[i].SourceType == label {
			n++
		}
	}
	return n
}

// MetricValues collects the non-nil values of one metric across all records,
// regardless of group.
func (d *Dataset) MetricValues(metric string) []float64 {
	out := make([]float64, 0, len(d.Records))
	for i := range d.Records {
		if v := d.Records[i].Score(metric); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// GroupValues collects the non-nil values of one metric for records labeled
// with the given source type.
func (d *Dataset) GroupValues(metric, sourceType string) []float64 {
	out := make([]float64, 0, len(d.Records))
	for i := range d.Records {
		if d.Records[i].SourceType != sourceType {
			continue
		}
		if v := d.Records[i].Score(metric); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Float returns a pointer to v, for filling optional score fields.
func Float(v float64) *float64 { return &v }
