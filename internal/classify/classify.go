// Package classify labels a source as Institutional or Private from its URL
// and page title using additive weighted evidence. The evidence tables are
// injected configuration; the scoring algorithm itself never changes.
package classify

import (
	"net/url"
	"strings"
)

const (
	Institutional = "Institutional"
	Private       = "Private"
)

// Tier weights. Each tier contributes at most once, so confidence spans 0-6.
const (
	domainWeight  = 3
	patternWeight = 2
	keywordWeight = 1

	// DefaultThreshold is the confidence at which a source becomes
	// Institutional.
	DefaultThreshold = 3
)

// Result carries the label, the evidence score behind it, and which table
// entries matched, for diagnostics and the classification report.
type Result struct {
	Label      string
	Confidence int

	MatchedDomain  string
	MatchedPattern string
	MatchedKeyword string
}

// Ambiguous reports whether the record carries some institutional evidence
// but stayed below the threshold, flagging it for manual review.
func (r Result) Ambiguous() bool {
	return r.Label == Private && r.Confidence > 0
}

// Classifier scores URL/title pairs against its evidence tables. Zero-config
// construction via New(DefaultTables(), 0) reproduces the curated defaults.
type Classifier struct {
	tables    Tables
	threshold int
}

// New builds a classifier over the given tables. A non-positive threshold
// falls back to DefaultThreshold.
func New(tables Tables, threshold int) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{tables: tables, threshold: threshold}
}

// Classify is pure and deterministic: identical inputs always produce the
// identical result, and no I/O happens here.
func (c *Classifier) Classify(rawURL, title string) Result {
	domain := Domain(rawURL)
	urlLower := strings.ToLower(rawURL)
	domainLower := strings.ToLower(domain)
	titleLower := strings.ToLower(title)

	var res Result

	for _, d := range c.tables.Domains {
		dl := strings.ToLower(d)
		if strings.HasSuffix(domainLower, dl) || strings.Contains(domainLower, dl) {
			res.Confidence += domainWeight
			res.MatchedDomain = d
			break
		}
	}

	for _, p := range c.tables.Patterns {
		if strings.Contains(urlLower, strings.ToLower(p)) {
			res.Confidence += patternWeight
			res.MatchedPattern = p
			break
		}
	}

	if titleLower != "" {
		for _, k := range c.tables.Keywords {
			if strings.Contains(titleLower, strings.ToLower(k)) {
				res.Confidence += keywordWeight
				res.MatchedKeyword = k
				break
			}
		}
	}

	if res.Confidence >= c.threshold {
		res.Label = Institutional
	} else {
		res.Label = Private
	}
	return res
}

// Domain extracts the host from a URL, dropping any leading "www." prefix.
// On unparsable input it returns the input unchanged so callers still have
// something to report.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	host := u.Hostname()
	return strings.TrimPrefix(host, "www.")
}

// Distribution summarizes how a batch of results classified, for the summary
// sheet and the final log line.
type Distribution struct {
	Total         int
	Institutional int
	Private       int
	AvgConfidence float64
	High          int // confidence >= 3
	Medium        int // confidence 1-2
	Low           int // confidence 0
}

// Distribute tallies classification results.
func Distribute(results []Result) Distribution {
	d := Distribution{Total: len(results)}
	sum := 0
	for _, r := range results {
		sum += r.Confidence
		if r.Label == Institutional {
			d.Institutional++
		} else {
			d.Private++
		}
		switch {
		case r.Confidence >= 3:
			d.High++
		case r.Confidence >= 1:
			d.Medium++
		default:
			d.Low++
		}
	}
	if d.Total > 0 {
		d.AvgConfidence = float64(sum) / float64(d.Total)
	}
	return d
}
