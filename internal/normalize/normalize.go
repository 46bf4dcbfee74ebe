// Package normalize holds the pure text transforms shared by extraction,
// validation, and scoring. Everything here is deterministic and free of I/O.
package normalize

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	urlRe   = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailRe = regexp.MustCompile(`\S+@\S+`)
	spaceRe = regexp.MustCompile(`\s+`)
	// Keep letters, digits, underscore, whitespace, and common punctuation.
	// Everything else (markup leftovers, control characters, symbols) goes.
	junkRe     = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:()'"-]+`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)
)

// Clean runs the normalization chain: decode HTML entities, NFC-normalize,
// strip URLs and email addresses, collapse whitespace runs to single spaces,
// drop characters outside the whitelist, trim edges.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	s = norm.NFC.String(s)
	s = urlRe.ReplaceAllString(s, "")
	s = emailRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	s = junkRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Words splits text into whitespace-separated tokens.
func Words(s string) []string {
	return strings.Fields(s)
}

// WordCount returns the number of whitespace-separated tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Sentences splits text on runs of sentence terminators (. ! ?) and returns
// the non-empty segments.
func Sentences(s string) []string {
	parts := sentenceRe.Split(s, -1)
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// SentenceCount returns the number of non-empty sentence segments.
func SentenceCount(s string) int {
	return len(Sentences(s))
}
