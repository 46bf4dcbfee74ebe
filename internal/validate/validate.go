// Package validate gates extracted text before scoring. Hard gates assign a
// terminal status; soft gates only attach warnings, since short or
// boilerplate-heavy pages are still scoreable.
package validate

import (
	"fmt"
	"strings"

	"github.com/healthtextlab/medread/internal/dataset"
	"github.com/healthtextlab/medread/internal/normalize"
)

// Default gate thresholds.
const (
	DefaultMinWords         = 50
	DefaultMaxWords         = 50000
	DefaultMinSentences     = 3
	DefaultBoilerplateLimit = 8
)

// boilerplatePhrases are counted case-insensitively across the whole text.
var boilerplatePhrases = []string{
	"copyright", "all rights reserved", "terms of service",
	"privacy policy", "cookie policy", "accept cookies",
}

// Config holds the gate thresholds. Zero values fall back to defaults.
type Config struct {
	MinWords         int
	MaxWords         int
	MinSentences     int
	BoilerplateLimit int
}

func (c Config) withDefaults() Config {
	if c.MinWords <= 0 {
		c.MinWords = DefaultMinWords
	}
	if c.MaxWords <= 0 {
		c.MaxWords = DefaultMaxWords
	}
	if c.MinSentences <= 0 {
		c.MinSentences = DefaultMinSentences
	}
	if c.BoilerplateLimit <= 0 {
		c.BoilerplateLimit = DefaultBoilerplateLimit
	}
	return c
}

// Verdict is the outcome of the gates for one text. When OK is false,
// Status and Reason describe the failed hard gate; Warnings accumulate
// regardless.
type Verdict struct {
	OK            bool
	Status        dataset.Status
	Reason        string
	Warnings      []string
	WordCount     int
	SentenceCount int
}

// Checker applies the gates. Language is optional; when set, non-English
// text draws a warning.
type Checker struct {
	Cfg      Config
	Language *LanguageGate
}

// Check runs the gates in order against cleaned text.
func (c *Checker) Check(text string) Verdict {
	cfg := c.Cfg.withDefaults()

	v := Verdict{
		WordCount:     normalize.WordCount(text),
		SentenceCount: normalize.SentenceCount(text),
	}

	if text == "" {
		v.Status = dataset.StatusExtractionFailed
		v.Reason = "empty text"
		return v
	}
	if v.WordCount < cfg.MinWords {
		v.Status = dataset.StatusInsufficientText
		v.Reason = fmt.Sprintf("text too short (%d words)", v.WordCount)
		return v
	}
	if v.WordCount > cfg.MaxWords {
		v.Status = dataset.StatusInsufficientText
		v.Reason = fmt.Sprintf("text too long (%d words)", v.WordCount)
		return v
	}

	if v.SentenceCount < cfg.MinSentences {
		v.Warnings = append(v.Warnings, fmt.Sprintf("few sentences detected (%d)", v.SentenceCount))
	}
	if n := boilerplateCount(text); n > cfg.BoilerplateLimit {
		v.Warnings = append(v.Warnings, fmt.Sprintf("high boilerplate content (%d instances)", n))
	}
	if c.Language != nil {
		if warning, ok := c.Language.Warn(text); ok {
			v.Warnings = append(v.Warnings, warning)
		}
	}

	v.OK = true
	return v
}

func boilerplateCount(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, phrase := range boilerplatePhrases {
		n += strings.Count(lower, phrase)
	}
	return n
}
