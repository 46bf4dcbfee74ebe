// Package readability computes four standard grade-level formulas over
// cleaned text: Gunning Fog (GFI), SMOG, Flesch-Kincaid Grade (FKG), and the
// Automated Readability Index (ARI). Scores outside the sane 0-30 band are
// rejected as nil rather than propagated, and the mean is taken over whatever
// remains valid.
package readability

import (
	"math"
	"unicode"

	"github.com/healthtextlab/medread/internal/normalize"
)

const (
	minValid = 0.0
	maxValid = 30.0
)

// Scores holds the formula results for one text. A nil score means the
// formula produced a value outside the valid band.
type Scores struct {
	Words     int
	Sentences int
	Syllables int

	GFI  *float64
	SMOG *float64
	FKG  *float64
	ARI  *float64
	Mean *float64
}

// Score computes all four formulas. It returns ok=false when the text is
// empty or shorter than minWords, matching the gate the validator applies
// upstream.
func Score(text string, minWords int) (Scores, bool) {
	words := normalize.Words(text)
	if len(words) == 0 || len(words) < minWords {
		return Scores{}, false
	}

	sentences := normalize.SentenceCount(text)
	if sentences < 1 {
		sentences = 1
	}

	var syllables, complexWords, characters int
	for _, w := range words {
		n := Syllables(w)
		syllables += n
		if n >= 3 {
			complexWords++
		}
		for _, r := range w {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				characters++
			}
		}
	}

	wf := float64(len(words))
	sf := float64(sentences)

	gfi := 0.4 * (wf/sf + 100.0*float64(complexWords)/wf)
	fkg := 0.39*(wf/sf) + 11.8*(float64(syllables)/wf) - 15.59
	ari := 4.71*(float64(characters)/wf) + 0.5*(wf/sf) - 21.43

	// SMOG is undefined below three sentences; standard calculators report
	// zero there rather than extrapolating.
	smog := 0.0
	if sentences >= 3 {
		smog = 1.0430*math.Sqrt(float64(complexWords)*30.0/sf) + 3.1291
	}

	s := Scores{
		Words:     len(words),
		Sentences: sentences,
		Syllables: syllables,
		GFI:       validScore(gfi),
		SMOG:      validScore(smog),
		FKG:       validScore(fkg),
		ARI:       validScore(ari),
	}
	s.Mean = MeanOf(s.GFI, s.SMOG, s.FKG, s.ARI)
	return s, true
}

// validScore keeps v only when it is finite and within [0,30].
func validScore(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < minValid || v > maxValid {
		return nil
	}
	return &v
}

// MeanOf returns the arithmetic mean of the non-nil scores, or nil when none
// are valid.
func MeanOf(scores ...*float64) *float64 {
	sum := 0.0
	n := 0
	for _, s := range scores {
		if s != nil {
			sum += *s
			n++
		}
	}
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}

// Spread returns the range (max-min) across the non-nil scores. ok is false
// when fewer than two scores are valid, in which case no disagreement can be
// measured.
func Spread(scores ...*float64) (float64, bool) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	n := 0
	for _, s := range scores {
		if s == nil {
			continue
		}
		n++
		if *s < lo {
			lo = *s
		}
		if *s > hi {
			hi = *s
		}
	}
	if n < 2 {
		return 0, false
	}
	return hi - lo, true
}

// Category buckets a grade-level score against the plain-language targets
// used in patient-education guidance.
func Category(score float64) string {
	switch {
	case score <= 8:
		return "Universal (<=8th grade)"
	case score <= 10:
		return "Acceptable (8-10th grade)"
	default:
		return "Difficult (>10th grade)"
	}
}
