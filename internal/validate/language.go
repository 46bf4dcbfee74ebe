package validate

import (
	"fmt"

	"github.com/pemistahl/lingua-go"
)

// LanguageGate detects the dominant language of a text. The readability
// formulas assume English, so anything else is flagged. Detection is
// restricted to a few candidate languages to keep the models small; an
// undecidable text is not flagged.
type LanguageGate struct {
	detector lingua.LanguageDetector
}

// NewLanguageGate builds the detector. Construction loads language models
// and is worth doing once per run.
func NewLanguageGate() *LanguageGate {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Spanish, lingua.French, lingua.German).
		Build()
	return &LanguageGate{detector: detector}
}

// Warn returns a warning when the text is confidently non-English.
func (g *LanguageGate) Warn(text string) (string, bool) {
	language, exists := g.detector.DetectLanguageOf(text)
	if !exists || language == lingua.English {
		return "", false
	}
	return fmt.Sprintf("non-English content detected (%s)", language.String()), true
}
