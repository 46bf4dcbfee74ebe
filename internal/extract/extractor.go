package extract

// Extractor abstracts an extraction tactic so the debug CLI can run
// alternatives side by side. Implementations must be deterministic and
// free of side effects.
type Extractor interface {
	// Name identifies the tactic in diagnostic output.
	Name() string
	// Extract converts raw HTML into body text.
	Extract(rawHTML []byte, minWords int) (Result, error)
}

// Cascade is the production tactic: the prepared-document strategy chain.
type Cascade struct{}

func (Cascade) Name() string { return "cascade" }

func (Cascade) Extract(rawHTML []byte, minWords int) (Result, error) {
	doc, err := Prepare(rawHTML)
	if err != nil {
		return Result{}, err
	}
	return doc.MainContent(minWords)
}
