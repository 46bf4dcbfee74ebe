package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func newDefault() *Classifier {
	return New(DefaultTables(), 0)
}

func TestClassifyCDCGuidance(t *testing.T) {
	c := newDefault()
	got := c.Classify("https://www.cdc.gov/x", "CDC Guidance")
	if got.Label != Institutional {
		t.Fatalf("expected Institutional, got %q", got.Label)
	}
	// Domain tier (+3) and title tier (+1); no URL pattern in the path.
	if got.Confidence != 4 {
		t.Fatalf("expected confidence 4, got %d", got.Confidence)
	}
	if got.MatchedDomain == "" || got.MatchedKeyword == "" || got.MatchedPattern != "" {
		t.Fatalf("unexpected evidence trace: %+v", got)
	}
}

func TestClassifyNoEvidenceIsPrivate(t *testing.T) {
	c := newDefault()
	got := c.Classify("https://www.myhealthblog.example/recovery-tips", "My recovery story")
	if got.Label != Private || got.Confidence != 0 {
		t.Fatalf("expected Private with confidence 0, got %q %d", got.Label, got.Confidence)
	}
	if got.Ambiguous() {
		t.Fatalf("zero evidence is not ambiguous")
	}
}

func TestClassifyPatternOnlyIsAmbiguousPrivate(t *testing.T) {
	c := newDefault()
	got := c.Classify("https://www.example.org/college/notes", "Study notes")
	if got.Label != Private {
		t.Fatalf("pattern alone (+2) stays below threshold, got %q", got.Label)
	}
	if got.Confidence != 2 {
		t.Fatalf("expected confidence 2, got %d", got.Confidence)
	}
	if !got.Ambiguous() {
		t.Fatalf("confidence 2 Private should flag as ambiguous")
	}
}

func TestClassifyEachTierCountsOnce(t *testing.T) {
	c := newDefault()
	// Domain matches both .gov and cdc.gov; only one +3 may apply.
	got := c.Classify("https://www.cdc.gov/government/university-hospital", "CDC and NIH and WHO guidance")
	if got.Confidence != 6 {
		t.Fatalf("expected maximum confidence 6, got %d", got.Confidence)
	}
	if got.Label != Institutional {
		t.Fatalf("expected Institutional, got %q", got.Label)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := newDefault()
	a := c.Classify("https://www.nhs.uk/conditions/", "Overview - NHS")
	b := c.Classify("https://www.nhs.uk/conditions/", "Overview - NHS")
	if a != b {
		t.Fatalf("classification must be deterministic: %+v vs %+v", a, b)
	}
}

func TestClassifyEmptyTitleSkipsKeywordTier(t *testing.T) {
	c := newDefault()
	got := c.Classify("https://www.nih.gov/", "")
	if got.Confidence != 3 || got.Label != Institutional {
		t.Fatalf("expected confidence 3 Institutional, got %d %q", got.Confidence, got.Label)
	}
}

func TestDomain(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://www.cdc.gov/flu", "cdc.gov"},
		{"http://example.com:8080/a", "example.com"},
		{"https://sub.www.example.org/", "sub.www.example.org"},
		{"not a url", "not a url"},
	}
	for _, c := range cases {
		if got := Domain(c.in); got != c.want {
			t.Errorf("Domain(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDistribute(t *testing.T) {
	results := []Result{
		{Label: Institutional, Confidence: 4},
		{Label: Private, Confidence: 2},
		{Label: Private, Confidence: 0},
		{Label: Institutional, Confidence: 3},
	}
	d := Distribute(results)
	if d.Total != 4 || d.Institutional != 2 || d.Private != 2 {
		t.Fatalf("unexpected totals: %+v", d)
	}
	if d.High != 2 || d.Medium != 1 || d.Low != 1 {
		t.Fatalf("unexpected confidence buckets: %+v", d)
	}
	if d.AvgConfidence != 2.25 {
		t.Fatalf("expected avg confidence 2.25, got %v", d.AvgConfidence)
	}
}

func TestLoadTablesOverridesAndFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evidence.yaml")
	content := "domains:\n  - .test.example\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if len(tables.Domains) != 1 || tables.Domains[0] != ".test.example" {
		t.Fatalf("domains not overridden: %v", tables.Domains)
	}
	if len(tables.Patterns) == 0 || len(tables.Keywords) == 0 {
		t.Fatalf("missing sections must fall back to defaults")
	}

	c := New(tables, 0)
	if got := c.Classify("https://thing.test.example/", ""); got.Label != Institutional {
		t.Fatalf("override domain should classify Institutional, got %+v", got)
	}
}

func TestLoadTablesMissingFile(t *testing.T) {
	if _, err := LoadTables(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
