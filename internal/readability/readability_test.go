package readability

import (
	"math"
	"strings"
	"testing"
)

const simpleText = "The cat sat on the mat. The dog ran to the park. We all went home today."

const denseText = "Hypertension, also known as elevated blood pressure, is a common chronic medical condition. " +
	"It occurs when the persistent force of circulating blood against arterial walls remains too high. " +
	"Uncontrolled hypertension substantially increases cardiovascular complications."

func TestScoreRejectsShortText(t *testing.T) {
	if _, ok := Score("", 50); ok {
		t.Fatalf("empty text must not score")
	}
	if _, ok := Score("only four words here", 5); ok {
		t.Fatalf("text below the minimum must not score")
	}
	if _, ok := Score("exactly five words right here", 5); !ok {
		t.Fatalf("text at the minimum must score")
	}
}

func TestScoreSimpleTextNullsOutOfRangeFormulas(t *testing.T) {
	s, ok := Score(simpleText, 10)
	if !ok {
		t.Fatalf("expected text to score")
	}
	if s.Words != 17 || s.Sentences != 3 {
		t.Fatalf("counts: words=%d sentences=%d, want 17 and 3", s.Words, s.Sentences)
	}
	// Very simple prose drives FKG and ARI below zero; those results must be
	// rejected, not averaged in.
	if s.FKG != nil {
		t.Fatalf("expected FKG to be rejected, got %v", *s.FKG)
	}
	if s.ARI != nil {
		t.Fatalf("expected ARI to be rejected, got %v", *s.ARI)
	}
	if s.GFI == nil || math.Abs(*s.GFI-2.2667) > 0.001 {
		t.Fatalf("GFI = %v, want about 2.2667", s.GFI)
	}
	if s.SMOG == nil || math.Abs(*s.SMOG-3.1291) > 1e-9 {
		t.Fatalf("SMOG = %v, want 3.1291", s.SMOG)
	}
	wantMean := (*s.GFI + *s.SMOG) / 2
	if s.Mean == nil || math.Abs(*s.Mean-wantMean) > 1e-9 {
		t.Fatalf("Mean = %v, want %v (mean of the two valid scores)", s.Mean, wantMean)
	}
}

func TestScoreDenseTextAllFormulasValid(t *testing.T) {
	s, ok := Score(denseText, 10)
	if !ok {
		t.Fatalf("expected text to score")
	}
	for name, v := range map[string]*float64{"GFI": s.GFI, "SMOG": s.SMOG, "FKG": s.FKG, "ARI": s.ARI} {
		if v == nil {
			t.Fatalf("%s unexpectedly rejected", name)
		}
		if *v < 0 || *v > 30 {
			t.Fatalf("%s = %v outside [0,30]", name, *v)
		}
	}
	want := (*s.GFI + *s.SMOG + *s.FKG + *s.ARI) / 4
	if s.Mean == nil || math.Abs(*s.Mean-want) > 1e-9 {
		t.Fatalf("Mean = %v, want %v", s.Mean, want)
	}
}

func TestScoreSMOGZeroBelowThreeSentences(t *testing.T) {
	text := "Patients frequently experience considerable postoperative discomfort following orthopedic intervention " +
		"alongside substantial rehabilitation requirements extending over several months"
	s, ok := Score(text, 5)
	if !ok {
		t.Fatalf("expected text to score")
	}
	if s.Sentences != 1 {
		t.Fatalf("expected a single sentence, got %d", s.Sentences)
	}
	if s.SMOG == nil || *s.SMOG != 0 {
		t.Fatalf("SMOG below three sentences should report zero, got %v", s.SMOG)
	}
}

func TestMeanOf(t *testing.T) {
	a, b := 10.0, 14.0
	if m := MeanOf(&a, nil, &b, nil); m == nil || *m != 12 {
		t.Fatalf("MeanOf = %v, want 12", m)
	}
	if m := MeanOf(nil, nil, nil, nil); m != nil {
		t.Fatalf("MeanOf of all nil must be nil, got %v", *m)
	}
}

func TestSpread(t *testing.T) {
	a, b, c := 8.0, 19.5, 11.0
	got, ok := Spread(&a, &b, &c, nil)
	if !ok || math.Abs(got-11.5) > 1e-9 {
		t.Fatalf("Spread = %v ok=%v, want 11.5 true", got, ok)
	}
	if _, ok := Spread(&a, nil, nil, nil); ok {
		t.Fatalf("single score cannot measure disagreement")
	}
}

func TestCategory(t *testing.T) {
	if got := Category(7.9); !strings.HasPrefix(got, "Universal") {
		t.Fatalf("Category(7.9) = %q", got)
	}
	if got := Category(8.0); !strings.HasPrefix(got, "Universal") {
		t.Fatalf("Category(8.0) = %q, boundary belongs to Universal", got)
	}
	if got := Category(9.5); !strings.HasPrefix(got, "Acceptable") {
		t.Fatalf("Category(9.5) = %q", got)
	}
	if got := Category(12.0); !strings.HasPrefix(got, "Difficult") {
		t.Fatalf("Category(12.0) = %q", got)
	}
}
