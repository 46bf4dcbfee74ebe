package readability

import "testing"

func TestSyllables(t *testing.T) {
	cases := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"be", 1},
		{"page", 1},
		{"table", 2},
		{"medical", 3},
		{"recovery", 4},
		{"readability", 5},
		{"rhythm", 1},
		{"strength", 1},
		{"don't", 1},
		{"today", 2},
		{"", 0},
		{"123", 0},
		{"--", 0},
	}
	for _, c := range cases {
		if got := Syllables(c.word); got != c.want {
			t.Errorf("Syllables(%q) = %d, want %d", c.word, got, c.want)
		}
	}
}

func TestSyllablesTrimsPunctuation(t *testing.T) {
	if got, want := Syllables("(medical),"), 3; got != want {
		t.Fatalf("Syllables with punctuation = %d, want %d", got, want)
	}
}
