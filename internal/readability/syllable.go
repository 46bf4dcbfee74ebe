package readability

import (
	"strings"
	"unicode"
)

// Syllables estimates the syllable count of an English word by counting
// vowel groups, with an adjustment for a silent trailing e. Words that
// contain at least one letter always count one syllable or more; tokens
// without letters count zero.
func Syllables(word string) int {
	w := strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if w == "" {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range w {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	// A final e is usually silent ("page", "nurse") unless it carries the
	// only vowel or closes an -le cluster ("table").
	if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
