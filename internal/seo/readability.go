package seo

import (
	"strings"
	"unicode"
)

// FleschReadingEase computes the Flesch Reading Ease score for the text.
// Higher is easier; 90-100 reads like grade school text, 0-30 like academic
// prose. Returns 0 for text with no words.
//
//	206.835 - 1.015*(words/sentences) - 84.6*(syllables/words)
func FleschReadingEase(text string) float64 {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return 0
	}

	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}

	var syllables int
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordCount := float64(len(words))
	return 206.835 - 1.015*(wordCount/float64(sentences)) - 84.6*(float64(syllables)/wordCount)
}

// countSentences counts terminator runs (".", "!", "?", and combinations)
// as sentence boundaries.
func countSentences(text string) int {
	count := 0
	inTerminator := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if !inTerminator {
				count++
				inTerminator = true
			}
		default:
			inTerminator = false
		}
	}
	return count
}

// countSyllables estimates syllables by counting vowel groups, discounting a
// trailing silent 'e'. Every word has at least one syllable.
func countSyllables(word string) int {
	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	// Silent trailing 'e' as in "site", "scale" - but not "the".
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
