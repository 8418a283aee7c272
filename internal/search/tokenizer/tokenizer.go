// Package tokenizer provides text tokenisation for the search engine. It
// lower-cases input and splits on non-alphanumeric boundaries; no stop-word
// removal or stemming is applied, so indexing and query processing see the
// exact same terms.
package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenize breaks text into lowercased maximal runs of word characters
// (Unicode letters, digits, and underscore). Non-word runs are delimiters
// and are discarded. Empty input yields an empty slice.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// Frequencies tokenizes text and returns the per-token occurrence counts
// together with the total token count.
func Frequencies(text string) (map[string]int, int) {
	tokens := Tokenize(text)
	freqs := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freqs[token]++
	}
	return freqs, len(tokens)
}
