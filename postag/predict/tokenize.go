package predict

import (
	"strings"
	"unicode"
)

// Tokenize splits free text into word and punctuation tokens, lowercased to
// match the treebank vocabulary. Punctuation separates from adjoining words
// so "dog." yields "dog" and ".".
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}
