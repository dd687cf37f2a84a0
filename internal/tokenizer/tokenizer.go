package tokenizer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// Tokenize splits text into normalised tokens in document order.
// Duplicates are kept. It is pure and safe for concurrent use.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	// Casers are stateful, so each call gets its own.
	folded := cases.Fold().String(norm.NFC.String(text))
	return strings.FieldsFunc(folded, isBoundary)
}

// Counts returns the number of occurrences of each token in text.
func Counts(text string) map[string]int {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}

// ParseQuery tokenizes a search term. The last token is a prefix token.
// A term without any letters or digits is an invalid query.
func ParseQuery(term string) ([]domain.Token, error) {
	words := Tokenize(term)
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: search term %q has no searchable words", domain.ErrInvalidQuery, term)
	}

	tokens := make([]domain.Token, len(words))
	for i, w := range words {
		tokens[i] = domain.Token{Text: w}
	}
	tokens[len(tokens)-1].Prefix = true

	return tokens, nil
}

// Matches reports whether an indexed word satisfies a query token.
func Matches(tok domain.Token, word string) bool {
	if tok.Prefix {
		return strings.HasPrefix(word, tok.Text)
	}
	return word == tok.Text
}

// isBoundary reports whether r separates tokens.
func isBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}
