// Package tokenizer normalises raw search-box input. Normalize produces the
// bounded, display-safe form used for analytics keys and suggestion
// prefixes; Tokenize splits text into lower-cased terms with stop-words
// removed. Neither is applied before job-query parsing, which sees the
// user's text verbatim.
package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxQueryRunes bounds the length of a normalised query.
const MaxQueryRunes = 200

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "in": {}, "is": {},
	"it": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {},
	"with": {}, "near": {}, "job": {}, "jobs": {}, "vacancy": {},
	"vacancies": {}, "opening": {}, "openings": {}, "hiring": {},
	"required": {}, "wanted": {}, "need": {}, "needed": {},
}

// Normalize NFC-normalises s, drops control characters, collapses runs of
// whitespace, trims, and truncates to MaxQueryRunes runes.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	count := 0
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if pendingSpace {
			if count+1 >= MaxQueryRunes {
				break
			}
			b.WriteRune(' ')
			count++
			pendingSpace = false
		}
		if count >= MaxQueryRunes {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}

// Token is a single normalised term and its position among kept terms.
type Token struct {
	Term     string
	Position int
}

// Tokenize lower-cases text, splits it on anything that is not a letter or
// digit, and drops stop-words.
func Tokenize(text string) []Token {
	text = strings.ToLower(norm.NFC.String(text))
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(words))
	for _, word := range words {
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		tokens = append(tokens, Token{Term: word, Position: len(tokens)})
	}
	return tokens
}

// Terms returns the distinct terms of text in first-occurrence order.
func Terms(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t.Term]; ok {
			continue
		}
		seen[t.Term] = struct{}{}
		out = append(out, t.Term)
	}
	return out
}
