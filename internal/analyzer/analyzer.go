// Package analyzer normalises raw text into index terms. It lower-cases
// input, splits on non-alphanumeric boundaries, removes stop-words, and
// applies a simple suffix-based stemmer.
//
// The indexer and the query engine must share one Analyzer instance so that
// query terms normalise exactly the way indexed terms did.
package analyzer

import (
	"strings"
	"unicode"
)

var defaultStopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Analyzer holds the normalisation rules. The zero value is not usable; use
// New.
type Analyzer struct {
	stopWords map[string]struct{}
	stem      bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithoutStemming disables the suffix stemmer.
func WithoutStemming() Option {
	return func(a *Analyzer) { a.stem = false }
}

// WithStopWords replaces the built-in stop-word list.
func WithStopWords(words []string) Option {
	return func(a *Analyzer) {
		a.stopWords = make(map[string]struct{}, len(words))
		for _, w := range words {
			a.stopWords[strings.ToLower(w)] = struct{}{}
		}
	}
}

// New creates an Analyzer with the built-in stop-word list and stemming
// enabled.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		stopWords: defaultStopWords,
		stem:      true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Tokenize breaks text into normalised terms with stop-words removed.
func (a *Analyzer) Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words)/2)
	for _, word := range words {
		if term := a.normalize(word); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// Normalize applies the full normalisation pipeline to a single token and
// returns the resulting term, or "" if the token is dropped (too short or a
// stop-word).
func (a *Analyzer) Normalize(token string) string {
	return a.normalize(strings.ToLower(strings.TrimSpace(token)))
}

func (a *Analyzer) normalize(word string) string {
	if len(word) < 2 {
		return ""
	}
	if _, isStop := a.stopWords[word]; isStop {
		return ""
	}
	if a.stem {
		word = stem(word)
	}
	return word
}

// stem applies a simple suffix-stripping stemmer to the given word.
func stem(word string) string {
	suffixes := []struct {
		suffix      string
		replacement string
		minLen      int
	}{
		{"ational", "ate", 2},
		{"tional", "tion", 2},
		{"encies", "ence", 2},
		{"ances", "ance", 2},
		{"ments", "ment", 2},
		{"izing", "ize", 2},
		{"ating", "ate", 2},
		{"iness", "y", 2},
		{"ously", "ous", 2},
		{"ively", "ive", 2},
		{"eness", "ene", 2},
		{"tion", "t", 3},
		{"sion", "s", 3},
		{"ying", "y", 2},
		{"ling", "l", 3},
		{"ies", "y", 2},
		{"ing", "", 3},
		{"ers", "er", 2},
		{"est", "", 3},
		{"ful", "", 3},
		{"ous", "", 3},
		{"ess", "", 3},
		{"ble", "", 3},
		{"ed", "", 3},
		{"er", "", 3},
		{"ly", "", 3},
		{"es", "", 3},
		{"ss", "ss", 2},
		{"s", "", 3},
	}
	for _, rule := range suffixes {
		if strings.HasSuffix(word, rule.suffix) {
			newWord := word[:len(word)-len(rule.suffix)] + rule.replacement
			if len(newWord) >= rule.minLen {
				return newWord
			}
		}
	}
	return word
}
