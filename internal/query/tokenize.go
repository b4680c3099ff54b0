// Package query turns raw recruiter queries into lexical terms used for
// matched-term boosting and snippet selection. Everything here is pure and
// deterministic.
package query

import (
	"sort"
	"strings"
	"unicode"
)

const minTermLen = 3

// stopWords filters terms that add noise to lexical matching.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "was": true, "were": true, "been": true, "being": true,
	"this": true, "that": true, "these": true, "those": true, "from": true,
	"your": true, "our": true, "they": true, "them": true, "who": true,
	"years": true, "year": true,
}

// Tokenize splits a query into an ordered, de-duplicated sequence of lowercase
// terms. Terms shorter than three characters and stop words are dropped.
func Tokenize(q string) []string {
	var terms []string
	seen := make(map[string]bool)

	for _, tok := range splitWords(q) {
		if len(tok) < minTermLen || stopWords[tok] {
			continue
		}
		if !seen[tok] {
			seen[tok] = true
			terms = append(terms, tok)
		}
	}
	return terms
}

// MatchedTerms returns the query terms present in text, case-insensitive,
// sorted for deterministic output.
func MatchedTerms(q, text string) []string {
	lower := strings.ToLower(text)

	var matched []string
	for _, term := range Tokenize(q) {
		if strings.Contains(lower, term) {
			matched = append(matched, term)
		}
	}
	sort.Strings(matched)
	return matched
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
