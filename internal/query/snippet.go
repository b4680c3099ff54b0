package query

import "strings"

const snippetMaxLen = 150

// Snippet picks a short excerpt from text for display. It prefers the sentence
// containing the most matched terms and falls back to a prefix of the text.
func Snippet(text string, matchedTerms []string) string {
	text = strings.TrimSpace(text)
	if len(matchedTerms) == 0 {
		return truncate(text, snippetMaxLen)
	}

	var best string
	bestMatches := 0
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		matches := 0
		for _, term := range matchedTerms {
			if strings.Contains(lower, term) {
				matches++
			}
		}
		if matches > bestMatches {
			bestMatches = matches
			best = sentence
		}
	}

	if best != "" {
		return truncate(best, snippetMaxLen)
	}
	return truncate(text, snippetMaxLen)
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
