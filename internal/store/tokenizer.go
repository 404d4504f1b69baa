package store

import (
	"strings"
	"unicode"
)

// DefaultStopWords are English words too common to be useful in a query.
var DefaultStopWords = []string{
	"a", "able", "about", "across", "after", "all", "almost", "also", "am",
	"among", "an", "and", "any", "are", "as", "at", "be", "because", "been",
	"but", "by", "can", "cannot", "could", "dear", "did", "do", "does",
	"either", "else", "ever", "every", "for", "from", "get", "got", "had",
	"has", "have", "he", "her", "hers", "him", "his", "how", "however", "i",
	"if", "in", "into", "is", "it", "its", "just", "least", "let", "like",
	"likely", "may", "me", "might", "most", "must", "my", "neither", "no",
	"nor", "not", "of", "off", "often", "on", "only", "or", "other", "our",
	"own", "rather", "said", "say", "says", "she", "should", "since", "so",
	"some", "than", "that", "the", "their", "them", "then", "there", "these",
	"they", "this", "tis", "to", "too", "twas", "us", "wants", "was", "we",
	"were", "what", "when", "where", "which", "while", "who", "whom", "why",
	"will", "with", "would", "yet", "you", "your",
}

var defaultStopWordMap = BuildStopWordMap(DefaultStopWords)

// span is one token and its byte offsets in the source text.
type span struct {
	term       string
	start, end int
}

// scan splits text into runs of letters and digits. Terms keep their case.
func scan(text string) []span {
	var spans []span
	start := -1
	for i, r := range text {
		word := unicode.IsLetter(r) || unicode.IsDigit(r)
		switch {
		case word && start < 0:
			start = i
		case !word && start >= 0:
			spans = append(spans, span{term: text[start:i], start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, span{term: text[start:], start: start, end: len(text)})
	}
	return spans
}

// Tokenize lower-cases text, splits it into words and drops stop words.
// Indexing and querying use the same rules.
func Tokenize(text string) []string {
	spans := scan(text)
	tokens := make([]string, 0, len(spans))
	for _, s := range spans {
		term := strings.ToLower(s.term)
		if _, stop := defaultStopWordMap[term]; stop {
			continue
		}
		tokens = append(tokens, term)
	}
	return tokens
}

// QueryTerms tokenizes a query and removes repeated terms, keeping the
// first occurrence order.
func QueryTerms(query string) []string {
	tokens := Tokenize(query)
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// BuildStopWordMap converts a slice of stop words to a lookup set.
func BuildStopWordMap(stopWords []string) map[string]struct{} {
	m := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		m[strings.ToLower(word)] = struct{}{}
	}
	return m
}
