package search

import (
	"regexp"
	"strings"
	"unicode"
)

// phrasePatterns are tried in order against the lowercased query; each match
// contributes its first capture group as a whole-phrase keyword.
var phrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:dress|gown|outfit|something|clothes)\s+for\s+(?:a\s+|an\s+|the\s+|my\s+|our\s+)?([a-z][a-z\s'-]*)`),
	regexp.MustCompile(`looking\s+for\s+(?:a\s+|an\s+|some\s+|the\s+)?([a-z][a-z\s'-]*)`),
	regexp.MustCompile(`(?:need|want)\s+(?:a\s+|an\s+|some\s+)?([a-z][a-z\s'-]*)`),
	regexp.MustCompile(`(?:wear|wearing)\s+(?:to|for)\s+(?:a\s+|an\s+|the\s+|my\s+)?([a-z][a-z\s'-]*)`),
	regexp.MustCompile(`([a-z][a-z'-]*)\s+(?:dress|gown|outfit|top|skirt)\b`),
}

// Analyzer turns free-text queries into keywords using phrase patterns,
// n-grams and a synonym table.
type Analyzer struct {
	synonyms SynonymTable
	patterns []*regexp.Regexp
}

// NewAnalyzer builds an analyzer over table; a nil table means DefaultSynonyms.
func NewAnalyzer(table SynonymTable) *Analyzer {
	if table == nil {
		table = DefaultSynonyms
	}
	return &Analyzer{synonyms: table, patterns: phrasePatterns}
}

// Synonyms returns the table the analyzer expands against.
func (a *Analyzer) Synonyms() SynonymTable {
	return a.synonyms
}

// ExtractKeywords returns the ordered, de-duplicated keywords of query:
// phrase captures, unigrams, bigrams, trigrams and finally the canonical
// labels of every synonym group related to any of them. An empty query
// yields no keywords.
func (a *Analyzer) ExtractKeywords(query string) []string {
	q := normalizeQuery(query)
	if q == "" {
		return []string{}
	}

	candidates := newOrderedSet()
	for _, re := range a.patterns {
		if m := re.FindStringSubmatch(q); len(m) > 1 {
			candidates.add(strings.TrimSpace(m[1]))
		}
	}

	words := splitWords(q)
	for _, w := range words {
		candidates.add(w)
	}
	for i := 0; i+1 < len(words); i++ {
		candidates.add(words[i] + " " + words[i+1])
	}
	if len(words) >= 3 {
		for i := 0; i+2 < len(words); i++ {
			candidates.add(words[i] + " " + words[i+1] + " " + words[i+2])
		}
	}

	keywords := newOrderedSet()
	for _, kw := range candidates.items() {
		if keepKeyword(kw) {
			keywords.add(kw)
		}
	}
	for _, kw := range candidates.items() {
		if !keepKeyword(kw) {
			continue
		}
		for _, entry := range a.synonyms {
			if entry.matchesEntry(kw) && keepKeyword(entry.Canonical) {
				keywords.add(entry.Canonical)
			}
		}
	}
	return keywords.items()
}

// ExpandForColorSynonyms widens keywords with every surface form and the
// canonical label of each synonym group a keyword relates to.
func (a *Analyzer) ExpandForColorSynonyms(keywords []string) []string {
	expanded := newOrderedSet()
	for _, kw := range keywords {
		expanded.add(strings.ToLower(strings.TrimSpace(kw)))
	}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		for _, entry := range a.synonyms {
			if !entry.matchesEntry(kw) {
				continue
			}
			expanded.add(entry.Canonical)
			for _, form := range entry.Forms {
				expanded.add(form)
			}
		}
	}
	return expanded.items()
}

// queryTerms returns the unigram keywords of query: the words every match
// bonus is judged against.
func queryTerms(query string) []string {
	terms := newOrderedSet()
	for _, w := range splitWords(normalizeQuery(query)) {
		if keepKeyword(w) {
			terms.add(w)
		}
	}
	return terms.items()
}

func normalizeQuery(query string) string {
	return strings.TrimSpace(strings.ToLower(query))
}

// splitWords splits on whitespace and commas and trims surrounding punctuation.
func splitWords(q string) []string {
	fields := strings.FieldsFunc(q, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, `.!?;:"'()[]`)
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

func keepKeyword(kw string) bool {
	return len(kw) > 2
}
