package search

import "strings"

const (
	maxSuggestions       = 8
	suggestTagsPerResult = 3
	suggestColorsPerItem = 2
)

// SuggestRelated collects follow-up search terms: a few tags and colors from
// each result that the query did not already use, then synonym forms related
// to the keywords.
func (a *Analyzer) SuggestRelated(results []Result, keywords []string) []string {
	used := newOrderedSet()
	for _, kw := range keywords {
		used.add(strings.ToLower(strings.TrimSpace(kw)))
	}

	out := newOrderedSet()
	full := func() bool { return len(out.order) >= maxSuggestions }
	offer := func(v string) bool {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || used.has(v) || out.has(v) || full() {
			return false
		}
		out.add(v)
		return true
	}

	for _, r := range results {
		if full() {
			break
		}
		taken := 0
		for _, t := range r.Product.Tags {
			if taken == suggestTagsPerResult {
				break
			}
			if offer(t) {
				taken++
			}
		}
		taken = 0
		for _, c := range r.Product.Colors {
			if taken == suggestColorsPerItem {
				break
			}
			if offer(c) {
				taken++
			}
		}
	}

	for _, kw := range used.items() {
		for _, entry := range a.synonyms {
			if full() {
				return out.items()
			}
			if !entry.matchesEntry(kw) {
				continue
			}
			for _, form := range entry.Forms {
				offer(form)
			}
		}
	}
	return out.items()
}
