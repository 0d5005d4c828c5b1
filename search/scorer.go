package search

import (
	"strings"

	"github.com/junaidrashid-git/storefront-api/models"
)

// Relevance weights. Fixtures pin exact orderings, so these are part of the
// contract of the ranking.
const (
	WeightNameExact     = 20
	WeightNameContains  = 10
	WeightTag           = 8
	WeightColor         = 8
	WeightDescription   = 3
	WeightCategory      = 5
	WeightPhraseInName  = 15
	WeightAllTermsMatch = 25

	BoostFeatured   = 10
	BoostBestseller = 8
	BoostNew        = 5
)

// Score returns the additive relevance of p for query, accumulated over keywords.
func Score(p models.Product, query string, keywords []string) int {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	desc := strings.ToLower(p.Description)
	category := strings.ToLower(strings.TrimSpace(p.Category))
	tags := lowerAll(p.Tags)
	colors := lowerAll(p.Colors)

	score := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if name == kw {
			score += WeightNameExact
		} else if strings.Contains(name, kw) {
			score += WeightNameContains
		}
		score += WeightTag * countRelated(tags, kw)
		score += WeightColor * countRelated(colors, kw)
		if strings.Contains(desc, kw) {
			score += WeightDescription
		}
		if category != "" && strings.Contains(category, kw) {
			score += WeightCategory
		}
	}

	if q := normalizeQuery(query); q != "" && strings.Contains(name, q) {
		score += WeightPhraseInName
	}

	if terms := queryTerms(query); len(terms) > 0 {
		all := true
		for _, t := range terms {
			if !strings.Contains(name, t) && countRelated(tags, t) == 0 &&
				countRelated(colors, t) == 0 && !strings.Contains(desc, t) {
				all = false
				break
			}
		}
		if all {
			score += WeightAllTermsMatch
		}
	}

	if p.HasTag("featured") {
		score += BoostFeatured
	}
	if p.HasTag("bestseller") {
		score += BoostBestseller
	}
	if p.HasTag("new") {
		score += BoostNew
	}
	return score
}

func countRelated(values []string, kw string) int {
	n := 0
	for _, v := range values {
		if v != "" && related(v, kw) {
			n++
		}
	}
	return n
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
