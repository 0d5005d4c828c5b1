// Package search ranks catalog products against loose natural-language
// queries such as "gown for my birthday".
package search

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/models"
)

const (
	DefaultMaxResults     = 15
	DefaultCandidateLimit = 200
)

// Result is a product with its relevance score. Only positive scores are returned.
type Result struct {
	Product models.Product `json:"product"`
	Score   int            `json:"score"`
}

// Response is everything a search produces for one query.
type Response struct {
	Query       string   `json:"query"`
	Keywords    []string `json:"keywords"`
	Results     []Result `json:"results"`
	Suggestions []string `json:"suggestions"`
}

// Observer receives one call per completed search.
type Observer interface {
	ObserveSearch(elapsed time.Duration, results int)
}

type Engine struct {
	source         catalog.Source
	analyzer       *Analyzer
	logger         *zap.Logger
	observer       Observer
	maxResults     int
	candidateLimit int
}

type Option func(*Engine)

func WithAnalyzer(a *Analyzer) Option {
	return func(e *Engine) { e.analyzer = a }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func WithMaxResults(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxResults = n
		}
	}
}

func WithCandidateLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.candidateLimit = n
		}
	}
}

func NewEngine(source catalog.Source, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		source:         source,
		analyzer:       NewAnalyzer(nil),
		logger:         logger,
		maxResults:     DefaultMaxResults,
		candidateLimit: DefaultCandidateLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Analyzer() *Analyzer {
	return e.analyzer
}

// Search fetches candidates for query from the catalog and ranks them. It
// never fails: an empty query, a fetch error or a cancelled context all yield
// an empty result list.
func (e *Engine) Search(ctx context.Context, query, category string) Response {
	start := time.Now()
	resp := Response{Query: query, Keywords: []string{}, Results: []Result{}, Suggestions: []string{}}

	keywords := e.analyzer.ExtractKeywords(query)
	if len(keywords) == 0 {
		return resp
	}
	resp.Keywords = keywords

	expanded := e.analyzer.ExpandForColorSynonyms(keywords)
	candidates, err := e.source.FindCandidates(ctx, catalog.Query{
		Terms:    expanded,
		Category: category,
		Limit:    e.candidateLimit,
	})
	if err != nil {
		if ctx.Err() != nil {
			e.logger.Debug("search cancelled", zap.String("query", query))
		} else {
			e.logger.Warn("catalog fetch failed", zap.String("query", query), zap.Error(err))
		}
		e.observe(start, 0)
		return resp
	}

	resp.Results = e.rank(query, keywords, expanded, candidates, category)
	resp.Suggestions = e.analyzer.SuggestRelated(resp.Results, keywords)
	e.observe(start, len(resp.Results))
	return resp
}

// SearchLatest runs Search under tracker for the client identified by key.
// The boolean is false when a newer search from the same client superseded
// this one; the response must then be discarded.
func (e *Engine) SearchLatest(ctx context.Context, tracker *Tracker, key, query, category string) (Response, Ticket, bool) {
	ctx, ticket := tracker.Begin(ctx, key)
	resp := e.Search(ctx, query, category)
	current := tracker.IsCurrent(ticket)
	tracker.Finish(ticket)
	return resp, ticket, current
}

// Rank scores products already in memory: category restriction, recall
// filter over the expanded keywords, scoring, de-duplication by id and a
// stable descending sort capped at the result limit.
func (e *Engine) Rank(query string, products []models.Product, category string) []Result {
	keywords := e.analyzer.ExtractKeywords(query)
	if len(keywords) == 0 {
		return []Result{}
	}
	return e.rank(query, keywords, e.analyzer.ExpandForColorSynonyms(keywords), products, category)
}

func (e *Engine) rank(query string, keywords, expanded []string, products []models.Product, category string) []Result {
	results := make([]Result, 0, len(products))
	index := make(map[string]int, len(products))

	for _, p := range products {
		if !catalog.InCategory(p, category) || !catalog.Matches(p, expanded) {
			continue
		}
		score := Score(p, query, keywords)
		if score <= 0 {
			continue
		}
		if i, ok := index[p.ID]; ok {
			if score > results[i].Score {
				results[i] = Result{Product: p, Score: score}
			}
			continue
		}
		index[p.ID] = len(results)
		results = append(results, Result{Product: p, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > e.maxResults {
		results = results[:e.maxResults]
	}
	return results
}

func (e *Engine) observe(start time.Time, results int) {
	if e.observer != nil {
		e.observer.ObserveSearch(time.Since(start), results)
	}
}
