package qbm25

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/qbm25/internal/domain/search/request"
)

// SearchBuilder is a fluent builder for search queries against one collection.
type SearchBuilder struct {
	collection string
	svc        searchUseCase
	obs        *observer

	query    string
	script   *Script
	topK     int
	limit    int
	minScore float64
}

// Query sets the full-text query.
func (b *SearchBuilder) Query(q string) *SearchBuilder {
	b.query = q
	return b
}

// Script rescores the BM25 candidates with s.
func (b *SearchBuilder) Script(s Script) *SearchBuilder {
	b.script = &s
	return b
}

// TopK sets how many BM25 candidates are fetched before rescoring. Default: 10.
func (b *SearchBuilder) TopK(n int) *SearchBuilder {
	b.topK = n
	return b
}

// Limit sets the maximum number of results. Default: 20, capped at TopK.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// MinScore drops results scoring below s after rescoring.
func (b *SearchBuilder) MinScore(s float64) *SearchBuilder {
	b.minScore = s
	return b
}

// Do executes the search. Results are ordered by descending score.
func (b *SearchBuilder) Do(ctx context.Context) (_ []SearchResult, err error) {
	start := time.Now()
	defer func() { b.obs.observe("search", start, err) }()

	var sc *request.Script
	if b.script != nil {
		sc = &request.Script{Lang: b.script.Lang, Source: b.script.Source, Params: b.script.Params}
	}
	req, err := request.New(b.query, sc, b.topK, b.limit, b.minScore)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results, err := b.svc.Search(ctx, b.collection, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromSearchResults(results), nil
}
