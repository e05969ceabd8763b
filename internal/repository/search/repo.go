package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/qbm25/internal/db"
	"github.com/kailas-cloud/qbm25/internal/domain"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring"
	"github.com/kailas-cloud/qbm25/internal/domain/search/result"
	"github.com/kailas-cloud/qbm25/internal/repository/keyspace"
)

// Fields read back with every hit; the scorer needs units and values verbatim.
var returnFields = []string{"__content", "units", "values"}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
	keys  keyspace.Keys
}

// New creates a search repository.
func New(s store, keys keyspace.Keys) *Repo {
	return &Repo{store: s, keys: keys}
}

// SearchBM25 retrieves up to topK candidates ranked by the index's BM25 score.
func (r *Repo) SearchBM25(ctx context.Context, collectionName, query string, topK int) ([]result.Result, error) {
	q := &db.TextQuery{
		IndexName:    r.keys.Index(collectionName),
		Query:        query,
		TopK:         topK,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchBM25(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("search bm25 %s: %w", collectionName, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("search bm25 %s: %w", collectionName, err)
	}

	return r.toResults(sr, collectionName), nil
}

// toResults converts db.SearchResult into []result.Result keeping the index order.
func (r *Repo) toResults(sr *db.SearchResult, collection string) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id, ok := r.keys.DocID(collection, entry.Key)
		if !ok {
			continue
		}
		attrs := scoring.Attributes{Units: entry.Fields["units"], Values: entry.Fields["values"]}
		results = append(results, result.New(id, entry.Score, entry.Fields["__content"], attrs))
	}
	return results
}
