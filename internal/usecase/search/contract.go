package search

import (
	"context"

	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
	"github.com/kailas-cloud/qbm25/internal/domain/search/result"
	"github.com/kailas-cloud/qbm25/internal/usecase/script"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	SearchBM25(ctx context.Context, collectionName, query string, topK int) ([]result.Result, error)
}

// CollectionReader reads collections for existence checks.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}

// Compiler turns a script reference into a Scorer.
type Compiler interface {
	Compile(lang, source string, params map[string]any) (script.Scorer, error)
}

// Recorder receives per-candidate scoring observations.
type Recorder interface {
	ObserveScore(handler, outcome string, delta float64)
	ObserveCandidates(n int)
}
