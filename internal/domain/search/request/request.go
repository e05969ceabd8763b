package request

import (
	"fmt"
	"maps"
	"math"

	"github.com/kailas-cloud/qbm25/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultTopK    = 10
	MaxTopK        = 500
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Script names a rescoring script and carries its per-query params.
type Script struct {
	Lang   string
	Source string
	Params map[string]any
}

// Request is a validated search query.
type Request struct {
	query    string
	script   *Script
	topK     int
	limit    int
	minScore float64
}

// New validates and normalizes search parameters.
// Defaults: topK=10, limit=20. Limit is clamped to topK. A nil script means plain BM25 ranking.
func New(query string, script *Script, topK, limit int, minScore float64) (Request, error) {
	if query == "" {
		return Request{}, invalid("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, invalid("query too long (max %d chars)", MaxQueryLength)
	}
	if script != nil && script.Source == "" {
		return Request{}, invalid("script source is required")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if limit > topK {
		limit = topK
	}
	if minScore < 0 || math.IsNaN(minScore) || math.IsInf(minScore, 0) {
		return Request{}, invalid("min_score must be a non-negative number")
	}

	var s *Script
	if script != nil {
		s = &Script{Lang: script.Lang, Source: script.Source, Params: maps.Clone(script.Params)}
	}

	return Request{
		query:    query,
		script:   s,
		topK:     topK,
		limit:    limit,
		minScore: minScore,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Script returns the rescoring script, nil when none was requested.
func (r *Request) Script() *Script { return r.script }

// TopK returns the number of BM25 candidates to retrieve and rescore.
func (r *Request) TopK() int { return r.topK }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// MinScore returns the minimum final score threshold.
func (r *Request) MinScore() float64 { return r.minScore }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrInvalidRequest)
}
