package result

import (
	"github.com/kailas-cloud/qbm25/internal/domain/scoring"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring/attrlist"
)

// Result is a single search hit.
type Result struct {
	id        string
	score     float64
	baseScore float64
	content   string
	attrs     scoring.Attributes
}

// New creates a search hit ranked by its base score. attrs holds the stored textual lists.
func New(id string, baseScore float64, content string, attrs scoring.Attributes) Result {
	return Result{id: id, score: baseScore, baseScore: baseScore, content: content, attrs: attrs}
}

// WithScore returns a copy carrying an adjusted score; the base score is kept.
func (r Result) WithScore(score float64) Result {
	r.score = score
	return r
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Score returns the final relevance score.
func (r *Result) Score() float64 { return r.score }

// BaseScore returns the BM25 score reported by the index.
func (r *Result) BaseScore() float64 { return r.baseScore }

// Content returns the document content.
func (r *Result) Content() string { return r.content }

// Attributes returns the raw units/values lists as stored.
func (r *Result) Attributes() scoring.Attributes { return r.attrs }

// Units returns the parsed document units.
func (r *Result) Units() []string { return attrlist.Parse(r.attrs.Units) }

// Values returns the parsed document values, aligned with Units.
func (r *Result) Values() []string { return attrlist.Parse(r.attrs.Values) }
