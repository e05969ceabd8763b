package qbm25

// Handler selects how the qbm25 script turns a distance into a boost.
type Handler string

// Handler constants. Any other value leaves the normalized score unboosted.
const (
	HandlerEqual   Handler = "="
	HandlerGreater Handler = ">"
	HandlerLess    Handler = "<"
	HandlerBand    Handler = "<<"
)

// Script identifiers.
const (
	ScriptLang  = "expert_scripts"
	ScriptQBM25 = "qbm25"
)

// CollectionInfo represents collection metadata.
type CollectionInfo struct {
	Name      string
	CreatedAt int64
	// Documents is filled by Get only.
	Documents int
}

// CollectionListResult is one page of collections.
type CollectionListResult struct {
	Collections []CollectionInfo
	NextCursor  string
	HasMore     bool
}

// Attr is one unit/value attribute of a document.
type Attr struct {
	Unit  string
	Value float64
}

// Document is a searchable text with numeric attributes.
type Document struct {
	ID      string
	Content string
	Attrs   []Attr
}

// SearchResult is a single search hit.
type SearchResult struct {
	ID string
	// Score is the final ranking score; BaseScore is the raw BM25 score.
	Score     float64
	BaseScore float64
	Content   string
	Attrs     []Attr
}

// BatchStatus is the outcome of one batch item.
type BatchStatus string

// Batch status constants.
const (
	BatchCreated BatchStatus = "created"
	BatchUpdated BatchStatus = "updated"
	BatchError   BatchStatus = "error"
)

// BatchResult is the outcome of one item in a batch operation.
type BatchResult struct {
	ID     string
	Status BatchStatus
	Err    error
}

// OK reports whether the item was stored.
func (r BatchResult) OK() bool { return r.Status != BatchError }

// ListResult is a paginated list of documents.
type ListResult struct {
	Documents  []Document
	NextCursor string
}

// ScoreItem is one stateless scoring input.
type ScoreItem struct {
	BaseScore float64
	Attrs     []Attr
}

// ScoreResult explains how one item was scored.
type ScoreResult struct {
	Score      float64
	Normalized float64
	// Outcome is boosted, early_exit, passthrough or mismatch.
	Outcome  string
	Distance float64
	Reason   string
}
