package collection

import (
	"github.com/kailas-cloud/qbm25/internal/db"
	"github.com/kailas-cloud/qbm25/internal/repository/keyspace"
)

// contentField is the TEXT field BM25 scores against.
const contentField = "__content"

// IndexOptions tunes the full-text index built for every collection.
type IndexOptions struct {
	// Language picks the stemmer, e.g. "english". Empty keeps the server default.
	Language string
	// Stopwords replaces the server list when non-nil; an empty slice disables stopwords.
	Stopwords []string
}

// buildIndex creates the FT index over a collection's document hashes.
// Only __content is indexed; units and values are read back through RETURN and never queried.
func buildIndex(keys keyspace.Keys, name string, opts IndexOptions) (*db.IndexDefinition, error) {
	b := db.NewIndex(keys.Index(name)).
		Prefix(keys.DocPrefix(name)).
		Language(opts.Language).
		Text(contentField)
	if opts.Stopwords != nil {
		b = b.Stopwords(opts.Stopwords...)
	}
	return b.Build()
}
