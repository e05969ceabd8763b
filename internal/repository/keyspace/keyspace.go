// Package keyspace derives every Redis key the repositories touch from one configurable prefix.
//
// Layout for prefix "qbm25:" and collection "products":
//
//	qbm25:#meta:products    collection metadata hash
//	qbm25:#units:products   unit catalogue set
//	qbm25:products:idx      FT index
//	qbm25:products:{id}     document hashes
//
// Collection names cannot contain '#', so bookkeeping keys never fall under a document prefix.
package keyspace

import "strings"

// DefaultPrefix is used when no prefix is configured.
const DefaultPrefix = "qbm25:"

// Keys builds keys under a fixed prefix.
type Keys struct {
	prefix string
}

// New creates a key builder. An empty prefix means DefaultPrefix.
func New(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keys{prefix: prefix}
}

// Prefix returns the configured prefix.
func (k Keys) Prefix() string { return k.prefix }

// Meta is the collection metadata hash.
func (k Keys) Meta(collection string) string { return k.prefix + "#meta:" + collection }

// MetaPattern matches every collection metadata hash.
func (k Keys) MetaPattern() string { return k.prefix + "#meta:*" }

// Units is the unit catalogue set of a collection.
func (k Keys) Units(collection string) string { return k.prefix + "#units:" + collection }

// Index is the FT index name of a collection.
func (k Keys) Index(collection string) string { return k.prefix + collection + ":idx" }

// DocPrefix is the key prefix covered by the collection's index.
func (k Keys) DocPrefix(collection string) string { return k.prefix + collection + ":" }

// Doc is the hash key of one document.
func (k Keys) Doc(collection, id string) string { return k.DocPrefix(collection) + id }

// DocID strips the document prefix from key; ok is false for keys outside the collection.
func (k Keys) DocID(collection, key string) (id string, ok bool) {
	return strings.CutPrefix(key, k.DocPrefix(collection))
}
