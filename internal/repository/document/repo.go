package document

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/qbm25/internal/db"
	"github.com/kailas-cloud/qbm25/internal/domain"
	domdoc "github.com/kailas-cloud/qbm25/internal/domain/document"
	"github.com/kailas-cloud/qbm25/internal/repository/keyspace"
)

// store is the consumer interface for documents (ISP).
//
//nolint:interfacebloat // document repo needs hash, set and search operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	ExistsMulti(ctx context.Context, keys []string) ([]bool, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements usecase/document.Repository.
type Repo struct {
	store store
	keys  keyspace.Keys
}

// New creates a document repository.
func New(s store, keys keyspace.Keys) *Repo {
	return &Repo{store: s, keys: keys}
}

// Upsert creates or updates a document and records its units in the catalogue.
// Returns true if created.
func (r *Repo) Upsert(ctx context.Context, collectionName string, doc *domdoc.Document) (bool, error) {
	key := r.keys.Doc(collectionName, doc.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, toHash(doc)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	if err := r.store.SAdd(ctx, r.keys.Units(collectionName), doc.Units()...); err != nil {
		return false, fmt.Errorf("sadd units %s: %w", collectionName, err)
	}

	return !exists, nil
}

// BatchUpsert stores docs in one pipelined round-trip. created aligns with docs.
func (r *Repo) BatchUpsert(ctx context.Context, collectionName string, docs []domdoc.Document) ([]bool, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(docs))
	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		keys[i] = r.keys.Doc(collectionName, docs[i].ID())
		items[i] = db.HashSetItem{Key: keys[i], Fields: toHash(&docs[i])}
	}

	existed, err := r.store.ExistsMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("check exists %s: %w", collectionName, err)
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return nil, fmt.Errorf("hset multi %s: %w", collectionName, err)
	}

	if err := r.store.SAdd(ctx, r.keys.Units(collectionName), distinctUnits(docs)...); err != nil {
		return nil, fmt.Errorf("sadd units %s: %w", collectionName, err)
	}

	created := make([]bool, len(docs))
	for i := range created {
		created[i] = !existed[i]
	}
	return created, nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, collectionName, id string) (domdoc.Document, error) {
	key := r.keys.Doc(collectionName, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return fromHash(id, m), nil
}

// List returns documents with offset-cursor pagination via FT.SEARCH.
func (r *Repo) List(ctx context.Context, collectionName, cursor string, limit int) (
	[]domdoc.Document, string, error,
) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, domain.ErrInvalidRequest)
		}
		offset = parsed
	}

	// one extra row tells whether another page exists
	result, err := r.store.SearchList(ctx, r.keys.Index(collectionName), "*", offset, limit+1, listFields)
	if err != nil {
		return nil, "", fmt.Errorf("search list %s: %w", collectionName, err)
	}
	if result == nil || result.Total == 0 {
		return nil, "", nil
	}

	docs := make([]domdoc.Document, 0, min(limit, len(result.Entries)))
	for i, entry := range result.Entries {
		if i >= limit {
			break
		}
		id, ok := r.keys.DocID(collectionName, entry.Key)
		if !ok {
			continue
		}
		docs = append(docs, fromHash(id, entry.Fields))
	}

	var nextCursor string
	if len(result.Entries) > limit {
		nextCursor = strconv.Itoa(offset + limit)
	}

	return docs, nextCursor, nil
}

// Count returns the number of documents in a collection.
func (r *Repo) Count(ctx context.Context, collectionName string) (int, error) {
	n, err := r.store.SearchCount(ctx, r.keys.Index(collectionName), "*")
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w", collectionName, err)
	}
	return n, nil
}

// Delete removes a document. The catalogue keeps its units until the next rebuild.
func (r *Repo) Delete(ctx context.Context, collectionName, id string) error {
	key := r.keys.Doc(collectionName, id)

	n, err := r.store.Del(ctx, key)
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
