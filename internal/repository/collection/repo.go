package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/qbm25/internal/db"
	"github.com/kailas-cloud/qbm25/internal/domain"
	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
	"github.com/kailas-cloud/qbm25/internal/repository/keyspace"
)

// store is the consumer interface for collections (ISP).
//
//nolint:interfacebloat // collection repo needs hash + index management operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
}

// Repo implements usecase/collection.Repository.
type Repo struct {
	store store
	keys  keyspace.Keys
	opts  IndexOptions
}

// New creates a collection repository.
func New(s store, keys keyspace.Keys) *Repo {
	return &Repo{store: s, keys: keys}
}

// WithIndexOptions configures language and stopwords of new indexes.
func (r *Repo) WithIndexOptions(opts IndexOptions) *Repo {
	r.opts = opts
	return r
}

// Create stores a collection: HSET metadata then FT.CREATE index.
// On FT.CREATE failure, rolls back the HSET via DEL.
func (r *Repo) Create(ctx context.Context, col domcol.Collection) error {
	name := col.Name()
	metaKey := r.keys.Meta(name)

	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	indexDef, err := buildIndex(r.keys, name, r.opts)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.HSet(ctx, metaKey, collectionToHash(col)); err != nil {
		return fmt.Errorf("hset collection %s: %w", name, err)
	}

	// FT.CREATE, rollback HSET on error
	if err := r.store.CreateIndex(ctx, indexDef); err != nil {
		_, cleanupErr := r.store.Del(ctx, metaKey)
		if errors.Is(err, db.ErrIndexExists) && cleanupErr == nil {
			return fmt.Errorf("orphan index %s: %w", indexDef.Name, domain.ErrAlreadyExists)
		}
		return errors.Join(fmt.Errorf("create index %s: %w", name, err), cleanupErr)
	}

	return nil
}

// Get retrieves a collection by name.
func (r *Repo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	m, err := r.store.HGetAll(ctx, r.keys.Meta(name))
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(m) == 0 {
		return domcol.Collection{}, domain.ErrNotFound
	}

	return collectionFromHash(m)
}

// List returns all collections sorted by CreatedAt.
func (r *Repo) List(ctx context.Context) ([]domcol.Collection, error) {
	keys, err := r.store.Scan(ctx, r.keys.MetaPattern())
	if err != nil {
		return nil, fmt.Errorf("scan collections: %w", err)
	}
	if len(keys) == 0 {
		return []domcol.Collection{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi collections: %w", err)
	}

	collections := make([]domcol.Collection, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		col, err := collectionFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse collection %s: %w", keys[i], err)
		}
		collections = append(collections, col)
	}

	sort.Slice(collections, func(i, j int) bool {
		if collections[i].CreatedAt() == collections[j].CreatedAt() {
			return collections[i].Name() < collections[j].Name()
		}
		return collections[i].CreatedAt() < collections[j].CreatedAt()
	})

	return collections, nil
}

// Delete removes a collection with its documents and unit catalogue.
// Metadata is deleted first and restored if FT.DROPINDEX fails.
func (r *Repo) Delete(ctx context.Context, name string) error {
	metaKey := r.keys.Meta(name)

	metaBackup, err := r.store.HGetAll(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(metaBackup) == 0 {
		return domain.ErrNotFound
	}

	if _, err := r.store.Del(ctx, metaKey); err != nil {
		return fmt.Errorf("del collection %s: %w", name, err)
	}

	// DD drops the document hashes together with the index
	err = r.store.DropIndex(ctx, r.keys.Index(name), true)
	if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		cleanupErr := r.store.HSet(ctx, metaKey, metaBackup)
		return errors.Join(fmt.Errorf("drop index %s: %w", name, err), cleanupErr)
	}

	if _, err := r.store.Del(ctx, r.keys.Units(name)); err != nil {
		return fmt.Errorf("del unit catalogue %s: %w", name, err)
	}

	return nil
}
