package catalogue

import (
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/qbm25/internal/db"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring/attrlist"
	"github.com/kailas-cloud/qbm25/internal/repository/keyspace"
)

// rebuildPageSize is the FT.SEARCH page used when rescanning a collection.
const rebuildPageSize = 500

// store is the consumer interface for the unit catalogue (ISP).
type store interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo reads and rebuilds the per-collection set of distinct units.
type Repo struct {
	store store
	keys  keyspace.Keys
}

// New creates a catalogue repository.
func New(s store, keys keyspace.Keys) *Repo {
	return &Repo{store: s, keys: keys}
}

// Units returns the catalogued units of a collection, sorted.
func (r *Repo) Units(ctx context.Context, collectionName string) ([]string, error) {
	units, err := r.store.SMembers(ctx, r.keys.Units(collectionName))
	if err != nil {
		return nil, fmt.Errorf("smembers units %s: %w", collectionName, err)
	}
	slices.Sort(units)
	return units, nil
}

// Rebuild rescans every document and replaces the catalogue with the units still in use.
// Returns the rebuilt, sorted unit list.
func (r *Repo) Rebuild(ctx context.Context, collectionName string) ([]string, error) {
	seen := make(map[string]struct{})
	index := r.keys.Index(collectionName)

	for offset := 0; ; offset += rebuildPageSize {
		page, err := r.store.SearchList(ctx, index, "*", offset, rebuildPageSize, []string{"units"})
		if err != nil {
			return nil, fmt.Errorf("scan units %s: %w", collectionName, err)
		}
		if page == nil {
			break
		}
		for _, e := range page.Entries {
			for _, u := range attrlist.Parse(e.Fields["units"]) {
				if u != "" {
					seen[u] = struct{}{}
				}
			}
		}
		if len(page.Entries) < rebuildPageSize {
			break
		}
	}

	units := make([]string, 0, len(seen))
	for u := range seen {
		units = append(units, u)
	}
	slices.Sort(units)

	key := r.keys.Units(collectionName)
	if _, err := r.store.Del(ctx, key); err != nil {
		return nil, fmt.Errorf("reset units %s: %w", collectionName, err)
	}
	if err := r.store.SAdd(ctx, key, units...); err != nil {
		return nil, fmt.Errorf("sadd units %s: %w", collectionName, err)
	}
	return units, nil
}
