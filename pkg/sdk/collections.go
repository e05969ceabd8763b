package qbm25

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/qbm25/internal/domain"
)

// CollectionService manages collections.
type CollectionService struct {
	svc   collectionUseCase
	units catalogueUseCase
	obs   *observer
}

// Create creates a new collection and its full-text index.
func (s *CollectionService) Create(ctx context.Context, name string) (_ CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.create", start, err) }()

	col, err := s.svc.Create(ctx, name)
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("create collection: %w", err)
	}
	return fromInternalCollection(col), nil
}

// Ensure creates a collection if it does not exist.
// If it already exists, returns its info.
func (s *CollectionService) Ensure(ctx context.Context, name string) (_ CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.ensure", start, err) }()

	col, err := s.svc.Create(ctx, name)
	if err == nil {
		return fromInternalCollection(col), nil
	}
	if !errors.Is(err, domain.ErrAlreadyExists) {
		return CollectionInfo{}, fmt.Errorf("ensure collection: %w", err)
	}

	existing, err := s.svc.Get(ctx, name)
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("ensure collection: %w", err)
	}
	return fromInternalCollection(existing), nil
}

// Get retrieves collection metadata and its document count.
func (s *CollectionService) Get(ctx context.Context, name string) (_ CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.get", start, err) }()

	info, err := s.svc.Describe(ctx, name)
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("get collection: %w", err)
	}
	out := fromInternalCollection(info.Collection)
	out.Documents = info.Documents
	return out, nil
}

// List returns a paginated list of collections.
// Cursor is a collection name to start after (empty for first page).
// If cursor references a deleted or non-existent collection, an empty page is
// returned (HasMore=false). Callers should treat this as end-of-list.
// Limit controls page size (0 = return all).
func (s *CollectionService) List(
	ctx context.Context, cursor string, limit int,
) (_ CollectionListResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.list", start, err) }()

	cols, err := s.svc.List(ctx)
	if err != nil {
		return CollectionListResult{}, fmt.Errorf("list collections: %w", err)
	}

	all := make([]CollectionInfo, len(cols))
	for i, c := range cols {
		all[i] = fromInternalCollection(c)
	}

	// Client-side cursor pagination (collections are few).
	if cursor != "" {
		startIdx := -1
		for i, c := range all {
			if c.Name == cursor {
				startIdx = i
				break
			}
		}
		if startIdx >= 0 && startIdx+1 < len(all) {
			all = all[startIdx+1:]
		} else {
			all = nil
		}
	}

	if limit <= 0 || limit >= len(all) {
		return CollectionListResult{Collections: all}, nil
	}

	page := all[:limit]
	return CollectionListResult{
		Collections: page,
		NextCursor:  page[len(page)-1].Name,
		HasMore:     true,
	}, nil
}

// Delete removes a collection, its index and every document in it.
func (s *CollectionService) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.delete", start, err) }()

	if err = s.svc.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

// Units returns the sorted distinct units seen in a collection.
func (s *CollectionService) Units(ctx context.Context, name string) (_ []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.units", start, err) }()

	units, err := s.units.Units(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("units: %w", err)
	}
	return units, nil
}

// RebuildUnits recomputes the unit catalogue from the stored documents,
// dropping units no document uses anymore.
func (s *CollectionService) RebuildUnits(ctx context.Context, name string) (_ []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.rebuild_units", start, err) }()

	units, err := s.units.Rebuild(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("rebuild units: %w", err)
	}
	return units, nil
}
