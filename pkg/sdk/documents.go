package qbm25

import (
	"context"
	"fmt"
	"time"

	batchuc "github.com/kailas-cloud/qbm25/internal/usecase/batch"
)

// DocumentService manages documents within a single collection.
type DocumentService struct {
	collection string
	docSvc     documentUseCase
	batchSvc   batchUseCase
	obs        *observer
}

// Upsert creates or replaces a document. Returns true if created.
func (s *DocumentService) Upsert(ctx context.Context, doc Document) (_ bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.upsert", start, err) }()

	d, err := toInternalDocument(doc)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	created, err := s.docSvc.Upsert(ctx, s.collection, &d)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	return created, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.get", start, err) }()

	d, err := s.docSvc.Get(ctx, s.collection, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// List returns a paginated list of documents.
func (s *DocumentService) List(ctx context.Context, cursor string, limit int) (ListResult, error) {
	docs, next, err := s.docSvc.List(ctx, s.collection, cursor, limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("list documents: %w", err)
	}
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = fromInternalDocument(&docs[i])
	}
	return ListResult{Documents: out, NextCursor: next}, nil
}

// Delete removes a document by ID.
func (s *DocumentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete", start, err) }()

	if err = s.docSvc.Delete(ctx, s.collection, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Count returns the number of documents in the collection.
func (s *DocumentService) Count(ctx context.Context) (int, error) {
	n, err := s.docSvc.Count(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// BatchUpsert validates and stores documents in one round-trip. Invalid documents
// are reported per item; the error is reserved for whole-batch failures.
func (s *DocumentService) BatchUpsert(ctx context.Context, docs []Document) (_ []BatchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.batch_upsert", start, err) }()

	items := make([]batchuc.Item, len(docs))
	for i, d := range docs {
		items[i] = toBatchItem(d)
	}
	results, err := s.batchSvc.Upsert(ctx, s.collection, items)
	if err != nil {
		return nil, fmt.Errorf("batch upsert: %w", err)
	}
	return fromBatchResults(results), nil
}
