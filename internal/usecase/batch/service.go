package batch

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/qbm25/internal/domain"
	dombatch "github.com/kailas-cloud/qbm25/internal/domain/batch"
	domdoc "github.com/kailas-cloud/qbm25/internal/domain/document"
)

// MaxBatchSize is the default maximum number of items per batch request.
const MaxBatchSize = 100

// Item is one unvalidated document of a batch.
type Item struct {
	ID      string
	Content string
	Units   []string
	Values  []string
}

// Service handles batch document upserts with per-item error reporting.
type Service struct {
	docs         BulkUpserter
	colls        CollectionReader
	maxBatchSize int
}

// New creates a batch service.
func New(docs BulkUpserter, colls CollectionReader) *Service {
	return &Service{docs: docs, colls: colls, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// MaxSize returns the configured batch limit.
func (s *Service) MaxSize() int { return s.maxBatchSize }

// Upsert validates every item, then stores the valid ones in a single pipeline.
// Invalid items are reported individually and do not block the rest. An oversized batch
// or a missing collection fails the whole call.
func (s *Service) Upsert(ctx context.Context, collectionName string, items []Item) ([]dombatch.Result, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("empty batch: %w", domain.ErrInvalidRequest)
	}
	if len(items) > s.maxBatchSize {
		return nil, fmt.Errorf("batch size %d exceeds %d: %w", len(items), s.maxBatchSize, domain.ErrInvalidRequest)
	}

	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}

	results := make([]dombatch.Result, len(items))
	valid := make([]domdoc.Document, 0, len(items))
	validIdx := make([]int, 0, len(items))

	for i, it := range items {
		doc, err := domdoc.New(it.ID, it.Content, it.Units, it.Values)
		if err != nil {
			results[i] = dombatch.NewError(i, it.ID, err)
			continue
		}
		valid = append(valid, doc)
		validIdx = append(validIdx, i)
	}

	if len(valid) == 0 {
		return results, nil
	}

	created, err := s.docs.BatchUpsert(ctx, collectionName, valid)
	if err != nil {
		for _, i := range validIdx {
			results[i] = dombatch.NewError(i, items[i].ID, fmt.Errorf("batch upsert: %w", err))
		}
		return results, nil
	}

	for j, i := range validIdx {
		results[i] = dombatch.NewStored(i, items[i].ID, j < len(created) && created[j])
	}
	return results, nil
}
