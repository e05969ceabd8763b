package document

import (
	"context"
	"fmt"

	domdoc "github.com/kailas-cloud/qbm25/internal/domain/document"
)

// Service handles document CRUD within existing collections.
type Service struct {
	repo            Repository
	colls           CollectionReader
	defaultPageSize int
	maxPageSize     int
}

// New creates a document service.
func New(repo Repository, colls CollectionReader) *Service {
	return &Service{
		repo:            repo,
		colls:           colls,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Upsert creates or updates a document.
// Returns true if the document was created, false if updated.
func (s *Service) Upsert(ctx context.Context, collectionName string, doc *domdoc.Document) (bool, error) {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return false, fmt.Errorf("get collection: %w", err)
	}

	created, err := s.repo.Upsert(ctx, collectionName, doc)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}
	return created, nil
}

// Get retrieves a document by collection and ID.
func (s *Service) Get(ctx context.Context, collectionName, id string) (domdoc.Document, error) {
	if err := domdoc.ValidateID(id); err != nil {
		return domdoc.Document{}, err //nolint:wrapcheck // already wraps ErrInvalidDocument
	}
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return domdoc.Document{}, fmt.Errorf("get collection: %w", err)
	}

	doc, err := s.repo.Get(ctx, collectionName, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns a paginated list of documents.
func (s *Service) List(
	ctx context.Context, collectionName, cursor string, limit int,
) ([]domdoc.Document, string, error) {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return nil, "", fmt.Errorf("get collection: %w", err)
	}

	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	docs, nextCursor, err := s.repo.List(ctx, collectionName, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	return docs, nextCursor, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, collectionName, id string) error {
	if err := domdoc.ValidateID(id); err != nil {
		return err //nolint:wrapcheck // already wraps ErrInvalidDocument
	}
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return fmt.Errorf("get collection: %w", err)
	}

	if err := s.repo.Delete(ctx, collectionName, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Count returns the number of documents in a collection.
func (s *Service) Count(ctx context.Context, collectionName string) (int, error) {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return 0, fmt.Errorf("get collection: %w", err)
	}
	count, err := s.repo.Count(ctx, collectionName)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}
