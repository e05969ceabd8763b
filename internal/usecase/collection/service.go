package collection

import (
	"context"
	"fmt"

	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
)

// Info is a collection with its current document count.
type Info struct {
	Collection domcol.Collection
	Documents  int
}

// Service handles collection CRUD operations.
type Service struct {
	repo  Repository
	count DocumentCounter
}

// New creates a collection service.
func New(repo Repository, count DocumentCounter) *Service {
	return &Service{repo: repo, count: count}
}

// Create validates and stores a new collection.
func (s *Service) Create(ctx context.Context, name string) (domcol.Collection, error) {
	col, err := domcol.New(name)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("validate collection: %w", err)
	}

	if err := s.repo.Create(ctx, col); err != nil {
		return domcol.Collection{}, fmt.Errorf("create collection: %w", err)
	}

	return col, nil
}

// Get retrieves a collection by name.
func (s *Service) Get(ctx context.Context, name string) (domcol.Collection, error) {
	col, err := s.repo.Get(ctx, name)
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("get collection: %w", err)
	}
	return col, nil
}

// Describe returns a collection together with its document count.
func (s *Service) Describe(ctx context.Context, name string) (Info, error) {
	col, err := s.Get(ctx, name)
	if err != nil {
		return Info{}, err
	}
	n, err := s.count.Count(ctx, name)
	if err != nil {
		return Info{}, fmt.Errorf("count documents: %w", err)
	}
	return Info{Collection: col, Documents: n}, nil
}

// List returns all collections.
func (s *Service) List(ctx context.Context) ([]domcol.Collection, error) {
	cols, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return cols, nil
}

// Delete removes a collection, its index and its documents.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}
