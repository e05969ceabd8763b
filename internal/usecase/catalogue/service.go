// Package catalogue lists the distinct units used across a collection, the
// vocabulary clients pick a query unit from.
package catalogue

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service exposes unit catalogues.
type Service struct {
	repo   Repository
	colls  CollectionReader
	logger *zap.Logger
}

// New creates a catalogue service.
func New(repo Repository, colls CollectionReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, colls: colls, logger: logger}
}

// Units returns the sorted distinct units of a collection.
func (s *Service) Units(ctx context.Context, collectionName string) ([]string, error) {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	units, err := s.repo.Units(ctx, collectionName)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

// Rebuild drops units no document uses anymore.
func (s *Service) Rebuild(ctx context.Context, collectionName string) ([]string, error) {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	units, err := s.repo.Rebuild(ctx, collectionName)
	if err != nil {
		return nil, fmt.Errorf("rebuild units: %w", err)
	}
	s.logger.Info("Unit catalogue rebuilt",
		zap.String("collection", collectionName),
		zap.Int("units", len(units)),
	)
	return units, nil
}
