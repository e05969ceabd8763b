package catalogue

import (
	"context"

	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
)

// Repository reads and rebuilds unit catalogues.
type Repository interface {
	Units(ctx context.Context, collectionName string) ([]string, error)
	Rebuild(ctx context.Context, collectionName string) ([]string, error)
}

// CollectionReader reads collections for existence checks.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}
