package batch

import (
	"context"

	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
	domdoc "github.com/kailas-cloud/qbm25/internal/domain/document"
)

// BulkUpserter stores many documents in one round-trip. created aligns with docs.
type BulkUpserter interface {
	BatchUpsert(ctx context.Context, collectionName string, docs []domdoc.Document) (created []bool, err error)
}

// CollectionReader reads collections for existence checks.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}
