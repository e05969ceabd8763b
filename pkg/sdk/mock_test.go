package qbm25

import (
	"context"

	dombatch "github.com/kailas-cloud/qbm25/internal/domain/batch"
	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
	domdoc "github.com/kailas-cloud/qbm25/internal/domain/document"
	"github.com/kailas-cloud/qbm25/internal/domain/search/request"
	"github.com/kailas-cloud/qbm25/internal/domain/search/result"
	batchuc "github.com/kailas-cloud/qbm25/internal/usecase/batch"
	collectionuc "github.com/kailas-cloud/qbm25/internal/usecase/collection"
	healthuc "github.com/kailas-cloud/qbm25/internal/usecase/health"
)

// --- collectionUseCase mock ---

type mockCollectionUC struct {
	createFn   func(ctx context.Context, name string) (domcol.Collection, error)
	getFn      func(ctx context.Context, name string) (domcol.Collection, error)
	describeFn func(ctx context.Context, name string) (collectionuc.Info, error)
	listFn     func(ctx context.Context) ([]domcol.Collection, error)
	deleteFn   func(ctx context.Context, name string) error
}

func (m *mockCollectionUC) Create(ctx context.Context, name string) (domcol.Collection, error) {
	return m.createFn(ctx, name)
}

func (m *mockCollectionUC) Get(ctx context.Context, name string) (domcol.Collection, error) {
	return m.getFn(ctx, name)
}

func (m *mockCollectionUC) Describe(ctx context.Context, name string) (collectionuc.Info, error) {
	return m.describeFn(ctx, name)
}

func (m *mockCollectionUC) List(ctx context.Context) ([]domcol.Collection, error) {
	return m.listFn(ctx)
}

func (m *mockCollectionUC) Delete(ctx context.Context, name string) error {
	return m.deleteFn(ctx, name)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	upsertFn func(ctx context.Context, col string, doc *domdoc.Document) (bool, error)
	getFn    func(ctx context.Context, col, id string) (domdoc.Document, error)
	listFn   func(ctx context.Context, col, cursor string, limit int) ([]domdoc.Document, string, error)
	deleteFn func(ctx context.Context, col, id string) error
	countFn  func(ctx context.Context, col string) (int, error)
}

func (m *mockDocumentUC) Upsert(ctx context.Context, col string, doc *domdoc.Document) (bool, error) {
	return m.upsertFn(ctx, col, doc)
}

func (m *mockDocumentUC) Get(ctx context.Context, col, id string) (domdoc.Document, error) {
	return m.getFn(ctx, col, id)
}

func (m *mockDocumentUC) List(
	ctx context.Context, col, cursor string, limit int,
) ([]domdoc.Document, string, error) {
	return m.listFn(ctx, col, cursor, limit)
}

func (m *mockDocumentUC) Delete(ctx context.Context, col, id string) error {
	return m.deleteFn(ctx, col, id)
}

func (m *mockDocumentUC) Count(ctx context.Context, col string) (int, error) {
	return m.countFn(ctx, col)
}

// --- batchUseCase mock ---

type mockBatchUC struct {
	upsertFn func(ctx context.Context, col string, items []batchuc.Item) ([]dombatch.Result, error)
}

func (m *mockBatchUC) Upsert(ctx context.Context, col string, items []batchuc.Item) ([]dombatch.Result, error) {
	return m.upsertFn(ctx, col, items)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, col string, req *request.Request) ([]result.Result, error)
}

func (m *mockSearchUC) Search(ctx context.Context, col string, req *request.Request) ([]result.Result, error) {
	return m.searchFn(ctx, col, req)
}

// --- catalogueUseCase mock ---

type mockCatalogueUC struct {
	unitsFn   func(ctx context.Context, col string) ([]string, error)
	rebuildFn func(ctx context.Context, col string) ([]string, error)
}

func (m *mockCatalogueUC) Units(ctx context.Context, col string) ([]string, error) {
	return m.unitsFn(ctx, col)
}

func (m *mockCatalogueUC) Rebuild(ctx context.Context, col string) ([]string, error) {
	return m.rebuildFn(ctx, col)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }
