package chi

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/kailas-cloud/qbm25/internal/domain"
	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
	domdoc "github.com/kailas-cloud/qbm25/internal/domain/document"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring/attrlist"
	"github.com/kailas-cloud/qbm25/internal/domain/search/result"
)

// memDB is an in-memory stand-in for the Redis-backed repositories.
type memDB struct {
	mu    sync.Mutex
	cols  map[string]domcol.Collection
	docs  map[string]map[string]domdoc.Document
	units map[string]map[string]struct{}
	down  bool
}

func newMemDB() *memDB {
	return &memDB{
		cols:  make(map[string]domcol.Collection),
		docs:  make(map[string]map[string]domdoc.Document),
		units: make(map[string]map[string]struct{}),
	}
}

func (m *memDB) Ping(_ context.Context) error {
	if m.down {
		return context.DeadlineExceeded
	}
	return nil
}

type memCollections struct{ *memDB }

func (m memCollections) Create(_ context.Context, col domcol.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cols[col.Name()]; ok {
		return domain.ErrAlreadyExists
	}
	m.cols[col.Name()] = col
	m.docs[col.Name()] = make(map[string]domdoc.Document)
	m.units[col.Name()] = make(map[string]struct{})
	return nil
}

func (m memCollections) Get(_ context.Context, name string) (domcol.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.cols[name]
	if !ok {
		return domcol.Collection{}, domain.ErrNotFound
	}
	return col, nil
}

func (m memCollections) List(_ context.Context) ([]domcol.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domcol.Collection, 0, len(m.cols))
	for _, c := range m.cols {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domcol.Collection) int { return strings.Compare(a.Name(), b.Name()) })
	return out, nil
}

func (m memCollections) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cols[name]; !ok {
		return domain.ErrNotFound
	}
	delete(m.cols, name)
	delete(m.docs, name)
	delete(m.units, name)
	return nil
}

type memDocuments struct{ *memDB }

func (m memDocuments) Upsert(_ context.Context, col string, doc *domdoc.Document) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.docs[col][doc.ID()]
	m.docs[col][doc.ID()] = *doc
	for _, u := range doc.Units() {
		m.units[col][u] = struct{}{}
	}
	return !exists, nil
}

func (m memDocuments) BatchUpsert(ctx context.Context, col string, docs []domdoc.Document) ([]bool, error) {
	created := make([]bool, len(docs))
	for i := range docs {
		c, err := m.Upsert(ctx, col, &docs[i])
		if err != nil {
			return nil, err
		}
		created[i] = c
	}
	return created, nil
}

func (m memDocuments) Get(_ context.Context, col, id string) (domdoc.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[col][id]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return d, nil
}

func (m memDocuments) List(_ context.Context, col, cursor string, limit int) ([]domdoc.Document, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.docs[col]))
	for id := range m.docs[col] {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	offset, _ := strconv.Atoi(cursor)
	end := min(offset+limit, len(ids))
	out := make([]domdoc.Document, 0, limit)
	for _, id := range ids[min(offset, len(ids)):end] {
		out = append(out, m.docs[col][id])
	}
	next := ""
	if end < len(ids) {
		next = strconv.Itoa(end)
	}
	return out, next, nil
}

func (m memDocuments) Delete(_ context.Context, col, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[col][id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(m.docs[col], id)
	return nil
}

func (m memDocuments) Count(_ context.Context, col string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs[col]), nil
}

// SearchBM25 scores a document by how many query terms its content contains.
func (m memDocuments) SearchBM25(_ context.Context, col, query string, topK int) ([]result.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	terms := strings.Fields(strings.ToLower(query))

	var out []result.Result
	for _, d := range m.docs[col] {
		content := strings.ToLower(d.Content())
		var score float64
		for _, t := range terms {
			score += float64(strings.Count(content, t))
		}
		if score == 0 {
			continue
		}
		out = append(out, result.New(d.ID(), score, d.Content(), scoring.Attributes{
			Units: attrlist.Format(d.Units()), Values: attrlist.Format(d.Values()),
		}))
	}
	slices.SortFunc(out, func(a, b result.Result) int {
		if a.BaseScore() != b.BaseScore() {
			if a.BaseScore() > b.BaseScore() {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID(), b.ID())
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

type memCatalogue struct{ *memDB }

func (m memCatalogue) Units(_ context.Context, col string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.units[col]))
	for u := range m.units[col] {
		out = append(out, u)
	}
	slices.Sort(out)
	return out, nil
}

func (m memCatalogue) Rebuild(ctx context.Context, col string) ([]string, error) {
	m.mu.Lock()
	fresh := make(map[string]struct{})
	for _, d := range m.docs[col] {
		for _, u := range d.Units() {
			fresh[u] = struct{}{}
		}
	}
	m.units[col] = fresh
	m.mu.Unlock()
	return m.Units(ctx, col)
}
