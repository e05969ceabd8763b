package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qbm25/internal/domain"
	dombatch "github.com/kailas-cloud/qbm25/internal/domain/batch"
	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring/attrlist"
	batchuc "github.com/kailas-cloud/qbm25/internal/usecase/batch"
)

// Column names of the input CSV header.
const (
	colID      = "id"
	colContent = "content"
	colUnits   = "units"
	colValues  = "values"
)

type collectionManager interface {
	Create(ctx context.Context, name string) (domcol.Collection, error)
	Delete(ctx context.Context, name string) error
}

type batchUpserter interface {
	Upsert(ctx context.Context, collectionName string, items []batchuc.Item) ([]dombatch.Result, error)
}

type indexer struct {
	colls     collectionManager
	batch     batchUpserter
	batchSize int
	logger    *zap.Logger
	newID     func() string
}

func newIndexer(colls collectionManager, batch batchUpserter, batchSize int, logger *zap.Logger) *indexer {
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &indexer{colls: colls, batch: batch, batchSize: batchSize, logger: logger, newID: uuid.NewString}
}

// Run recreates collection and streams the CSV rows from r into it.
func (ix *indexer) Run(ctx context.Context, collection string, r io.Reader) (dombatch.Summary, error) {
	var total dombatch.Summary

	rows, err := newRowReader(r)
	if err != nil {
		return total, err
	}

	if err := ix.colls.Delete(ctx, collection); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return total, fmt.Errorf("drop collection: %w", err)
	}
	if _, err := ix.colls.Create(ctx, collection); err != nil {
		return total, fmt.Errorf("create collection: %w", err)
	}
	ix.logger.Info("Collection recreated", zap.String("collection", collection))

	pending := make([]batchuc.Item, 0, ix.batchSize)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		results, err := ix.batch.Upsert(ctx, collection, pending)
		if err != nil {
			return fmt.Errorf("upsert batch at line %d: %w", rows.line, err)
		}
		for _, res := range results {
			if !res.OK() {
				ix.logger.Warn("Row rejected", zap.String("id", res.ID()), zap.Error(res.Err()))
			}
		}
		s := dombatch.Summarize(results)
		total.Created += s.Created
		total.Updated += s.Updated
		total.Failed += s.Failed
		ix.logger.Info("Batch indexed",
			zap.Int("size", len(pending)),
			zap.Int("created", total.Created),
			zap.Int("failed", total.Failed),
		)
		pending = pending[:0]
		return nil
	}

	for {
		item, err := rows.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, err
		}
		if item.ID == "" {
			item.ID = ix.newID()
		}
		pending = append(pending, item)
		if len(pending) == ix.batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

// rowReader maps CSV records to batch items by header position.
type rowReader struct {
	r    *csv.Reader
	cols map[string]int
	line int
}

func newRowReader(r io.Reader) (*rowReader, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv is empty: header row required")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols[colContent]; !ok {
		return nil, fmt.Errorf("header must contain a %q column", colContent)
	}
	return &rowReader{r: cr, cols: cols, line: 1}, nil
}

func (rr *rowReader) next() (batchuc.Item, error) {
	rec, err := rr.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return batchuc.Item{}, io.EOF
		}
		return batchuc.Item{}, fmt.Errorf("read row: %w", err)
	}
	rr.line++
	return batchuc.Item{
		ID:      rr.field(rec, colID),
		Content: rr.field(rec, colContent),
		Units:   attrlist.Parse(rr.field(rec, colUnits)),
		Values:  attrlist.Parse(rr.field(rec, colValues)),
	}, nil
}

func (rr *rowReader) field(rec []string, name string) string {
	i, ok := rr.cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
