package qbm25

import (
	"fmt"
	"strconv"

	dombatch "github.com/kailas-cloud/qbm25/internal/domain/batch"
	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
	domdoc "github.com/kailas-cloud/qbm25/internal/domain/document"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring/attrlist"
	"github.com/kailas-cloud/qbm25/internal/domain/search/result"
	batchuc "github.com/kailas-cloud/qbm25/internal/usecase/batch"
	scoreuc "github.com/kailas-cloud/qbm25/internal/usecase/score"
)

func formatList(items []string) string { return attrlist.Format(items) }

func splitAttrs(attrs []Attr) (units, values []string) {
	if len(attrs) == 0 {
		return nil, nil
	}
	units = make([]string, len(attrs))
	values = make([]string, len(attrs))
	for i, a := range attrs {
		units[i] = a.Unit
		values[i] = strconv.FormatFloat(a.Value, 'g', -1, 64)
	}
	return units, values
}

// joinAttrs pairs stored units and values. Values that do not parse, and units
// without a partner, are dropped.
func joinAttrs(units, values []string) []Attr {
	n := min(len(units), len(values))
	if n == 0 {
		return nil
	}
	out := make([]Attr, 0, n)
	for i := range n {
		v, err := strconv.ParseFloat(values[i], 64)
		if err != nil {
			continue
		}
		out = append(out, Attr{Unit: units[i], Value: v})
	}
	return out
}

func toInternalDocument(d Document) (domdoc.Document, error) {
	units, values := splitAttrs(d.Attrs)
	doc, err := domdoc.New(d.ID, d.Content, units, values)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("validate document: %w", err)
	}
	return doc, nil
}

func toBatchItem(d Document) batchuc.Item {
	units, values := splitAttrs(d.Attrs)
	return batchuc.Item{ID: d.ID, Content: d.Content, Units: units, Values: values}
}

func fromInternalDocument(d *domdoc.Document) Document {
	return Document{
		ID:      d.ID(),
		Content: d.Content(),
		Attrs:   joinAttrs(d.Units(), d.Values()),
	}
}

func fromInternalCollection(col domcol.Collection) CollectionInfo {
	return CollectionInfo{Name: col.Name(), CreatedAt: col.CreatedAt()}
}

func fromSearchResults(results []result.Result) []SearchResult {
	out := make([]SearchResult, len(results))
	for i := range results {
		r := &results[i]
		out[i] = SearchResult{
			ID:        r.ID(),
			Score:     r.Score(),
			BaseScore: r.BaseScore(),
			Content:   r.Content(),
			Attrs:     joinAttrs(r.Units(), r.Values()),
		}
	}
	return out
}

func fromBatchResults(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{
			ID:     r.ID(),
			Status: BatchStatus(r.Status()),
			Err:    r.Err(),
		}
	}
	return out
}

func toScoreItems(items []ScoreItem) []scoreuc.Item {
	out := make([]scoreuc.Item, len(items))
	for i, it := range items {
		units, values := splitAttrs(it.Attrs)
		out[i] = scoreuc.Item{
			BaseScore: it.BaseScore,
			Attrs:     scoring.Attributes{Units: attrlist.Format(units), Values: attrlist.Format(values)},
		}
	}
	return out
}

func fromScored(scored []scoreuc.Scored) []ScoreResult {
	out := make([]ScoreResult, len(scored))
	for i, s := range scored {
		r := ScoreResult{Score: s.Score, Normalized: s.Breakdown.Normalized}
		if s.Mismatch {
			r.Outcome = "mismatch"
			r.Reason = s.Reason
		} else {
			r.Outcome = s.Breakdown.Outcome.String()
			r.Distance = s.Breakdown.Distance
		}
		out[i] = r
	}
	return out
}
