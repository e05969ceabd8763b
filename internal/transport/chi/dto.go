package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	dombatch "github.com/kailas-cloud/qbm25/internal/domain/batch"
	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
	domdoc "github.com/kailas-cloud/qbm25/internal/domain/document"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring/attrlist"
	"github.com/kailas-cloud/qbm25/internal/domain/search/result"
	collectionuc "github.com/kailas-cloud/qbm25/internal/usecase/collection"
	scoreuc "github.com/kailas-cloud/qbm25/internal/usecase/score"
)

// flexList decodes a JSON array of strings or numbers, or a bracketed list string
// such as "['kg', 'lb']". Numbers keep their literal text.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode list string: %w", err)
		}
		*l = attrlist.Parse(raw)
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.New("must be an array or a list string")
	}
	out := make([]string, len(items))
	for i, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err == nil {
			out[i] = s
			continue
		}
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(it))
		dec.UseNumber()
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("item %d must be a string or a number", i)
		}
		out[i] = n.String()
	}
	*l = out
	return nil
}

// rawList keeps a list in the stored textual form. A string passes through untouched,
// so malformed stored values can be replayed; an array is formatted.
type rawList string

func (l *rawList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode list string: %w", err)
		}
		*l = rawList(raw)
		return nil
	}
	var items flexList
	if err := items.UnmarshalJSON(data); err != nil {
		return err
	}
	*l = rawList(attrlist.Format(items))
	return nil
}

// --- collections ---

type createCollectionRequest struct {
	Name string `json:"name"`
}

type collectionResponse struct {
	Name          string `json:"name"`
	CreatedAt     int64  `json:"created_at"`
	DocumentCount *int   `json:"document_count,omitempty"`
}

type collectionListResponse struct {
	Items []collectionResponse `json:"items"`
}

func collectionToResponse(c domcol.Collection) collectionResponse {
	return collectionResponse{Name: c.Name(), CreatedAt: c.CreatedAt()}
}

func infoToResponse(info collectionuc.Info) collectionResponse {
	resp := collectionToResponse(info.Collection)
	n := info.Documents
	resp.DocumentCount = &n
	return resp
}

// --- documents ---

type upsertDocumentRequest struct {
	Content string   `json:"content"`
	Units   flexList `json:"units"`
	Values  flexList `json:"values"`
}

type documentResponse struct {
	ID      string   `json:"id"`
	Content string   `json:"content"`
	Units   []string `json:"units"`
	Values  []string `json:"values"`
}

type documentListResponse struct {
	Items      []documentResponse `json:"items"`
	NextCursor *string            `json:"next_cursor,omitempty"`
	HasMore    bool               `json:"has_more"`
}

func documentToResponse(d *domdoc.Document) documentResponse {
	return documentResponse{
		ID:      d.ID(),
		Content: d.Content(),
		Units:   nonNil(d.Units()),
		Values:  nonNil(d.Values()),
	}
}

type batchItemRequest struct {
	ID      string   `json:"id"`
	Content string   `json:"content"`
	Units   flexList `json:"units"`
	Values  flexList `json:"values"`
}

type batchUpsertRequest struct {
	Items []batchItemRequest `json:"items"`
}

type batchItemResponse struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type batchUpsertResponse struct {
	Items   []batchItemResponse `json:"items"`
	Created int                 `json:"created"`
	Updated int                 `json:"updated"`
	Failed  int                 `json:"failed"`
}

func batchToResponse(results []dombatch.Result) batchUpsertResponse {
	sum := dombatch.Summarize(results)
	resp := batchUpsertResponse{
		Items:   make([]batchItemResponse, len(results)),
		Created: sum.Created,
		Updated: sum.Updated,
		Failed:  sum.Failed,
	}
	for i, r := range results {
		item := batchItemResponse{Index: r.Index(), ID: r.ID(), Status: string(r.Status())}
		if r.Err() != nil {
			item.Error = batchItemError(r.Err())
		}
		resp.Items[i] = item
	}
	return resp
}

// --- search ---

type scriptRequest struct {
	Lang   string         `json:"lang"`
	Source string         `json:"source"`
	Params map[string]any `json:"params"`
}

type searchRequest struct {
	Query    string         `json:"query"`
	Script   *scriptRequest `json:"script"`
	TopK     int            `json:"top_k"`
	Limit    int            `json:"limit"`
	MinScore float64        `json:"min_score"`
}

type searchResultResponse struct {
	ID        string   `json:"id"`
	Score     float64  `json:"score"`
	BaseScore float64  `json:"base_score"`
	Content   string   `json:"content"`
	Units     []string `json:"units"`
	Values    []string `json:"values"`
}

type searchResponse struct {
	Items []searchResultResponse `json:"items"`
	Total int                    `json:"total"`
}

func resultsToResponse(results []result.Result) searchResponse {
	items := make([]searchResultResponse, len(results))
	for i := range results {
		r := &results[i]
		items[i] = searchResultResponse{
			ID:        r.ID(),
			Score:     r.Score(),
			BaseScore: r.BaseScore(),
			Content:   r.Content(),
			Units:     nonNil(r.Units()),
			Values:    nonNil(r.Values()),
		}
	}
	return searchResponse{Items: items, Total: len(items)}
}

// --- scoring ---

type scoreItemRequest struct {
	BaseScore float64 `json:"base_score"`
	Units     rawList `json:"units"`
	Values    rawList `json:"values"`
}

type scoreRequest struct {
	Lang   string             `json:"lang"`
	Params map[string]any     `json:"params"`
	Items  []scoreItemRequest `json:"items"`
}

type scoreItemResponse struct {
	Score        float64   `json:"score"`
	Normalized   float64   `json:"normalized"`
	Outcome      string    `json:"outcome"`
	Distance     *float64  `json:"distance,omitempty"`
	Intersection []float64 `json:"intersection,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

type scoreResponse struct {
	Items []scoreItemResponse `json:"items"`
}

func scoreItemsFromRequest(items []scoreItemRequest) []scoreuc.Item {
	out := make([]scoreuc.Item, len(items))
	for i, it := range items {
		out[i] = scoreuc.Item{
			BaseScore: it.BaseScore,
			Attrs:     scoring.Attributes{Units: string(it.Units), Values: string(it.Values)},
		}
	}
	return out
}

func scoredToResponse(scored []scoreuc.Scored) scoreResponse {
	items := make([]scoreItemResponse, len(scored))
	for i, s := range scored {
		item := scoreItemResponse{Score: s.Score, Normalized: s.Breakdown.Normalized}
		switch {
		case s.Mismatch:
			item.Outcome = "mismatch"
			item.Reason = s.Reason
		default:
			item.Outcome = s.Breakdown.Outcome.String()
			if s.Breakdown.Outcome == scoring.OutcomeBoosted {
				d := s.Breakdown.Distance
				item.Distance = &d
				item.Intersection = s.Breakdown.Intersection
			}
		}
		items[i] = item
	}
	return scoreResponse{Items: items}
}

// --- misc ---

type scriptsResponse struct {
	Scripts []string `json:"scripts"`
}

type unitsResponse struct {
	Collection string   `json:"collection"`
	Units      []string `json:"units"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
