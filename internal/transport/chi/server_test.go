package chi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	batchuc "github.com/kailas-cloud/qbm25/internal/usecase/batch"
	catalogueuc "github.com/kailas-cloud/qbm25/internal/usecase/catalogue"
	collectionuc "github.com/kailas-cloud/qbm25/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/qbm25/internal/usecase/document"
	healthuc "github.com/kailas-cloud/qbm25/internal/usecase/health"
	scoreuc "github.com/kailas-cloud/qbm25/internal/usecase/score"
	"github.com/kailas-cloud/qbm25/internal/usecase/script"
	searchuc "github.com/kailas-cloud/qbm25/internal/usecase/search"
)

type testAPI struct {
	db     *memDB
	router http.Handler
}

func newTestAPI(t *testing.T, apiKeys ...string) *testAPI {
	t.Helper()
	db := newMemDB()
	colls := memCollections{db}
	docs := memDocuments{db}
	registry := script.Default()

	svc := Services{
		Collections: collectionuc.New(colls, docs),
		Documents:   documentuc.New(docs, colls).WithPagination(2, 10),
		Batch:       batchuc.New(docs, colls).WithMaxBatchSize(3),
		Search:      searchuc.New(docs, colls, registry, nil, 2, zap.NewNop()),
		Score:       scoreuc.New(registry, nil, nil),
		Catalogue:   catalogueuc.New(memCatalogue{db}, colls, nil),
		Health:      healthuc.New(db, registry),
	}
	srv := NewServer(svc, zap.NewNop()).WithGatherer(prometheus.NewRegistry())
	return &testAPI{db: db, router: NewRouter(srv, RouterConfig{APIKeys: apiKeys, MaxBodyBytes: 1 << 20})}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorCode) ErrorResponse {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.Code != code {
		t.Fatalf("code = %s, want %s (%s)", resp.Code, code, resp.Message)
	}
	return resp
}

func (a *testAPI) seed(t *testing.T) {
	t.Helper()
	if rr := a.do(t, "POST", "/collections", map[string]string{"name": "products"}); rr.Code != http.StatusCreated {
		t.Fatalf("create collection: %d %s", rr.Code, rr.Body.String())
	}
	docs := map[string]any{
		"far":   map[string]any{"content": "bolt bolt", "units": []string{"kg"}, "values": []any{50}},
		"exact": map[string]any{"content": "bolt", "units": "['kg', 'lb']", "values": []any{5, "3"}},
		"nut":   map[string]any{"content": "nut", "units": []string{"m"}, "values": []any{1.5}},
	}
	for id, body := range docs {
		if rr := a.do(t, "PUT", "/collections/products/documents/"+id, body); rr.Code != http.StatusCreated {
			t.Fatalf("upsert %s: %d %s", id, rr.Code, rr.Body.String())
		}
	}
}

// --- collections ---

func TestCollections_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t)

	rr := api.do(t, "GET", "/collections/products", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: %d", rr.Code)
	}
	col := decode[collectionResponse](t, rr)
	if col.Name != "products" || col.DocumentCount == nil || *col.DocumentCount != 3 {
		t.Errorf("collection = %+v", col)
	}

	list := decode[collectionListResponse](t, api.do(t, "GET", "/collections", nil))
	if len(list.Items) != 1 {
		t.Errorf("list = %+v", list)
	}

	expectError(t, api.do(t, "POST", "/collections", map[string]string{"name": "products"}),
		http.StatusConflict, CodeCollectionAlreadyExists)

	if rr := api.do(t, "DELETE", "/collections/products", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	expectError(t, api.do(t, "GET", "/collections/products", nil), http.StatusNotFound, CodeCollectionNotFound)
	expectError(t, api.do(t, "DELETE", "/collections/products", nil), http.StatusNotFound, CodeCollectionNotFound)
}

func TestCreateCollection_Validation(t *testing.T) {
	api := newTestAPI(t)

	expectError(t, api.do(t, "POST", "/collections", map[string]string{}), http.StatusBadRequest, CodeValidationFailed)
	resp := expectError(t, api.do(t, "POST", "/collections", map[string]string{"name": "a#b"}),
		http.StatusBadRequest, CodeValidationFailed)
	if !strings.Contains(resp.Message, "alphanumeric") {
		t.Errorf("message = %q", resp.Message)
	}
	expectError(t, api.do(t, "POST", "/collections", "{not json"), http.StatusBadRequest, CodeBadRequest)
}

// --- documents ---

func TestDocuments_UpsertGetDelete(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t)

	rr := api.do(t, "PUT", "/collections/products/documents/exact",
		map[string]any{"content": "bolt m8", "units": []string{"kg"}, "values": []any{6}})
	if rr.Code != http.StatusOK {
		t.Fatalf("overwrite: %d %s", rr.Code, rr.Body.String())
	}

	doc := decode[documentResponse](t, api.do(t, "GET", "/collections/products/documents/exact", nil))
	if doc.Content != "bolt m8" || len(doc.Values) != 1 || doc.Values[0] != "6" {
		t.Errorf("doc = %+v", doc)
	}

	if rr := api.do(t, "DELETE", "/collections/products/documents/exact", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	expectError(t, api.do(t, "GET", "/collections/products/documents/exact", nil),
		http.StatusNotFound, CodeDocumentNotFound)
	expectError(t, api.do(t, "DELETE", "/collections/products/documents/exact", nil),
		http.StatusNotFound, CodeDocumentNotFound)
}

func TestUpsertDocument_Validation(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t)

	tests := []struct {
		name string
		body any
	}{
		{"no content", map[string]any{"units": []string{"kg"}, "values": []any{1}}},
		{"length mismatch", map[string]any{"content": "x", "units": []string{"kg", "lb"}, "values": []any{1}}},
		{"not a number", map[string]any{"content": "x", "units": []string{"kg"}, "values": []any{"heavy"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expectError(t, api.do(t, "PUT", "/collections/products/documents/d1", tc.body),
				http.StatusBadRequest, CodeValidationFailed)
		})
	}

	expectError(t, api.do(t, "PUT", "/collections/products/documents/d1",
		map[string]any{"content": "x", "units": []any{true}}), http.StatusBadRequest, CodeBadRequest)
	expectError(t, api.do(t, "PUT", "/collections/missing/documents/d1",
		map[string]any{"content": "x"}), http.StatusNotFound, CodeCollectionNotFound)
}

func TestListDocuments_Pagination(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t)

	first := decode[documentListResponse](t, api.do(t, "GET", "/collections/products/documents", nil))
	if len(first.Items) != 2 || !first.HasMore || first.NextCursor == nil {
		t.Fatalf("first page = %+v", first)
	}
	second := decode[documentListResponse](t,
		api.do(t, "GET", "/collections/products/documents?cursor="+*first.NextCursor, nil))
	if len(second.Items) != 1 || second.HasMore {
		t.Errorf("second page = %+v", second)
	}

	expectError(t, api.do(t, "GET", "/collections/products/documents?limit=abc", nil),
		http.StatusBadRequest, CodeBadRequest)
}

func TestBatchUpsert(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t)

	rr := api.do(t, "POST", "/collections/products/documents/batch", map[string]any{
		"items": []map[string]any{
			{"id": "exact", "content": "bolt", "units": []string{"kg"}, "values": []any{5}},
			{"id": "washer", "content": "washer", "units": []string{"mm"}, "values": []any{12}},
			{"id": "bad", "content": "x", "units": []string{"kg"}, "values": []any{"n/a"}},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("batch: %d %s", rr.Code, rr.Body.String())
	}
	resp := decode[batchUpsertResponse](t, rr)
	if resp.Created != 1 || resp.Updated != 1 || resp.Failed != 1 {
		t.Errorf("summary = %+v", resp)
	}
	if resp.Items[2].Status != "error" || resp.Items[2].Error == "" || resp.Items[2].Index != 2 {
		t.Errorf("bad item = %+v", resp.Items[2])
	}

	big := map[string]any{"items": make([]map[string]any, 4)}
	expectError(t, api.do(t, "POST", "/collections/products/documents/batch", big),
		http.StatusBadRequest, CodeValidationFailed)
}

// --- search ---

func TestSearch_PlainBM25(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t)

	resp := decode[searchResponse](t, api.do(t, "POST", "/collections/products/search",
		map[string]any{"query": "bolt"}))
	if resp.Total != 2 || resp.Items[0].ID != "far" {
		t.Errorf("results = %+v", resp.Items)
	}
}

func TestSearch_WithScript(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t)

	rr := api.do(t, "POST", "/collections/products/search", map[string]any{
		"query": "bolt",
		"script": map[string]any{
			"lang": "expert_scripts", "source": "qbm25",
			"params": map[string]any{
				"handler": "=", "unit": "kg", "amount": 5, "amount2": 0, "weight": 5, "max_score": 1,
			},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("search: %d %s", rr.Code, rr.Body.String())
	}
	resp := decode[searchResponse](t, rr)
	if len(resp.Items) != 2 || resp.Items[0].ID != "exact" {
		t.Fatalf("results = %+v", resp.Items)
	}
	if resp.Items[0].Score != 6 || resp.Items[0].BaseScore != 1 {
		t.Errorf("exact = %+v", resp.Items[0])
	}
	if len(resp.Items[0].Units) != 2 || resp.Items[0].Units[1] != "lb" {
		t.Errorf("units = %v", resp.Items[0].Units)
	}
}

func TestSearch_Errors(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t)

	resp := expectError(t, api.do(t, "POST", "/collections/products/search", map[string]any{
		"query":  "bolt",
		"script": map[string]any{"source": "qbm25", "params": map[string]any{"handler": "=", "unit": "kg"}},
	}), http.StatusBadRequest, CodeInvalidScriptParams)
	if resp.Param != "amount" {
		t.Errorf("param = %q, want amount", resp.Param)
	}

	expectError(t, api.do(t, "POST", "/collections/products/search", map[string]any{
		"query": "bolt", "script": map[string]any{"source": "bm42"},
	}), http.StatusBadRequest, CodeUnknownScript)
	expectError(t, api.do(t, "POST", "/collections/products/search", map[string]any{
		"query": "bolt", "script": map[string]any{"lang": "painless", "source": "qbm25"},
	}), http.StatusBadRequest, CodeUnknownScript)
	expectError(t, api.do(t, "POST", "/collections/products/search", map[string]any{"query": ""}),
		http.StatusBadRequest, CodeValidationFailed)
	expectError(t, api.do(t, "POST", "/collections/missing/search", map[string]any{"query": "bolt"}),
		http.StatusNotFound, CodeCollectionNotFound)
}

// --- scripts ---

func TestListScripts(t *testing.T) {
	resp := decode[scriptsResponse](t, newTestAPI(t).do(t, "GET", "/scripts", nil))
	if len(resp.Scripts) != 1 || resp.Scripts[0] != "qbm25" {
		t.Errorf("scripts = %v", resp.Scripts)
	}
}

func TestScoreItems(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, "POST", "/scripts/qbm25/score", map[string]any{
		"params": map[string]any{
			"handler": "=", "unit": "kg", "amount": 5, "amount2": 0, "weight": 1, "max_score": 2,
		},
		"items": []map[string]any{
			{"base_score": 10, "units": []string{"kg", "lb"}, "values": []any{5, 3}},
			{"base_score": 10, "units": "['lb']", "values": "['3']"},
			{"base_score": 10, "units": "['kg', 'lb']", "values": "['5']"},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("score: %d %s", rr.Code, rr.Body.String())
	}
	resp := decode[scoreResponse](t, rr)

	if got := resp.Items[0]; got.Score != 6 || got.Outcome != "boosted" || got.Distance == nil || *got.Distance != 1 {
		t.Errorf("item 0 = %+v", got)
	}
	if got := resp.Items[1]; got.Score != 5 || got.Outcome != "early_exit" {
		t.Errorf("item 1 = %+v", got)
	}
	if got := resp.Items[2]; got.Outcome != "mismatch" || got.Score != 5 || got.Reason == "" {
		t.Errorf("item 2 = %+v", got)
	}
}

func TestScoreItems_UnknownScript(t *testing.T) {
	expectError(t, newTestAPI(t).do(t, "POST", "/scripts/nope/score", map[string]any{"items": []any{}}),
		http.StatusBadRequest, CodeUnknownScript)
}

// --- units ---

func TestUnits_ListAndRebuild(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t)

	resp := decode[unitsResponse](t, api.do(t, "GET", "/collections/products/units", nil))
	if strings.Join(resp.Units, ",") != "kg,lb,m" {
		t.Errorf("units = %v", resp.Units)
	}

	api.do(t, "DELETE", "/collections/products/documents/nut", nil)
	api.do(t, "PUT", "/collections/products/documents/exact",
		map[string]any{"content": "bolt", "units": []string{"kg"}, "values": []any{5}})

	stale := decode[unitsResponse](t, api.do(t, "GET", "/collections/products/units", nil))
	if len(stale.Units) != 3 {
		t.Errorf("catalogue should keep units until rebuilt, got %v", stale.Units)
	}

	rebuilt := decode[unitsResponse](t, api.do(t, "POST", "/collections/products/units/rebuild", nil))
	if strings.Join(rebuilt.Units, ",") != "kg" {
		t.Errorf("rebuilt = %v", rebuilt.Units)
	}

	expectError(t, api.do(t, "GET", "/collections/missing/units", nil), http.StatusNotFound, CodeCollectionNotFound)
}

// --- infra ---

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health: %d", rr.Code)
	}
	if resp := decode[healthResponse](t, rr); resp.Status != "ok" || resp.Checks["scripts"] != "ok" {
		t.Errorf("health = %+v", resp)
	}

	api.db.down = true
	rr = api.do(t, "GET", "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("health with db down: %d", rr.Code)
	}
}

func TestAuth_Wired(t *testing.T) {
	api := newTestAPI(t, "secret")

	expectError(t, api.do(t, "GET", "/collections", nil), http.StatusUnauthorized, CodeUnauthorized)
	if rr := api.do(t, "GET", "/health", nil); rr.Code != http.StatusOK {
		t.Errorf("health must be exempt, got %d", rr.Code)
	}

	req := httptest.NewRequest("GET", "/collections", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("authorized request: %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	if rr := newTestAPI(t).do(t, "GET", "/metrics", nil); rr.Code != http.StatusOK {
		t.Errorf("metrics: %d", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	expectError(t, newTestAPI(t).do(t, "GET", "/nope", nil), http.StatusNotFound, CodeBadRequest)
}
