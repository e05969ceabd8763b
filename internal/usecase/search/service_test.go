package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/qbm25/internal/domain"
	domcol "github.com/kailas-cloud/qbm25/internal/domain/collection"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring"
	"github.com/kailas-cloud/qbm25/internal/domain/search/request"
	"github.com/kailas-cloud/qbm25/internal/domain/search/result"
	"github.com/kailas-cloud/qbm25/internal/usecase/script"
)

// --- Mocks ---

type mockRepo struct {
	results   []result.Result
	err       error
	called    bool
	lastTopK  int
	lastQuery string
}

func (m *mockRepo) SearchBM25(_ context.Context, _, query string, topK int) ([]result.Result, error) {
	m.called = true
	m.lastQuery = query
	m.lastTopK = topK
	return m.results, m.err
}

type mockColls struct {
	err error
}

func (m *mockColls) Get(_ context.Context, name string) (domcol.Collection, error) {
	if m.err != nil {
		return domcol.Collection{}, m.err
	}
	return domcol.Reconstruct(name, 1), nil
}

type mockRecorder struct {
	mu         sync.Mutex
	outcomes   map[string]int
	candidates []int
}

func (m *mockRecorder) ObserveScore(_, outcome string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[outcome]++
}

func (m *mockRecorder) ObserveCandidates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates = append(m.candidates, n)
}

func attrs(units, values string) scoring.Attributes {
	return scoring.Attributes{Units: units, Values: values}
}

func qbm25Script(handler, unit string, amount float64) *request.Script {
	return &request.Script{
		Lang:   script.Lang,
		Source: script.QBM25,
		Params: map[string]any{
			"handler": handler, "unit": unit, "amount": amount,
			"amount2": 0, "weight": 1, "max_score": 1,
		},
	}
}

func makeRequest(t *testing.T, sc *request.Script, limit int, minScore float64) *request.Request {
	t.Helper()
	r, err := request.New("steel bolts", sc, 10, limit, minScore)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

func ids(results []result.Result) []string {
	out := make([]string, len(results))
	for i := range results {
		out[i] = results[i].ID()
	}
	return out
}

// --- Tests ---

func TestSearch_NoScriptKeepsBM25(t *testing.T) {
	repo := &mockRepo{results: []result.Result{
		result.New("a", 3, "x", attrs("['kg']", "['5']")),
		result.New("b", 2, "y", attrs("", "")),
	}}
	rec := &mockRecorder{}
	svc := New(repo, &mockColls{}, script.Default(), rec, 2, nil)

	got, err := svc.Search(context.Background(), "products", makeRequest(t, nil, 10, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Score() != 3 || got[1].Score() != 2 {
		t.Fatalf("unexpected results: %v", ids(got))
	}
	if repo.lastQuery != "steel bolts" || repo.lastTopK != 10 {
		t.Errorf("repo got %q/%d", repo.lastQuery, repo.lastTopK)
	}
	if len(rec.candidates) != 0 {
		t.Error("no rescoring expected without a script")
	}
}

func TestSearch_RescoresAndReorders(t *testing.T) {
	repo := &mockRepo{results: []result.Result{
		result.New("far", 2, "", attrs("['kg']", "['50']")),
		result.New("exact", 1.5, "", attrs("['kg']", "['5']")),
		result.New("other", 1, "", attrs("['lb']", "['5']")),
	}}
	rec := &mockRecorder{}
	svc := New(repo, &mockColls{}, script.Default(), rec, 2, nil)

	got, err := svc.Search(context.Background(), "products", makeRequest(t, qbm25Script("=", "kg", 5), 10, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"exact", "far", "other"}
	if g := ids(got); len(g) != 3 || g[0] != want[0] || g[1] != want[1] || g[2] != want[2] {
		t.Fatalf("order = %v, want %v", g, want)
	}
	if got[0].Score() != 2.5 || got[0].BaseScore() != 1.5 {
		t.Errorf("exact score/base = %v/%v, want 2.5/1.5", got[0].Score(), got[0].BaseScore())
	}
	if rec.outcomes["boosted"] != 2 || rec.outcomes["early_exit"] != 1 {
		t.Errorf("outcomes = %v", rec.outcomes)
	}
	if len(rec.candidates) != 1 || rec.candidates[0] != 3 {
		t.Errorf("candidates = %v", rec.candidates)
	}
}

func TestSearch_MismatchFallsBack(t *testing.T) {
	repo := &mockRepo{results: []result.Result{
		result.New("broken", 4, "", attrs("['kg', 'lb']", "['5']")),
		result.New("ok", 1, "", attrs("['kg']", "['5']")),
	}}
	rec := &mockRecorder{}
	svc := New(repo, &mockColls{}, script.Default(), rec, 1, nil)

	got, err := svc.Search(context.Background(), "products", makeRequest(t, qbm25Script("=", "kg", 5), 10, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID() != "broken" || got[0].Score() != 4 {
		t.Errorf("broken should keep its normalized score, got %s=%v", got[0].ID(), got[0].Score())
	}
	if rec.outcomes["mismatch"] != 1 {
		t.Errorf("outcomes = %v", rec.outcomes)
	}
}

func TestSearch_EqualScoresKeepBM25Order(t *testing.T) {
	repo := &mockRepo{results: []result.Result{
		result.New("first", 1, "", attrs("['m']", "['1']")),
		result.New("second", 1, "", attrs("['m']", "['1']")),
		result.New("third", 1, "", attrs("['m']", "['1']")),
	}}
	svc := New(repo, &mockColls{}, script.Default(), nil, 3, nil)

	got, err := svc.Search(context.Background(), "products", makeRequest(t, qbm25Script("=", "kg", 5), 10, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g := ids(got); g[0] != "first" || g[1] != "second" || g[2] != "third" {
		t.Errorf("order = %v", g)
	}
}

func TestSearch_MinScoreAndLimit(t *testing.T) {
	repo := &mockRepo{results: []result.Result{
		result.New("a", 5, "", attrs("", "")),
		result.New("b", 4, "", attrs("", "")),
		result.New("c", 3, "", attrs("", "")),
		result.New("d", 0.5, "", attrs("", "")),
	}}
	svc := New(repo, &mockColls{}, script.Default(), nil, 0, nil)

	got, err := svc.Search(context.Background(), "products", makeRequest(t, nil, 2, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g := ids(got); len(g) != 2 || g[0] != "a" || g[1] != "b" {
		t.Errorf("results = %v", g)
	}
}

func TestSearch_CollectionNotFound(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockColls{err: domain.ErrNotFound}, script.Default(), nil, 1, nil)

	_, err := svc.Search(context.Background(), "missing", makeRequest(t, nil, 10, 0))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.called {
		t.Error("repo must not be called for a missing collection")
	}
}

func TestSearch_InvalidScriptFailsBeforeRetrieval(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockColls{}, script.Default(), nil, 1, nil)

	sc := qbm25Script("=", "kg", 5)
	delete(sc.Params, "weight")

	_, err := svc.Search(context.Background(), "products", makeRequest(t, sc, 10, 0))
	if !errors.Is(err, domain.ErrInvalidScriptParams) {
		t.Fatalf("expected ErrInvalidScriptParams, got %v", err)
	}
	if repo.called {
		t.Error("repo must not be called when the script does not compile")
	}
}

func TestSearch_UnknownScript(t *testing.T) {
	svc := New(&mockRepo{}, &mockColls{}, script.Default(), nil, 1, nil)

	sc := &request.Script{Source: "nope"}
	_, err := svc.Search(context.Background(), "products", makeRequest(t, sc, 10, 0))
	if !errors.Is(err, domain.ErrUnknownScript) {
		t.Fatalf("expected ErrUnknownScript, got %v", err)
	}
}

func TestSearch_RepoError(t *testing.T) {
	repo := &mockRepo{err: errors.New("connection refused")}
	svc := New(repo, &mockColls{}, script.Default(), nil, 1, nil)

	if _, err := svc.Search(context.Background(), "products", makeRequest(t, nil, 10, 0)); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_CancelledContext(t *testing.T) {
	repo := &mockRepo{results: []result.Result{
		result.New("a", 1, "", attrs("['kg']", "['5']")),
	}}
	svc := New(repo, &mockColls{}, script.Default(), nil, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Search(ctx, "products", makeRequest(t, qbm25Script("=", "kg", 5), 10, 0))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSearch_ManyCandidatesParallel(t *testing.T) {
	candidates := make([]result.Result, 200)
	for i := range candidates {
		candidates[i] = result.New(string(rune('a'+i%26))+"-"+string(rune('0'+i%10)), float64(i%7), "",
			attrs("['kg']", "['5']"))
	}
	rec := &mockRecorder{}
	svc := New(&mockRepo{results: candidates}, &mockColls{}, script.Default(), rec, 8, nil)

	r, err := request.New("q", qbm25Script("=", "kg", 5), 200, 100, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	got, err := svc.Search(context.Background(), "products", &r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 100 {
		t.Fatalf("expected 100 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score() > got[i-1].Score() {
			t.Fatalf("results not sorted at %d", i)
		}
	}
	if rec.outcomes["boosted"] != 200 {
		t.Errorf("boosted = %d, want 200", rec.outcomes["boosted"])
	}
}
