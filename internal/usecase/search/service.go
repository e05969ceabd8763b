package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/qbm25/internal/domain"
	"github.com/kailas-cloud/qbm25/internal/domain/search/request"
	"github.com/kailas-cloud/qbm25/internal/domain/search/result"
	"github.com/kailas-cloud/qbm25/internal/metrics"
	"github.com/kailas-cloud/qbm25/internal/usecase/script"
)

// Service runs BM25 retrieval and rescores candidates with a compiled script.
type Service struct {
	repo    Repository
	colls   CollectionReader
	scripts Compiler
	rec     Recorder
	workers int
	logger  *zap.Logger
}

// New creates a search service. workers <= 0 means GOMAXPROCS; a nil rec disables metrics.
func New(
	repo Repository, colls CollectionReader, scripts Compiler,
	rec Recorder, workers int, logger *zap.Logger,
) *Service {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo: repo, colls: colls, scripts: scripts,
		rec: rec, workers: workers, logger: logger,
	}
}

// Search retrieves top_k BM25 candidates, rescores them when the request carries a script,
// then orders by score, drops results below min_score and truncates to limit.
func (s *Service) Search(
	ctx context.Context, collectionName string, req *request.Request,
) ([]result.Result, error) {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}

	// compile before any I/O so bad params fail fast
	var scorer script.Scorer
	if sc := req.Script(); sc != nil {
		var err error
		scorer, err = s.scripts.Compile(sc.Lang, sc.Source, sc.Params)
		if err != nil {
			return nil, fmt.Errorf("compile script: %w", err)
		}
	}

	results, err := s.repo.SearchBM25(ctx, collectionName, req.Query(), req.TopK())
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}

	if scorer != nil {
		if s.rec != nil {
			s.rec.ObserveCandidates(len(results))
		}
		results, err = s.rescore(ctx, scorer, results)
		if err != nil {
			return nil, err
		}
		// stable: equal scores keep BM25 order
		slices.SortStableFunc(results, func(a, b result.Result) int {
			switch {
			case a.Score() > b.Score():
				return -1
			case a.Score() < b.Score():
				return 1
			default:
				return 0
			}
		})
	}

	if req.MinScore() > 0 {
		filtered := results[:0]
		for _, r := range results {
			if r.Score() >= req.MinScore() {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if len(results) > req.Limit() {
		results = results[:req.Limit()]
	}

	return results, nil
}

// rescore applies scorer to every candidate on at most s.workers goroutines.
// Each goroutine owns one slot of out.
func (s *Service) rescore(
	ctx context.Context, scorer script.Scorer, candidates []result.Result,
) ([]result.Result, error) {
	out := make([]result.Result, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // context error is returned as-is
			}
			score, err := s.scoreOne(scorer, &candidates[i])
			if err != nil {
				return err
			}
			out[i] = candidates[i].WithScore(score)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rescore: %w", err)
	}
	return out, nil
}

func (s *Service) scoreOne(scorer script.Scorer, r *result.Result) (float64, error) {
	b, err := scorer.Explain(r.BaseScore(), r.Attributes())
	if err == nil {
		if s.rec != nil {
			s.rec.ObserveScore(scorer.Label(), b.Outcome.String(), b.Score-b.Normalized)
		}
		return b.Score, nil
	}
	if !errors.Is(err, domain.ErrAttributeMismatch) {
		return 0, fmt.Errorf("score %s: %w", r.ID(), err)
	}

	s.logger.Warn("Attribute mismatch, boost skipped",
		zap.String("id", r.ID()),
		zap.String("handler", scorer.Label()),
		zap.Error(err),
	)
	if s.rec != nil {
		s.rec.ObserveScore(scorer.Label(), metrics.OutcomeMismatch, 0)
	}
	return max(scorer.Normalize(r.BaseScore()), 0), nil
}
