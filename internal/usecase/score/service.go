// Package score scores caller-supplied items without touching storage.
package score

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qbm25/internal/domain"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring"
	"github.com/kailas-cloud/qbm25/internal/metrics"
	"github.com/kailas-cloud/qbm25/internal/usecase/script"
)

// MaxItems caps one scoring call.
const MaxItems = 1000

// Item is one base score plus the document attributes it belongs to.
type Item struct {
	BaseScore float64
	Attrs     scoring.Attributes
}

// Scored is the outcome for one Item. Mismatch is set when the attributes could not be
// scored; Score then holds the normalized base score and Reason says why.
type Scored struct {
	Score     float64
	Breakdown scoring.Breakdown
	Mismatch  bool
	Reason    string
}

// Service scores items with a named script.
type Service struct {
	scripts Compiler
	rec     Recorder
	logger  *zap.Logger
}

// New creates a scoring service. A nil rec disables metrics.
func New(scripts Compiler, rec Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{scripts: scripts, rec: rec, logger: logger}
}

// Scripts lists the registered script identifiers.
func (s *Service) Scripts() []string {
	return s.scripts.Names()
}

// Score compiles source once and scores every item in order.
func (s *Service) Score(
	ctx context.Context, lang, source string, params map[string]any, items []Item,
) ([]Scored, error) {
	if len(items) > MaxItems {
		return nil, fmt.Errorf("%w: %d items exceeds limit %d", domain.ErrInvalidRequest, len(items), MaxItems)
	}

	scorer, err := s.scripts.Compile(lang, source, params)
	if err != nil {
		return nil, fmt.Errorf("compile script: %w", err)
	}

	out := make([]Scored, len(items))
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck // context error is returned as-is
		}
		out[i] = s.scoreOne(scorer, it)
	}
	return out, nil
}

func (s *Service) scoreOne(scorer script.Scorer, it Item) Scored {
	b, err := scorer.Explain(it.BaseScore, it.Attrs)
	if err == nil {
		if s.rec != nil {
			s.rec.ObserveScore(scorer.Label(), b.Outcome.String(), b.Score-b.Normalized)
		}
		return Scored{Score: b.Score, Breakdown: b}
	}

	if s.rec != nil {
		s.rec.ObserveScore(scorer.Label(), metrics.OutcomeMismatch, 0)
	}
	s.logger.Debug("Attribute mismatch", zap.Error(err))

	reason := err.Error()
	var ame *domain.AttributeMismatchError
	if errors.As(err, &ame) {
		reason = ame.Reason
	}
	normalized := max(scorer.Normalize(it.BaseScore), 0)
	return Scored{
		Score:     normalized,
		Breakdown: scoring.Breakdown{Normalized: normalized, Score: normalized},
		Mismatch:  true,
		Reason:    reason,
	}
}
