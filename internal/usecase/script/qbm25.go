package script

import "github.com/kailas-cloud/qbm25/internal/domain/scoring"

// qbm25Scorer adapts scoring.Config to Scorer.
type qbm25Scorer struct {
	cfg scoring.Config
}

// NewQBM25 is the Factory for the qbm25 script.
func NewQBM25(params map[string]any) (Scorer, error) {
	cfg, err := scoring.NewConfig(params)
	if err != nil {
		return nil, err //nolint:wrapcheck // Compile wraps with the script name
	}
	return &qbm25Scorer{cfg: cfg}, nil
}

func (s *qbm25Scorer) Score(baseScore float64, attrs scoring.Attributes) (float64, error) {
	return s.cfg.Score(baseScore, attrs)
}

func (s *qbm25Scorer) Explain(baseScore float64, attrs scoring.Attributes) (scoring.Breakdown, error) {
	return s.cfg.Explain(baseScore, attrs)
}

func (s *qbm25Scorer) Normalize(baseScore float64) float64 {
	return s.cfg.Normalize(baseScore)
}

func (s *qbm25Scorer) Deterministic() bool { return true }

func (s *qbm25Scorer) Label() string {
	return s.cfg.Handler().Label()
}
