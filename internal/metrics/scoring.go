package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeMismatch labels candidates whose attributes could not be scored.
const OutcomeMismatch = "mismatch"

// Scoring holds the rescoring metrics of the search and score paths.
type Scoring struct {
	scored     *prometheus.CounterVec
	delta      *prometheus.HistogramVec
	candidates prometheus.Histogram
}

// NewScoring registers scoring metrics on reg, reusing collectors that are already there.
// A nil reg yields a Scoring that records into unregistered collectors.
func NewScoring(reg prometheus.Registerer) (*Scoring, error) {
	s := &Scoring{
		scored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qbm25",
			Name:      "scoring_total",
			Help:      "Scored candidates by handler and outcome.",
		}, []string{"handler", "outcome"}),
		delta: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qbm25",
			Name:      "scoring_delta",
			Help:      "Adjusted score minus normalized base score.",
			Buckets:   []float64{-1, 0, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"handler"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qbm25",
			Name:      "search_candidates",
			Help:      "BM25 candidates rescored per search.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	if reg == nil {
		return s, nil
	}
	if err := registerOrReuse(reg, &s.scored); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &s.delta); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &s.candidates); err != nil {
		return nil, err
	}
	return s, nil
}

// MustScoring is NewScoring that panics on registration conflicts. Call once from main.
func MustScoring(reg prometheus.Registerer) *Scoring {
	s, err := NewScoring(reg)
	if err != nil {
		panic(err)
	}
	return s
}

// ObserveScore records one scored candidate. delta is ignored for mismatches.
func (s *Scoring) ObserveScore(handler, outcome string, delta float64) {
	if s == nil {
		return
	}
	s.scored.WithLabelValues(handler, outcome).Inc()
	if outcome != OutcomeMismatch {
		s.delta.WithLabelValues(handler).Observe(delta)
	}
}

// ObserveCandidates records how many candidates one search rescored.
func (s *Scoring) ObserveCandidates(n int) {
	if s == nil {
		return
	}
	s.candidates.Observe(float64(n))
}

func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("register metric: %w", err)
	}
	return nil
}
