package scoring

import (
	"math"
	"strconv"

	"github.com/kailas-cloud/qbm25/internal/domain"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring/attrlist"
)

// Attributes are a document's unit and value lists in stored textual form,
// positionally aligned: Units[i] tags Values[i].
type Attributes struct {
	Units  string
	Values string
}

// Outcome tells which branch produced a score.
type Outcome int

// Scoring outcomes.
const (
	// OutcomeBoosted means the distance boost was blended in.
	OutcomeBoosted Outcome = iota
	// OutcomeEarlyExit means no document unit matched the query.
	OutcomeEarlyExit
	// OutcomePassthrough means the handler does not adjust scores.
	OutcomePassthrough
)

// String returns the outcome label used in metrics and logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeBoosted:
		return "boosted"
	case OutcomeEarlyExit:
		return "early_exit"
	default:
		return "passthrough"
	}
}

// Breakdown exposes the intermediate values of a Score call.
type Breakdown struct {
	Normalized   float64
	Intersection []float64
	Distance     float64
	Score        float64
	Outcome      Outcome
}

// Score adjusts baseScore for a document. The result is never negative.
// Documents sharing no unit with the query, and handlers that do not adjust,
// score Normalize(baseScore).
// A non-nil error is always a *domain.AttributeMismatchError; callers that want to
// keep ranking may fall back to Normalize(baseScore).
func (c *Config) Score(baseScore float64, attrs Attributes) (float64, error) {
	b, err := c.Explain(baseScore, attrs)
	if err != nil {
		return 0, err
	}
	return b.Score, nil
}

// Normalize divides baseScore by max_score.
func (c *Config) Normalize(baseScore float64) float64 {
	return baseScore / c.maxScore
}

// Explain is Score with the intermediate values kept.
func (c *Config) Explain(baseScore float64, attrs Attributes) (Breakdown, error) {
	normalized := c.Normalize(baseScore)
	units := attrlist.Parse(attrs.Units)

	if !c.matchesAny(units) {
		return Breakdown{Normalized: normalized, Score: clamp(normalized), Outcome: OutcomeEarlyExit}, nil
	}
	if !c.handler.Adjusts() {
		return Breakdown{Normalized: normalized, Score: clamp(normalized), Outcome: OutcomePassthrough}, nil
	}

	values := attrlist.Parse(attrs.Values)
	if len(units) != len(values) {
		return Breakdown{}, &domain.AttributeMismatchError{
			Units: len(units), Values: len(values), Reason: "units and values differ in length",
		}
	}

	intersection := make([]float64, 0, len(units))
	for i, u := range units {
		if !c.wants(u) {
			continue
		}
		v, err := strconv.ParseFloat(values[i], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Breakdown{}, &domain.AttributeMismatchError{
				Units: len(units), Values: len(values),
				Reason: "value " + strconv.Quote(values[i]) + " for unit " + strconv.Quote(u) + " is not a number",
			}
		}
		intersection = append(intersection, v)
	}

	n := len(intersection)
	if n == 0 {
		return Breakdown{}, &domain.AttributeMismatchError{
			Units: len(units), Values: len(values), Reason: "no intersecting values",
		}
	}

	var acc float64
	for _, v := range intersection {
		acc += c.handler.Contribution(v, c.amount, c.amount2)
	}
	dist := acc / float64(n)

	return Breakdown{
		Normalized:   normalized,
		Intersection: intersection,
		Distance:     dist,
		Score:        clamp(normalized + c.weight*dist),
		Outcome:      OutcomeBoosted,
	}, nil
}

func (c *Config) matchesAny(docUnits []string) bool {
	for _, u := range docUnits {
		if c.wants(u) {
			return true
		}
	}
	return false
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	return score
}
