// Package scoring implements the qbm25 numeric-proximity adjustment of a base
// relevance score.
//
// A Config is built once per query from the raw script params and is immutable
// afterwards, so a single value can be shared by every goroutine scoring candidates
// for that query.
package scoring

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/qbm25/internal/domain"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring/attrlist"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring/handler"
)

// Param names accepted by NewConfig.
const (
	ParamHandler  = "handler"
	ParamUnit     = "unit"
	ParamAmount   = "amount"
	ParamAmount2  = "amount2"
	ParamWeight   = "weight"
	ParamMaxScore = "max_score"
)

// DefaultMaxScore is used when max_score is absent or null.
const DefaultMaxScore = 1.0

var requiredParams = []string{ParamHandler, ParamUnit, ParamAmount, ParamAmount2, ParamWeight}

// Config is the per-query scoring configuration.
type Config struct {
	handler  handler.Handler
	symbol   string
	units    []string
	unitSet  map[string]struct{}
	amount   float64
	amount2  float64
	weight   float64
	maxScore float64
}

// NewConfig validates params and builds an immutable Config.
// handler, unit, amount, amount2 and weight are required and non-null; max_score
// defaults to 1.0 when absent or null.
//
// Unlike the Elasticsearch plugin this scorer descends from, a max_score <= 0 is
// rejected instead of being divided through and clamped afterwards.
func NewConfig(params map[string]any) (Config, error) {
	for _, name := range requiredParams {
		v, ok := params[name]
		if !ok {
			return Config{}, domain.NewMissingParam(name)
		}
		if v == nil {
			return Config{}, domain.NewInvalidParam(name, "value is null")
		}
	}

	symbol := paramText(params[ParamHandler])
	units := parseUnits(params[ParamUnit])

	amount, err := parseNumber(ParamAmount, params[ParamAmount])
	if err != nil {
		return Config{}, err
	}
	amount2, err := parseNumber(ParamAmount2, params[ParamAmount2])
	if err != nil {
		return Config{}, err
	}
	weight, err := parseNumber(ParamWeight, params[ParamWeight])
	if err != nil {
		return Config{}, err
	}

	maxScore := DefaultMaxScore
	if raw, ok := params[ParamMaxScore]; ok && raw != nil {
		maxScore, err = parseNumber(ParamMaxScore, raw)
		if err != nil {
			return Config{}, err
		}
		if maxScore <= 0 {
			return Config{}, domain.NewInvalidParam(ParamMaxScore, "must be positive")
		}
	}

	unitSet := make(map[string]struct{}, len(units))
	for _, u := range units {
		unitSet[u] = struct{}{}
	}

	return Config{
		handler:  handler.Parse(symbol),
		symbol:   symbol,
		units:    units,
		unitSet:  unitSet,
		amount:   amount,
		amount2:  amount2,
		weight:   weight,
		maxScore: maxScore,
	}, nil
}

// Handler returns the parsed comparison operator.
func (c *Config) Handler() handler.Handler { return c.handler }

// Symbol returns the handler exactly as supplied.
func (c *Config) Symbol() string { return c.symbol }

// Units returns the unit identifiers the query is interested in.
func (c *Config) Units() []string { return slices.Clone(c.units) }

// Amount returns the primary target value.
func (c *Config) Amount() float64 { return c.amount }

// Amount2 returns the secondary target value (band handler only).
func (c *Config) Amount2() float64 { return c.amount2 }

// Weight returns the multiplier applied to the distance boost.
func (c *Config) Weight() float64 { return c.weight }

// MaxScore returns the base score normalization divisor.
func (c *Config) MaxScore() float64 { return c.maxScore }

func (c *Config) wants(unit string) bool {
	_, ok := c.unitSet[unit]
	return ok
}

// paramText renders a param value the way it would appear in a query DSL.
func paramText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// parseUnits accepts either a textual list ("['kg', 'lb']", "kg,lb") or a decoded
// JSON array.
func parseUnits(v any) []string {
	switch t := v.(type) {
	case []string:
		return attrlist.Parse(strings.Join(t, attrlist.Separator))
	case []any:
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = paramText(p)
		}
		return attrlist.Parse(strings.Join(parts, attrlist.Separator))
	default:
		return attrlist.Parse(paramText(v))
	}
}

func parseNumber(name string, v any) (float64, error) {
	text := strings.TrimSpace(paramText(v))
	if text == "" {
		return 0, domain.NewInvalidParam(name, "value is empty")
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, domain.NewInvalidParam(name, fmt.Sprintf("%q is not a number", text))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.NewInvalidParam(name, "must be finite")
	}
	return f, nil
}
