// Package script resolves named scoring scripts to scorers, decoupling the scoring
// core from whoever hosts the lookup.
package script

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/qbm25/internal/domain"
	"github.com/kailas-cloud/qbm25/internal/domain/scoring"
)

// Lang is the only script language the registry compiles.
const Lang = "expert_scripts"

// QBM25 is the identifier of the numeric-proximity scorer.
const QBM25 = "qbm25"

// Scorer adjusts a base relevance score for one document.
type Scorer interface {
	Score(baseScore float64, attrs scoring.Attributes) (float64, error)
	Explain(baseScore float64, attrs scoring.Attributes) (scoring.Breakdown, error)
	Normalize(baseScore float64) float64
	// Deterministic reports whether identical inputs always yield identical scores,
	// which makes results cacheable.
	Deterministic() bool
	// Label names the scorer variant for metrics.
	Label() string
}

// Factory builds a Scorer from raw query params. It runs once per query.
type Factory func(params map[string]any) (Scorer, error)

// Registry maps script identifiers to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default returns a registry with qbm25 registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(QBM25, NewQBM25)
	return r
}

// Register binds name to f, replacing any previous binding.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Compile looks up source under lang and builds a Scorer from params.
// An empty lang means Lang.
func (r *Registry) Compile(lang, source string, params map[string]any) (Scorer, error) {
	if lang == "" {
		lang = Lang
	}
	if lang != Lang {
		return nil, &domain.UnknownScriptError{Lang: lang}
	}

	r.mu.RLock()
	f, ok := r.factories[source]
	r.mu.RUnlock()
	if !ok {
		return nil, &domain.UnknownScriptError{Lang: lang, Name: source}
	}

	s, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", source, err)
	}
	return s, nil
}
