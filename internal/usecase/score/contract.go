package score

import "github.com/kailas-cloud/qbm25/internal/usecase/script"

// Compiler turns a script reference into a Scorer.
type Compiler interface {
	Compile(lang, source string, params map[string]any) (script.Scorer, error)
	Names() []string
}

// Recorder receives per-item scoring observations.
type Recorder interface {
	ObserveScore(handler, outcome string, delta float64)
}
