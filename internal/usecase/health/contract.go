package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ScriptLister lists the scoring scripts that can be compiled.
type ScriptLister interface {
	Names() []string
}
