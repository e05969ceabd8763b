package qbm25

import "github.com/kailas-cloud/qbm25/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound            = domain.ErrNotFound
	ErrAlreadyExists       = domain.ErrAlreadyExists
	ErrDocumentNotFound    = domain.ErrDocumentNotFound
	ErrInvalidDocument     = domain.ErrInvalidDocument
	ErrInvalidRequest      = domain.ErrInvalidRequest
	ErrInvalidScriptParams = domain.ErrInvalidScriptParams
	ErrUnknownScript       = domain.ErrUnknownScript
	ErrAttributeMismatch   = domain.ErrAttributeMismatch
)

// Typed errors re-exported for errors.As.
type (
	// ConfigurationError names the script parameter that was missing or malformed.
	ConfigurationError = domain.ConfigurationError
	// UnknownScriptError names the script (or lang) that is not registered.
	UnknownScriptError = domain.UnknownScriptError
)
