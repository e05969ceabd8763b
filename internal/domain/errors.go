package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing collection.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate collection.
	ErrAlreadyExists = errors.New("already exists")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidDocument signals a document that fails validation.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidRequest signals a malformed collection or search request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidScriptParams signals a missing or malformed scoring parameter.
	ErrInvalidScriptParams = errors.New("invalid script params")
	// ErrUnknownScript signals a script identifier (or lang) nobody registered.
	ErrUnknownScript = errors.New("unknown script")
	// ErrAttributeMismatch signals document units/values that cannot be paired.
	ErrAttributeMismatch = errors.New("attribute mismatch")
)

// ConfigurationError reports a scoring parameter that is absent or unparsable.
type ConfigurationError struct {
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: [%s] %s", ErrInvalidScriptParams.Error(), e.Param, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidScriptParams }

// NewMissingParam reports a required parameter absent from the params map.
func NewMissingParam(param string) error {
	return &ConfigurationError{Param: param, Reason: "missing parameter"}
}

// NewInvalidParam reports a parameter whose value cannot be used.
func NewInvalidParam(param, reason string) error {
	return &ConfigurationError{Param: param, Reason: reason}
}

// UnknownScriptError reports a lookup of an unregistered script.
type UnknownScriptError struct {
	Lang string
	Name string
}

func (e *UnknownScriptError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: unsupported lang %q", ErrUnknownScript.Error(), e.Lang)
	}
	return fmt.Sprintf("%s: %q", ErrUnknownScript.Error(), e.Name)
}

func (e *UnknownScriptError) Unwrap() error { return ErrUnknownScript }

// AttributeMismatchError reports document attributes that cannot be scored.
type AttributeMismatchError struct {
	Units  int
	Values int
	Reason string
}

func (e *AttributeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s (units=%d, values=%d)",
		ErrAttributeMismatch.Error(), e.Reason, e.Units, e.Values)
}

func (e *AttributeMismatchError) Unwrap() error { return ErrAttributeMismatch }
