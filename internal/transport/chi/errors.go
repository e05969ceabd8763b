package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qbm25/internal/domain"
	"github.com/kailas-cloud/qbm25/internal/logger"
)

// ErrorCode is the machine-readable part of an error response.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest              ErrorCode = "bad_request"
	CodeUnauthorized            ErrorCode = "unauthorized"
	CodeValidationFailed        ErrorCode = "validation_failed"
	CodeInvalidScriptParams     ErrorCode = "invalid_script_params"
	CodeUnknownScript           ErrorCode = "unknown_script"
	CodeCollectionNotFound      ErrorCode = "collection_not_found"
	CodeDocumentNotFound        ErrorCode = "document_not_found"
	CodeCollectionAlreadyExists ErrorCode = "collection_already_exists"
	CodeInternalError           ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Param   string    `json:"param,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		configurationErrorHandler,
		unknownScriptHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeCollectionNotFound),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeCollectionAlreadyExists),
		validationHandler(domain.ErrInvalidDocument),
		validationHandler(domain.ErrInvalidRequest),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// validationHandler echoes the validation message, which only describes caller input.
func validationHandler(sentinel error) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, http.StatusBadRequest, CodeValidationFailed, validationMessage(err, sentinel))
		return true
	}
}

func configurationErrorHandler(w http.ResponseWriter, err error) bool {
	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    CodeInvalidScriptParams,
		Message: ce.Error(),
		Param:   ce.Param,
	})
	return true
}

func unknownScriptHandler(w http.ResponseWriter, err error) bool {
	var use *domain.UnknownScriptError
	if !errors.As(err, &use) {
		return false
	}
	writeError(w, http.StatusBadRequest, CodeUnknownScript, use.Error())
	return true
}

// validationMessage drops the "op: " prefixes the service layers add, keeping the
// innermost error that still wraps sentinel.
func validationMessage(err, sentinel error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil || next == sentinel || !errors.Is(next, sentinel) { //nolint:errorlint // identity check on the sentinel itself
			return err.Error()
		}
		err = next
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug("Request rejected", zap.Error(err))
			return
		}
	}
	log.Error("Internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
