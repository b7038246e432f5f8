package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mdrcore/internal/domain"
)

// ErrorCode is the machine readable error class of an error response.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeAlreadyExists     ErrorCode = "already_exists"
	ErrorCodeInvalidTransition ErrorCode = "invalid_transition"
	ErrorCodeVersionConflict   ErrorCode = "version_conflict"
	ErrorCodeNotImplemented    ErrorCode = "not_implemented"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

var errorHandlers = []errorHandler{
	versionConflictHandler,
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
	sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorCodeAlreadyExists),
	sentinelHandler(domain.ErrInvalidTransition, http.StatusConflict, ErrorCodeInvalidTransition),
	sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, ErrorCodeValidationFailed),
	sentinelHandler(domain.ErrValidation, http.StatusBadRequest, ErrorCodeValidationFailed),
	sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorCodeNotImplemented),
}

// clientErrors are the sentinels whose messages are safe to show to clients.
var clientErrors = []error{
	domain.ErrNotFound,
	domain.ErrAlreadyExists,
	domain.ErrInvalidTransition,
	domain.ErrVersionConflict,
	domain.ErrInvalidSchema,
	domain.ErrValidation,
	domain.ErrNotImplemented,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// clientMessage returns the error text for client errors and a generic
// message for everything else, so storage details never leak.
func clientMessage(err error) string {
	for _, s := range clientErrors {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, clientMessage(err))
		return true
	}
}

// versionConflictHandler reports the current version alongside the conflict.
func versionConflictHandler(w http.ResponseWriter, err error) bool {
	var vce *domain.VersionConflictError
	if !errors.As(err, &vce) {
		return false
	}
	w.Header().Set("ETag", `"`+vce.CurrentVersion+`"`)
	writeJSON(w, http.StatusConflict, map[string]any{
		"code":            ErrorCodeVersionConflict,
		"message":         vce.Error(),
		"current_version": vce.CurrentVersion,
	})
	return true
}

func handleDomainError(logger *zap.Logger, w http.ResponseWriter, err error) {
	logger.Warn("domain error", zap.Error(err))
	for _, h := range errorHandlers {
		if h(w, err) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
