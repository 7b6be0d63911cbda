// ABOUTME: Standardized error response types and helpers for HTTP handlers.
// ABOUTME: Maps the import error taxonomy onto consistent JSON error bodies.

package errors

import (
	"encoding/json"
	"net/http"

	"github.com/fieldkit/sheetbridge/internal/importer"
)

// ErrorResponse is the standardized error response structure. Every error
// the bridge returns has this shape so host-side handling stays uniform.
type ErrorResponse struct {
	Code    string `json:"code"`           // Machine-readable error code (e.g., "config_error")
	Message string `json:"message"`        // Human-readable error message
	Status  int    `json:"status"`         // HTTP status code
	Hint    string `json:"hint,omitempty"` // Optional: suggested fix
}

// WriteError writes a standardized error response to the HTTP response writer.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
	})
}

// WriteImportError maps a classified import failure onto an HTTP response.
// Import failures are recovered conditions, not crashes: each taxonomy
// code carries the status the host UI expects.
func WriteImportError(w http.ResponseWriter, err *importer.Error) {
	writeErrorResponse(w, ErrorResponse{
		Code:    string(err.Code),
		Message: err.Message,
		Status:  StatusForCode(err.Code),
		Hint:    err.Hint,
	})
}

// StatusForCode returns the HTTP status used for a taxonomy code.
func StatusForCode(code importer.Code) int {
	switch code {
	case importer.CodeConfig:
		return http.StatusUnprocessableEntity
	case importer.CodeCredential:
		return http.StatusUnauthorized
	case importer.CodeContentMismatch:
		return http.StatusUnsupportedMediaType
	case importer.CodeNetwork:
		return http.StatusBadGateway
	case importer.CodeBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeErrorResponse is a helper that serializes and writes the ErrorResponse.
func writeErrorResponse(w http.ResponseWriter, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}

// CommonErrorCodes defines standard error codes outside the import taxonomy
const (
	ErrInvalidRequest = "invalid_request"
	ErrInvalidBody    = "invalid_request_body"
	ErrNotFound       = "not_found"
	ErrInternal       = "internal_error"
)
