// ABOUTME: Error taxonomy for import failures.
// ABOUTME: Every failure maps to a code and a user-facing message plus hint.

package importer

import (
	"errors"
	"fmt"

	"github.com/fieldkit/sheetbridge/internal/fetch"
)

// Code classifies an import failure for the UI boundary.
type Code string

const (
	// CodeConfig: the named source field was not found or holds no file.
	CodeConfig Code = "config_error"
	// CodeCredential: the CMS API token is missing or was rejected.
	CodeCredential Code = "credential_error"
	// CodeContentMismatch: the selected file is not a parsable spreadsheet.
	CodeContentMismatch Code = "content_mismatch"
	// CodeNetwork: a fetch or API call returned a non-2xx or failed outright.
	CodeNetwork Code = "network_error"
	// CodeBusy: an import is already running for this editor instance.
	CodeBusy Code = "busy"
	// CodeInternal: anything else; should not normally surface.
	CodeInternal Code = "internal_error"
)

// Error is a classified import failure. Message is safe to show to the
// editor; Hint suggests a fix when one is known.
type Error struct {
	Code    Code
	Message string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrBusy is returned when Start is called while an import is running.
var ErrBusy = &Error{Code: CodeBusy, Message: "an import is already in progress"}

// classify wraps an arbitrary pipeline error into the taxonomy.
func classify(err error, stage string) *Error {
	var ie *Error
	if errors.As(err, &ie) {
		return ie
	}
	if errors.Is(err, fetch.ErrNoCredential) {
		return &Error{
			Code:    CodeCredential,
			Message: "the CMS API token is not configured",
			Hint:    "set CMS_API_TOKEN so upload ids can be resolved",
			Err:     err,
		}
	}
	var httpErr *fetch.HTTPError
	if errors.As(err, &httpErr) {
		code := CodeNetwork
		if httpErr.StatusCode == 401 || httpErr.StatusCode == 403 {
			code = CodeCredential
		}
		return &Error{
			Code:    code,
			Message: fmt.Sprintf("%s failed with %s", stage, httpErr.Status),
			Err:     err,
		}
	}
	return &Error{Code: CodeNetwork, Message: fmt.Sprintf("%s failed", stage), Err: err}
}
