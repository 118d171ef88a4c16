package common

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Code is a stable machine-readable error token.
type Code string

const (
	CodeBadRequest           Code = "bad_request"
	CodeNotFound             Code = "not_found"
	CodePayloadTooLarge      Code = "payload_too_large"
	CodeInvalidFileSignature Code = "invalid_file_signature"
	CodeModelNotFound        Code = "model_not_found"
	CodePreviewNotSupported  Code = "preview_not_supported"
	CodeServiceUnavailable   Code = "service_unavailable"
	CodeInternal             Code = "internal_server_error"
)

const internalMessage = "Internal Server Error"

// Error is an API-facing error carrying its HTTP status and code.
// Msg is safe to show to clients; Err keeps the underlying cause for logs.
type Error struct {
	Status int
	Code   Code
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Response renders the client body.
func (e *Error) Response() ErrorResponse {
	return ErrorResponse{Error: e.Msg, Code: e.Code}
}

// NewValidationError reports malformed or missing input.
func NewValidationError(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeBadRequest, Msg: msg}
}

// NewNotFoundError reports an unknown id or a missing stored file.
func NewNotFoundError(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Msg: msg}
}

// NewConflictError reports referenced models that do not exist.
func NewConflictError(missingModelIDs []uint) *Error {
	ids := make([]string, 0, len(missingModelIDs))
	for _, id := range missingModelIDs {
		ids = append(ids, strconv.FormatUint(uint64(id), 10))
	}
	return &Error{
		Status: http.StatusBadRequest,
		Code:   CodeModelNotFound,
		Msg:    "Model not found: " + strings.Join(ids, ", "),
	}
}

// NewPayloadTooLargeError reports an upload above its field ceiling.
func NewPayloadTooLargeError() *Error {
	return &Error{Status: http.StatusRequestEntityTooLarge, Code: CodePayloadTooLarge, Msg: "Uploaded file is too large."}
}

// NewSignatureMismatchError reports file content that does not match its extension.
func NewSignatureMismatchError(field string) *Error {
	return &Error{
		Status: http.StatusBadRequest,
		Code:   CodeInvalidFileSignature,
		Msg:    fmt.Sprintf("%s content does not match its file extension.", field),
	}
}

// NewPreviewNotSupportedError reports a model without a browser-renderable asset.
func NewPreviewNotSupportedError() *Error {
	return &Error{
		Status: http.StatusBadRequest,
		Code:   CodePreviewNotSupported,
		Msg:    "Preview is not supported for this file type.",
	}
}

// NewServiceUnavailableError reports a write that could not take the shared lock.
func NewServiceUnavailableError(err error) *Error {
	return &Error{
		Status: http.StatusServiceUnavailable,
		Code:   CodeServiceUnavailable,
		Msg:    "Service busy, please retry later.",
		Err:    err,
	}
}

// NewInternalError hides err behind a generic message.
func NewInternalError(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Msg: internalMessage, Err: err}
}

// AsError returns the *Error in err's chain, or wraps err as internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}
