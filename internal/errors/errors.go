package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specdiff error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrMismatch          ErrorCode = "MISMATCH"           // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404
	ErrFileNotFound      ErrorCode = "FILE_NOT_FOUND"     // 404
	ErrAttachmentMissing ErrorCode = "ATTACHMENT_MISSING" // 404
	ErrContentGone       ErrorCode = "CONTENT_GONE"       // 410
	ErrConversionFailed  ErrorCode = "CONVERSION_FAILED"  // 422
	ErrCancelled         ErrorCode = "CANCELLED"          // 499
	ErrIO                ErrorCode = "IO_ERROR"           // 500
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// SpecError represents a structured error with code, status, and details.
type SpecError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *SpecError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *SpecError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SpecError {
	return &SpecError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewMismatch creates a 400 error for input whose shape doesn't match the schema,
// e.g. a key with the wrong number of fields. It is a caller bug and aborts the call.
func NewMismatch(what string, want, got int) *SpecError {
	return &SpecError{
		Code:    ErrMismatch,
		Status:  400,
		Message: fmt.Sprintf("%s mismatch: expected %d fields, got %d", what, want, got),
		Details: map[string]any{"what": what, "expected": want, "actual": got},
	}
}

// NewNotFound creates a 404 error for when a record cannot be found.
func NewNotFound(key string) *SpecError {
	return &SpecError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("record not found: %s", key),
		Details: map[string]any{"key": key},
	}
}

// NewFileNotFound creates a 404 error for a source file that doesn't exist.
func NewFileNotFound(path string) *SpecError {
	return &SpecError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewAttachmentMissing creates a 404 error for a record without the requested attachment.
func NewAttachmentMissing(key, kind string) *SpecError {
	return &SpecError{
		Code:    ErrAttachmentMissing,
		Status:  404,
		Message: fmt.Sprintf("record %s has no %s attachment", key, kind),
		Details: map[string]any{"key": key, "kind": kind},
	}
}

// NewContentGone creates a 410 error for an attached blob that was removed from the content store.
func NewContentGone(key, ref string) *SpecError {
	details := map[string]any{"ref": ref}
	msg := fmt.Sprintf("stored file %s was removed from the content store", ref)
	if key != "" {
		details["key"] = key
		msg = fmt.Sprintf("stored file %s of record %s was removed from the content store", ref, key)
	}
	return &SpecError{
		Code:    ErrContentGone,
		Status:  410,
		Message: msg,
		Details: details,
	}
}

// NewConversionFailed creates a 422 error for a failed document conversion.
func NewConversionFailed(path string, err error) *SpecError {
	msg := fmt.Sprintf("conversion of %s failed", path)
	if err != nil {
		msg = fmt.Sprintf("conversion of %s failed: %v", path, err)
	}
	return &SpecError{
		Code:    ErrConversionFailed,
		Status:  422,
		Message: msg,
		Details: map[string]any{"path": path},
		cause:   err,
	}
}

// NewCancelled creates a 499 error for an operation stopped by its context.
func NewCancelled(operation string) *SpecError {
	return &SpecError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewIO creates a 500 error for a filesystem failure on a specific path.
func NewIO(op, path string, err error) *SpecError {
	return &SpecError{
		Code:    ErrIO,
		Status:  500,
		Message: fmt.Sprintf("%s %s: %v", op, path, err),
		Details: map[string]any{"operation": op, "path": path},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SpecError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SpecError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) a SpecError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SpecError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// As returns the SpecError in err's chain, if any.
func As(err error) (*SpecError, bool) {
	var sErr *SpecError
	ok := stderrors.As(err, &sErr)
	return sErr, ok
}
