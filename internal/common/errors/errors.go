// Package errors provides the standardized error taxonomy shared by the
// fulfillment handlers, the document stores and the webhook transport.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Expected absence. Rendered as plain text, never an exception path.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	ErrCodeStoreUnavailable   ErrorCode = "STORE_UNAVAILABLE"
	ErrCodePersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"

	ErrCodeMalformedRequest ErrorCode = "MALFORMED_REQUEST"
	ErrCodeInvalidLead      ErrorCode = "INVALID_LEAD"
	ErrCodeIncompleteRecord ErrorCode = "INCOMPLETE_RECORD"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var knownCodes = map[ErrorCode]struct{}{
	ErrCodeNotFound:               {},
	ErrCodeStoreUnavailable:       {},
	ErrCodePersistenceFailure:     {},
	ErrCodeMalformedRequest:       {},
	ErrCodeInvalidLead:            {},
	ErrCodeIncompleteRecord:       {},
	ErrCodeNotificationSendFailed: {},
	ErrCodeInternal:               {},
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

func NewNotFoundError(collection, key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   "Record not found",
		Details:   fmt.Sprintf("%s/%s", collection, key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError is retryable from the platform's point of view;
// the handlers themselves never retry.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Document store is not reachable",
		Details:   detailsOf(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewPersistenceFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailure,
		Message:   "Store rejected the write",
		Details:   detailsOf(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMalformedRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedRequest,
		Message:   "Webhook request is malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidLeadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidLead,
		Message:   "Lead is missing required fields",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewIncompleteRecordError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIncompleteRecord,
		Message:   "Stored record is missing a required field",
		Details:   field,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotificationSendFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   fmt.Sprintf("Notification via %s failed", sink),
		Details:   detailsOf(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Normalization
// ==========================

// Normalize converts any error into a StandardError. Package sentinels built
// as errors.New("<CODE>") and wrapped with fmt.Errorf("%w: ...") are
// recognized anywhere in the chain; context deadlines count as the store being
// unreachable.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return NewStoreUnavailableError(err)
	}

	for e := err; e != nil; e = stderrors.Unwrap(e) {
		code := ErrorCode(e.Error())
		if _, ok := knownCodes[code]; !ok {
			continue
		}
		switch code {
		case ErrCodeStoreUnavailable:
			return NewStoreUnavailableError(err)
		case ErrCodePersistenceFailure:
			return NewPersistenceFailureError(err)
		case ErrCodeNotificationSendFailed:
			return NewNotificationSendFailedError("unknown", err)
		default:
			return &StandardError{
				Code:      code,
				Message:   strings.ToLower(strings.ReplaceAll(string(code), "_", " ")),
				Details:   err.Error(),
				Timestamp: time.Now().UTC(),
			}
		}
	}

	return NewInternalError(err.Error())
}

// CodeOf returns the normalized code of err, or "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode reports whether the caller may retry the whole request.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeStoreUnavailable, ErrCodeNotificationSendFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "PERSISTENCE"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOT_FOUND") || strings.Contains(codeStr, "RECORD"):
		return "DATA"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "MALFORMED") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
