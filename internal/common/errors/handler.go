// internal/common/errors/handler.go
package errors

import (
	"fmt"
)

// ErrorHandler turns failures inside an intent branch into a logged
// StandardError. The branch still owns the user-facing text.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleDispatchError normalizes err and logs it against the intent that
// produced it. NOT_FOUND is logged at warn level since it is an expected
// outcome.
func (h *ErrorHandler) HandleDispatchError(intent string, err error) *StandardError {
	stdErr := Normalize(err)
	if stdErr == nil {
		return nil
	}

	fields := map[string]interface{}{
		"intent":        intent,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if stdErr.Code == ErrCodeNotFound {
		h.logger.Warn("Intent branch degraded", fields)
	} else {
		h.logger.Error("Intent branch failed", fields)
	}
	return stdErr
}

// HandlePanic converts a recovered panic value into an INTERNAL_ERROR.
func (h *ErrorHandler) HandlePanic(intent string, recovered interface{}) *StandardError {
	stdErr := NewInternalError(fmt.Sprintf("panic: %v", recovered))
	h.logger.Error("Recovered panic during dispatch", map[string]interface{}{
		"intent":    intent,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})
	return stdErr
}
