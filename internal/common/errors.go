package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Per-document error taxonomy. All four degrade to an error ledger row and
// never abort the batch loop.
var (
	ErrDocumentIO       = errors.New("document unreadable")
	ErrInferenceNetwork = errors.New("inference request failed")
	ErrInferenceTimeout = errors.New("inference deadline exceeded")
	ErrNoJSON           = errors.New("no JSON object in model response")
	ErrMalformedJSON    = errors.New("malformed JSON in model response")
	ErrEmptyResponse    = errors.New("empty model response")

	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
