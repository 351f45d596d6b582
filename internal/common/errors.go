package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	// Kind is one of the sentinel errors below so callers can errors.Is on it.
	Kind  error
	Cause error
	// Raw carries the model reply on extraction failures, for logging only.
	Raw string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

const (
	CodeExtraction  = "EXTRACTION_ERROR"
	CodePersistence = "PERSISTENCE_ERROR"
	CodeValidation  = "VALIDATION_ERROR"
	CodeConfig      = "CONFIG_ERROR"
)

// Common application errors
var (
	ErrExtraction   = errors.New("extraction failed")
	ErrPersistence  = errors.New("persistence failed")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kindForCode(code),
		Cause:   cause,
	}
}

func NewExtractionError(message, raw string, cause error) *AppError {
	e := NewAppError(CodeExtraction, message, cause)
	e.Raw = raw
	return e
}

func NewPersistenceError(message string, cause error) *AppError {
	return NewAppError(CodePersistence, message, cause)
}

func NewValidationError(message string, cause error) *AppError {
	return NewAppError(CodeValidation, message, cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsExtraction, IsPersistence and IsValidation classify errors at the chat boundary.
func IsExtraction(err error) bool  { return errors.Is(err, ErrExtraction) }
func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }
func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }

func kindForCode(code string) error {
	switch code {
	case CodeExtraction:
		return ErrExtraction
	case CodePersistence:
		return ErrPersistence
	case CodeValidation:
		return ErrValidation
	case CodeConfig:
		return ErrInvalidInput
	default:
		return ErrInternal
	}
}
