package apperrors

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorCode classifies a failure for callers and for the HTTP layer.
type ErrorCode int

const (
	ErrInternal ErrorCode = 1000 + iota
	ErrUnavailable
)

const (
	ErrUnauthenticated ErrorCode = 2000 + iota
	ErrForbidden
)

const (
	ErrInvalidInput ErrorCode = 3000 + iota
	ErrNotFound
	ErrConflict
)

// AppError carries a code, a client-safe message and the underlying cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError without a cause.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a code and message to an existing error.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first AppError in err's chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// FromDB classifies a GORM error. Record-not-found becomes ErrNotFound, a unique
// violation becomes ErrConflict, anything else is treated as transient store I/O.
func FromDB(message string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(ErrNotFound, message, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(ErrConflict, message, err)
	default:
		return Wrap(ErrUnavailable, message, err)
	}
}
