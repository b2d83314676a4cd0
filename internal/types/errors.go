package types

import (
	"errors"
)

type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindValidation   ErrorKind = "validation"
	KindInternal     ErrorKind = "internal"
)

// AppError carries a user-facing message and the business category of a failure.
// Internal errors keep the underlying cause in Err, which is never shown to callers.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Unauthorized(message string) error {
	if message == "" {
		message = "Unauthorized"
	}
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) error {
	if message == "" {
		message = "Forbidden"
	}
	return &AppError{Kind: KindForbidden, Message: message}
}

func NotFound(message string) error {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Validation(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

func Internal(message string, err error) error {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf classifies err. Anything that is not an AppError is internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// PublicMessage returns the text safe to show a caller, or fallback for internal errors.
func PublicMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return fallback
}
