package apperrors

import (
	"errors"
	"fmt"
)

// Kind is the category of an application error. Transport layers map kinds to
// status codes; everything else only compares them.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError of the same kind, so callers can write
// errors.Is(err, apperrors.ErrForbidden) regardless of the code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

// New creates a new AppError
func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// Wrap wraps an existing error with a kind and a message safe to show callers.
func Wrap(err error, kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, Err: err}
}

// Kind sentinels. They carry no code, so errors.Is against them matches the
// whole category.
var (
	ErrUnauthenticated = &AppError{Kind: KindUnauthenticated, Message: "authentication required"}
	ErrForbidden       = &AppError{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound        = &AppError{Kind: KindNotFound, Message: "not found"}
	ErrInvalidInput    = &AppError{Kind: KindInvalidInput, Message: "invalid input"}
	ErrConflict        = &AppError{Kind: KindConflict, Message: "conflict"}
)

func Unauthenticated(code, message string) *AppError {
	return New(KindUnauthenticated, code, message)
}

func Forbidden(code, message string) *AppError {
	return New(KindForbidden, code, message)
}

func NotFound(code, message string) *AppError {
	return New(KindNotFound, code, message)
}

func InvalidInput(code, message string) *AppError {
	return New(KindInvalidInput, code, message)
}

func Conflict(code, message string) *AppError {
	return New(KindConflict, code, message)
}

// KindOf reports the kind of err, or KindInternal for anything that is not an
// AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
