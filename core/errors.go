package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an application error so the boundary layer can map it to
// an HTTP status without inspecting message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// AppError is a typed application failure raised by services, validators
// and the record store.
type AppError struct {
	Kind    Kind
	Message string
}

func (e *AppError) Error() string { return e.Message }

func newAppError(kind Kind, format string, args []interface{}) error {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewBadRequestError(format string, args ...interface{}) error {
	return newAppError(KindBadRequest, format, args)
}

func NewUnauthorizedError(format string, args ...interface{}) error {
	return newAppError(KindUnauthorized, format, args)
}

func NewForbiddenError(format string, args ...interface{}) error {
	return newAppError(KindForbidden, format, args)
}

func NewNotFoundError(format string, args ...interface{}) error {
	return newAppError(KindNotFound, format, args)
}

func NewConflictError(format string, args ...interface{}) error {
	return newAppError(KindConflict, format, args)
}

func NewInternalError(format string, args ...interface{}) error {
	return newAppError(KindInternal, format, args)
}

// ErrKind unwraps err and reports its Kind; KindUnknown for foreign errors.
func ErrKind(err error) Kind {
	if appErr, ok := errors.Cause(err).(*AppError); ok {
		return appErr.Kind
	}
	return KindUnknown
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
