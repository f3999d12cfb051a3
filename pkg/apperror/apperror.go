package apperror

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies every failure a core operation can surface.
type Kind string

const (
	KindValidation            Kind = "VALIDATION"
	KindNotFound              Kind = "NOT_FOUND"
	KindInvalidState          Kind = "INVALID_STATE"
	KindDuplicate             Kind = "DUPLICATE"
	KindInsufficientStock     Kind = "INSUFFICIENT_STOCK"
	KindReversalWindowExpired Kind = "REVERSAL_WINDOW_EXPIRED"
	KindForbidden             Kind = "FORBIDDEN"
	KindInternal              Kind = "INTERNAL"
)

var statusByKind = map[Kind]int{
	KindValidation:            http.StatusBadRequest,
	KindNotFound:              http.StatusNotFound,
	KindInvalidState:          http.StatusConflict,
	KindDuplicate:             http.StatusConflict,
	KindInsufficientStock:     http.StatusUnprocessableEntity,
	KindReversalWindowExpired: http.StatusUnprocessableEntity,
	KindForbidden:             http.StatusForbidden,
	KindInternal:              http.StatusInternalServerError,
}

// HTTPStatus maps a kind to the response status used by the API layer.
func HTTPStatus(kind Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type Error struct {
	kind    Kind
	message string
	details map[string]any
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	if err == nil {
		return New(kind, message)
	}
	return &Error{kind: kind, message: message, cause: err}
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() map[string]any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails attaches structured context, e.g. the offending product of a failed sale.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts the first *Error in the chain.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	if typed := As(err); typed != nil {
		return typed.Kind()
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

func Validation(message string) *Error { return New(KindValidation, message) }

func NotFound(resource string) *Error { return Newf(KindNotFound, "%s not found", resource) }

func InvalidState(message string) *Error { return New(KindInvalidState, message) }

func Duplicate(message string) *Error { return New(KindDuplicate, message) }

func Forbidden(message string) *Error { return New(KindForbidden, message) }

func Internal(err error, message string) *Error { return Wrap(KindInternal, err, message) }
