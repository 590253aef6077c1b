package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindSourceUnavailable Kind = "source_unavailable"
	KindStoreCorrupt      Kind = "store_corrupt"
	KindInvariant         Kind = "invariant_violation"
	KindUnauthenticated   Kind = "unauthenticated"
	KindNotReady          Kind = "not_ready"
)

// Error is the single error type returned by the quiz core. Code is a stable
// machine-readable identifier, Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same request may succeed.
func (e *Error) Retryable() bool {
	return e != nil && (e.Kind == KindSourceUnavailable || e.Kind == KindNotReady)
}

func New(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message, nil)
}

func SourceUnavailable(code, message string, err error) *Error {
	return New(KindSourceUnavailable, code, message, err)
}

func StoreCorrupt(key string, err error) *Error {
	return New(KindStoreCorrupt, "store_corrupt", "stored data for "+key+" is unreadable", err)
}

func Invariant(code, message string) *Error {
	return New(KindInvariant, code, message, nil)
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, "login_required", message, nil)
}

func NotReady(message string) *Error {
	return New(KindNotReady, "not_ready", message, nil)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	appErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvariant:
		return http.StatusConflict
	case KindSourceUnavailable, KindNotReady:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
