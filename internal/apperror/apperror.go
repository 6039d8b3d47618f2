// Package apperror defines the error taxonomy shared by all layers and its
// mapping onto HTTP status codes.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	Unauthenticated Kind = iota + 1
	Forbidden
	InvalidID
	NotFound
	Conflict
	Validation
	Internal
)

// Error carries a kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the Kind from err. Errors outside the taxonomy are
// classified as Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// MessageOf returns the client-safe message for err. Internal failures never
// expose their underlying message.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != Internal {
		return appErr.Message
	}
	return "something went wrong"
}

// HTTPStatus maps a Kind to its HTTP response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case InvalidID, Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
