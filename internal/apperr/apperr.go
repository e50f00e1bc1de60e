// Package apperr defines the small set of error kinds the API distinguishes.
// Handlers and services return *Error values; the HTTP error handler maps the
// kind onto a status code and response body.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	// Internal covers persistence, transport and any unclassified failure.
	Internal Kind = iota
	// Unauthorized covers bad credentials, bad tokens and non-owners alike.
	Unauthorized
	// Validation covers rejected input such as a bad file extension.
	Validation
	// NotFound is returned when a referenced row does not exist.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error carries a kind, a client-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap builds an error of the given kind around cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf reports the kind of err. Errors that are not *Error are Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// Messages shared by several call sites.
const (
	MsgInvalidToken  = "Invalid token / Expired token!"
	MsgNotPermitted  = "Not authenticated to perform this action!"
	MsgInvalidData   = "Invalid data sent to the API!"
	MsgInvalidExt    = "Invalid file extension!"
	MsgInvalidImage  = "Invalid image file!"
	MsgBadCredential = "Invalid username or password!"
)

// UnauthorizedErr is shorthand for the most common Unauthorized error.
func UnauthorizedErr(msg string) *Error { return New(Unauthorized, msg) }

// ValidationErr is shorthand for a Validation error.
func ValidationErr(msg string) *Error { return New(Validation, msg) }

// NotFoundErr is shorthand for a NotFound error.
func NotFoundErr(msg string) *Error { return New(NotFound, msg) }
