// Package shared provides common utilities used across the codebase.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the HTTP boundary can pick a status code
// without inspecting error strings.
type Kind int

const (
	// KindUnexpected is the catch-all for failures nobody classified.
	KindUnexpected Kind = iota
	// KindValidation marks bad or missing caller input.
	KindValidation
	// KindDependency marks a failing collaborator: model endpoint, database or SMTP.
	KindDependency
	// KindConfiguration marks a missing or invalid setting detected at startup.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDependency:
		return "dependency"
	case KindConfiguration:
		return "configuration"
	default:
		return "unexpected"
	}
}

// Error is a tagged error carrying its Kind, the failing operation and an
// optional underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.message(), e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.message(), e.Err)
	case e.Op != "":
		return e.Op + ": " + e.message()
	default:
		return e.message()
	}
}

func (e *Error) message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the caller-facing message without the wrapped cause.
func (e *Error) Message() string {
	return e.message()
}

// Validation returns a validation error with the given message.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Validationf returns a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Dependency wraps a collaborator failure for operation op.
func Dependency(op, msg string, err error) error {
	return &Error{Kind: KindDependency, Op: op, Msg: msg, Err: err}
}

// Configuration returns a configuration error with the given message.
func Configuration(msg string) error {
	return &Error{Kind: KindConfiguration, Msg: msg}
}

// Unexpected wraps an unclassified failure.
func Unexpected(op string, err error) error {
	return &Error{Kind: KindUnexpected, Op: op, Msg: "an unexpected error occurred", Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain.
// Errors that carry no Kind are KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// HTTPStatus maps err to the status code returned to HTTP callers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindDependency, KindConfiguration, KindUnexpected:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to show to any caller.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.message()
	}
	return "an unexpected error occurred"
}
