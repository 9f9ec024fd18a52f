// Package apperrors defines the error taxonomy shared by the repository
// layer and the HTTP handlers: validation, authorization and not-found.
// Handlers map these onto 400, 403 and 404; anything else is a 500.
package apperrors

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

func Authorization(format string, args ...interface{}) error {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func NotFound(resource string, id int) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// StatusCode maps a domain error onto its HTTP status.
func StatusCode(err error) int {
	switch {
	case IsValidation(err):
		return 400
	case IsAuthorization(err):
		return 403
	case IsNotFound(err):
		return 404
	default:
		return 500
	}
}
