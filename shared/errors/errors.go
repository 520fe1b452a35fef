package errors

import (
	stderrors "errors"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func NotFound(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
}

// PermissionDenied carries a reason that is safe to show to the user.
func PermissionDenied(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusForbidden}
}

func BadRequest(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest}
}

// Is reports whether err (or anything it wraps) is an ErrorWithStatusCode with the given code.
func Is(err error, statusCode int) bool {
	var e *ErrorWithStatusCode
	if stderrors.As(err, &e) {
		return e.StatusCode == statusCode
	}
	return false
}

func IsNotFound(err error) bool {
	return Is(err, http.StatusNotFound)
}

func IsPermissionDenied(err error) bool {
	return Is(err, http.StatusForbidden)
}

// StatusCode returns the HTTP status carried by err, 500 for anything else.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if stderrors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}
