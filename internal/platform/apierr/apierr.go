// Package apierr is the error model shared by every feature package: an
// APIError carries a stable code that the HTTP layer maps to a status.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeBusinessRule    Code = "BUSINESS_RULE" // no copies left, loan not active
	CodeConflict        Code = "CONFLICT"      // duplicate key, stale version
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrBusiness(msg string) *APIError { return &APIError{Code: CodeBusinessRule, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func Invalidf(format string, args ...any) *APIError {
	return ErrInvalid(fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) *APIError {
	return ErrNotFound(fmt.Sprintf(format, args...))
}

// CodeOf returns the code carried by err, or CodeInternal for anything that
// is not an APIError.
func CodeOf(err error) Code {
	var api *APIError
	if errors.As(err, &api) {
		return api.Code
	}
	return CodeInternal
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBusinessRule, CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
