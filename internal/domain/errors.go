package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for errors raised locally, before or instead of a REST call.
const (
	CodeNotFound      = 1
	CodeAlreadyExists = 2
	CodeValidation    = 3
	CodeInternal      = 4
	CodeUnauthorized  = 5
)

// AppError represents a local error with a code, message, and optional wrapped error.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined errors.
//
// Use the helper functions (IsNotFound, IsValidation, ...) to classify errors;
// they match on code rather than pointer identity and also understand
// HTTPError values returned by the REST client.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized  = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
)

// NewAppError creates a new AppError with the given code, message, and wrapped error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// HTTPError is the failure shape of every REST call. Status is zero when no
// response was received (network or transport failure); Err then holds the cause.
// Message is the user-facing text attached by the error translation interceptor.
type HTTPError struct {
	Method     string
	URL        string
	Status     int
	StatusText string
	Body       []byte
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
		}
		return fmt.Sprintf("%s %s: no response", e.Method, e.URL)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.Status)
}

// Unwrap returns the transport error, if any.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether the request failed without a response.
func (e *HTTPError) IsNetwork() bool {
	return e.Status == 0
}

// IsNotFound reports whether err is a not-found error, either a local AppError
// with CodeNotFound or an HTTPError with status 404.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound) || HTTPStatus(err) == http.StatusNotFound
}

// IsAlreadyExists reports whether err is or wraps an AppError with CodeAlreadyExists.
func IsAlreadyExists(err error) bool {
	return hasCode(err, CodeAlreadyExists) || HTTPStatus(err) == http.StatusConflict
}

// IsValidation reports whether err is or wraps an AppError with CodeValidation.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsInternal reports whether err is or wraps an AppError with CodeInternal.
func IsInternal(err error) bool {
	return hasCode(err, CodeInternal)
}

// IsUnauthorized reports whether err is a local unauthorized error or an HTTP 401.
func IsUnauthorized(err error) bool {
	return hasCode(err, CodeUnauthorized) || HTTPStatus(err) == http.StatusUnauthorized
}

// HTTPStatus returns the response status carried by an HTTPError in err's
// chain, or 0 if there is none.
func HTTPStatus(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// hasCode checks whether err is or wraps an *AppError with the given code.
func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code.
// HTTPError values keep their own status; AppError codes are mapped;
// everything else is http.StatusInternalServerError.
func HTTPStatusCode(err error) int {
	if status := HTTPStatus(err); status != 0 {
		return status
	}
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeAlreadyExists:
			return http.StatusConflict
		case CodeValidation:
			return http.StatusBadRequest
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeInternal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
