// Package apperr defines coded application errors shared by the reminder
// session and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError with the same code, so errors.Is works against the
// sentinels below after New or Wrap.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrNotFound      = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest    = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal      = &AppError{Code: "GEN_003", Message: "internal error"}
	ErrConflict      = &AppError{Code: "GEN_004", Message: "conflict"}
	ErrNotActionable = &AppError{Code: "INTAKE_001", Message: "intake cannot be confirmed now"}
	ErrPushDisabled  = &AppError{Code: "PUSH_001", Message: "push notifications are not configured"}
)

// Wrap attaches a more specific message to one of the sentinel codes.
func Wrap(sentinel *AppError, message string, cause ...error) *AppError {
	return New(sentinel.Code, message, cause...)
}

func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HTTPStatus maps an error onto the response status the API returns for it.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotActionable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPushDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to show to API clients.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != ErrInternal.Code {
		return appErr.Message
	}
	return ErrInternal.Message
}
