package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Service error codes. Handlers translate these to HTTP statuses; everything
// else is treated as an internal error.
const (
	CodeNotFound     = "notFound"
	CodeInvalidState = "invalidState"
	CodeUnauthorized = "unauthorized"
	CodeValidation   = "validationError"
	CodeExternal     = "externalServiceError"
	CodeExhausted    = "exhausted"
)

// ServiceError is a typed error carrying a taxonomy code.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewNotFoundError(msg string) error {
	return &ServiceError{Code: CodeNotFound, Message: msg}
}

func NewInvalidStateError(msg string) error {
	return &ServiceError{Code: CodeInvalidState, Message: msg}
}

func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: CodeUnauthorized, Message: msg}
}

func NewValidationError(msg string) error {
	return &ServiceError{Code: CodeValidation, Message: msg}
}

func NewExternalServiceError(msg string) error {
	return &ServiceError{Code: CodeExternal, Message: msg}
}

func NewExhaustedError(msg string) error {
	return &ServiceError{Code: CodeExhausted, Message: msg}
}

// HTTPStatus maps an error to a response status. Unknown errors map to 500.
func HTTPStatus(err error) int {
	var se *ServiceError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}
	switch se.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidState:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeValidation:
		return http.StatusBadRequest
	case CodeExhausted:
		return http.StatusOK
	case CodeExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
