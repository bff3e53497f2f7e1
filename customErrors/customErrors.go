package customErrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	ErrNotFound     = "NOT FOUND"
	ErrInvalidInput = "INVALID INPUT"
	ErrAuth         = "UNAUTHORIZED"
	ErrConflict     = "CONFLICT"
	ErrInternal     = "INTERNAL"
)

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e ErrorResponse) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("code: %s, message: %s", e.Code, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("code: %s, message: %s, fields: [%s]", e.Code, e.Message, strings.Join(parts, "; "))
}

// Is reports whether target is an ErrorResponse carrying the same code, so
// errors.Is(err, customErrors.NotFound) works through any wrapping.
func (e ErrorResponse) Is(target error) bool {
	t, ok := target.(ErrorResponse)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	NotFound     = ErrorResponse{Code: ErrNotFound}
	InvalidInput = ErrorResponse{Code: ErrInvalidInput}
	Unauthorized = ErrorResponse{Code: ErrAuth}
	Conflict     = ErrorResponse{Code: ErrConflict}
	Internal     = ErrorResponse{Code: ErrInternal}
)

func NewNotFound(message string) ErrorResponse {
	return ErrorResponse{Code: ErrNotFound, Message: message}
}

func NewConflict(message string) ErrorResponse {
	return ErrorResponse{Code: ErrConflict, Message: message}
}

func NewUnauthorized(message string) ErrorResponse {
	return ErrorResponse{Code: ErrAuth, Message: message}
}

func NewInternal(message string) ErrorResponse {
	return ErrorResponse{Code: ErrInternal, Message: message}
}

func NewValidation(message string, fields map[string]string) ErrorResponse {
	return ErrorResponse{Code: ErrInvalidInput, Message: message, Fields: fields}
}

// CodeOf returns the code of the first ErrorResponse in err's chain, or
// ErrInternal when there is none.
func CodeOf(err error) string {
	var appErr ErrorResponse
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// AsResponse extracts the ErrorResponse from err's chain. Errors that carry no
// ErrorResponse become a generic internal error so driver details never leak.
func AsResponse(err error) ErrorResponse {
	var appErr ErrorResponse
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal("Something went wrong, try again later.")
}
