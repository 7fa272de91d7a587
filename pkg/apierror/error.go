package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is the JSON body of every non-2xx API response.
type Error struct {
	Code    int      `json:"-"`
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WithDetails(code int, message string, details ...string) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

func NotFound(resource string) *Error {
	return New(http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, message)
}

// Write renders e as JSON with its status code.
func Write(w http.ResponseWriter, e *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Code)
	_ = json.NewEncoder(w).Encode(e)
}
