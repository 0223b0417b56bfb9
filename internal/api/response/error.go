package response

import (
	"errors"
	"net/http"
)

// Error is a failure with the HTTP status it should be answered with.
type Error struct {
	Code    int
	Message string
}

func (e Error) Error() string {
	return e.Message
}

func NewError(code int, message string) Error {
	return Error{Code: code, Message: message}
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return http.StatusInternalServerError
}
