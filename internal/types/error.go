package types

import "fmt"

// CustomError is an error with an HTTP status and an error type for the
// JSON error response
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Forbidden builds a 403 CustomError
func Forbidden(message, errorType string) *CustomError {
	return &CustomError{Code: 403, Message: message, Type: errorType}
}
