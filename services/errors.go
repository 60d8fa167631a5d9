package services

import "errors"

// ErrInvalidInput marks user-input validation failures; handlers map
// it to a 400 response.
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrAlertNotFound = errors.New("alert not found")
	ErrTripNotFound  = errors.New("trip not found")
)
