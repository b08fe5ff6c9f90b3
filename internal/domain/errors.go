package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput groups client input errors (HTTP 400).
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingHTML signals an absent or empty html field.
	ErrMissingHTML = fmt.Errorf("%w: missing HTML content", ErrInvalidInput)
	// ErrInvalidBody signals a body that does not decode as a render request.
	ErrInvalidBody = fmt.Errorf("%w: invalid JSON body", ErrInvalidInput)
)

// UpstreamError is a non-2xx answer from the render dependency.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return "Screenshot API error: " + e.Body
}
