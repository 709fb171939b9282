package internal

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrFieldCount   = errors.New("field count does not match signature purpose")
)

// MissingFieldError names the empty value that prevented a signature.
type MissingFieldError struct {
	Purpose Purpose
	Field   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s signature: %s is empty", e.Purpose, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// ValidationError is returned for incomplete or malformed client input.
// Nothing is sent to the gateway when it occurs.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a failed gateway call. StatusCode is zero when no
// response was received at all.
type UpstreamError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gateway responded %d: %s", e.StatusCode, string(e.Body))
	}
	return fmt.Sprintf("gateway request: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
