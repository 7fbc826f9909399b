package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySelection is returned when no character class is enabled.
	ErrEmptySelection = errors.New("at least one character type must be selected")

	// ErrModelUnavailable is returned when the remote generator is not configured.
	ErrModelUnavailable = errors.New("remote model generator is not configured")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// RemoteGenerationError is returned when the remote model fails or its reply
// cannot be used as a password.
type RemoteGenerationError struct {
	Attempts int
	Reason   string
	Err      error
}

func (e *RemoteGenerationError) Error() string {
	msg := fmt.Sprintf("remote generation failed after %d attempt(s): %s", e.Attempts, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteGenerationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a caller input problem.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrEmptySelection)
}
