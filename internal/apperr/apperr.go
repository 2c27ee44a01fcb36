// Package apperr defines the application error type
package apperr

import (
	"fmt"
)

// Error is an application error. Message is the user-facing text while Err
// carries the underlying cause (if any).
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fmt returns a copy of the error with its message placeholders filled in.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(e.Message, args...),
		Err:     e.Err,
	}
}

// Wrap returns a copy of the error with an underlying cause attached.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		Message: e.Message,
		Err:     err,
	}
}
