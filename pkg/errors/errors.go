// Package errors provides error wrapping utilities and the error classes
// surfaced to the invoking workflow.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error classes. Every error returned by the launcher matches exactly one of
// these with Is.
var (
	// ErrConfig marks unusable process configuration.
	ErrConfig = stderrors.New("configuration error")
	// ErrInput marks a malformed or incomplete inbound event.
	ErrInput = stderrors.New("input error")
	// ErrCollaborator marks a failed call to an external AWS service.
	ErrCollaborator = stderrors.New("collaborator error")
)

// Wrap wraps an error with additional context information.
// If err is nil, it returns nil without wrapping.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Classify tags err with class while keeping the original cause in the chain.
// If err is nil, it returns nil.
func Classify(class, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, class) {
		return err
	}
	return fmt.Errorf("%w: %w", class, err)
}

// Configf returns a new ErrConfig with a formatted message.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// Inputf returns a new ErrInput with a formatted message.
func Inputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}

func New(text string) error { return stderrors.New(text) }

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func Join(errs ...error) error { return stderrors.Join(errs...) }
