// Package errorbehavior marks errors as retryable or non-retryable so that
// callers far from the failure site can decide whether to try again.
package errorbehavior

import (
	"errors"
)

type behavior interface {
	Retryable() bool
}

type wrapped struct {
	err       error
	retryable bool
}

func (w wrapped) Error() string {
	return w.err.Error()
}

func (w wrapped) Unwrap() error {
	return w.err
}

func (w wrapped) Retryable() bool {
	return w.retryable
}

// WrapRetryable marks an error as retryable.
func WrapRetryable(err error) error {
	if err == nil {
		return nil
	}
	return wrapped{err: err, retryable: true}
}

// WrapNonRetryable marks an error as non-retryable.
func WrapNonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return wrapped{err: err, retryable: false}
}

// IsRetryable reports whether err carries retryable behavior.
// Unmarked errors are not retryable.
func IsRetryable(err error) bool {
	var errBehavior behavior
	if errors.As(err, &errBehavior) {
		return errBehavior.Retryable()
	}
	return false
}
