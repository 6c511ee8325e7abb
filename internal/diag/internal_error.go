package diag

import goerrors "github.com/go-errors/errors"

// InternalError represents a compiler bug (spec.md §7's "internal"
// class): these are process-wide fatal, unlike every other recoverable
// diagnostic class, so they carry a captured stack trace rather than a
// source span.
type InternalError struct {
	*goerrors.Error
}

// NewInternal wraps msg as a stack-trace-carrying internal bug report.
func NewInternal(msg string) *InternalError {
	return &InternalError{Error: goerrors.New(msg)}
}

// WrapInternal wraps an existing error as an internal bug report,
// preserving err's message and attaching a stack trace captured here.
func WrapInternal(err error) *InternalError {
	if err == nil {
		return nil
	}
	return &InternalError{Error: goerrors.Wrap(err, 1)}
}
