package capture

import (
	"context"
	"errors"
	"fmt"
)

// NavigationError indicates a page that could not be loaded or rendered:
// DNS failures, connection errors, timeouts, renderer crashes.
type NavigationError struct {
	URL string
	Op  string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// IOError indicates a filesystem failure while persisting output.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ErrorKind returns a short label for err, used in metrics and summaries.
func ErrorKind(err error) string {
	if err == nil {
		return "unknown"
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return "io"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var navErr *NavigationError
	if errors.As(err, &navErr) {
		return "navigation"
	}
	return "other"
}
