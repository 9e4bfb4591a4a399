// internal/link/errors.go
package link

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpec indicates a malformed or unknown link spec.
	ErrInvalidSpec = errors.New("link: invalid spec")

	// ErrEndOfStream indicates the channel closed before a read completed.
	ErrEndOfStream = errors.New("link: end of stream")

	// ErrNotOpen indicates a synchronous operation on a link without an active session.
	ErrNotOpen = errors.New("link: not open")
)

// IOError wraps a transport failure with the operation that hit it.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("link: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func specError(spec, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidSpec, spec, reason)
}
