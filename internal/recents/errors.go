package recents

import (
	"errors"
	"fmt"
)

// ErrorKind classifies store failures.
type ErrorKind string

const (
	// KindUnavailable: the backing storage could not be opened, or the store
	// has not yet been initialized. Operations keep failing with this kind
	// until an Initialize succeeds.
	KindUnavailable ErrorKind = "unavailable"
	// KindWriteFailed: a save could not be committed. Stored state is
	// unchanged from before the attempt and the caller may retry.
	KindWriteFailed ErrorKind = "write_failed"
	// KindReadFailed: a listing could not be completed. Distinct from an
	// empty collection, which is a successful empty result.
	KindReadFailed ErrorKind = "read_failed"
)

// StoreError is the typed failure returned by every store backend. The
// store never logs; callers decide what to surface.
type StoreError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recents %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("recents %s: %s", e.Op, e.Kind)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewUnavailable wraps cause as a KindUnavailable failure of op.
func NewUnavailable(op string, cause error) *StoreError {
	return &StoreError{Kind: KindUnavailable, Op: op, Err: cause}
}

// NewWriteFailed wraps cause as a KindWriteFailed failure of op.
func NewWriteFailed(op string, cause error) *StoreError {
	return &StoreError{Kind: KindWriteFailed, Op: op, Err: cause}
}

// NewReadFailed wraps cause as a KindReadFailed failure of op.
func NewReadFailed(op string, cause error) *StoreError {
	return &StoreError{Kind: KindReadFailed, Op: op, Err: cause}
}

// IsKind reports whether err is (or wraps) a StoreError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == kind
}
