package gencache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGeneration reports a malformed generation string: empty name,
	// empty parameter, or more than one ':'.
	ErrInvalidGeneration = errors.New("gencache: invalid generation")

	// ErrMissingParam is matched by *MissingParamError.
	ErrMissingParam = errors.New("gencache: missing dynamic generation parameter")

	// ErrBadArgs reports call arguments that do not fit the wrapped Signature,
	// or values that cannot be rendered into a key.
	ErrBadArgs = errors.New("gencache: bad arguments")

	// ErrNoGeneration is returned by Scope.Invalidate when no generation was
	// named and none could be inferred from the parameters.
	ErrNoGeneration = errors.New("gencache: no generation to invalidate")

	// ErrStoreUnavailable is matched by *StoreError.
	ErrStoreUnavailable = errors.New("gencache: store unavailable")
)

// MissingParamError is returned when a dynamic generation ("name:param") is
// resolved without a value for param.
type MissingParamError struct {
	Generation string
	Param      string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("gencache: generation %q needs parameter %q", e.Generation, e.Param)
}

func (e *MissingParamError) Is(target error) bool { return target == ErrMissingParam }

// StoreError wraps a failed store or generation store call.
// errors.Is matches both ErrStoreUnavailable and the underlying cause.
type StoreError struct {
	Op  string // get, set, delete, snapshot, bump
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("gencache: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gencache: %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}
